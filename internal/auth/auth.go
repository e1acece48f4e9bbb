// Package auth authenticates moderation operators. Credentials live in
// the admins table (argon2id hashes); sessions are stateless JWT pairs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/barsamweb/reviews/internal/config"
	"github.com/barsamweb/reviews/internal/models"
	"github.com/barsamweb/reviews/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleAdmin is the only role issued by this service
const RoleAdmin = "admin"

// Service handles authentication operations
type Service struct {
	store  store.AdminStore
	config *config.JWTConfig
}

// NewService creates a new auth service
func NewService(st store.AdminStore, jwtCfg *config.JWTConfig) *Service {
	return &Service{
		store:  st,
		config: jwtCfg,
	}
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AdminResponse represents an operator without sensitive data
type AdminResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Admin  AdminResponse `json:"admin"`
	Tokens TokenPair     `json:"tokens"`
}

// Login verifies operator credentials and issues a token pair. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	admin, err := s.store.GetAdminByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, admin.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(admin)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Admin: AdminResponse{
			ID:        admin.ID,
			Email:     admin.Email,
			CreatedAt: admin.CreatedAt,
		},
		Tokens: *tokens,
	}, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	// The account must still exist; revoked admins lose refresh ability
	admin, err := s.store.GetAdminByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	return s.generateTokenPair(admin)
}

func (s *Service) generateTokenPair(admin *models.Admin) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.config.AccessTokenExpiry)

	accessToken, err := s.signToken(admin, "access", now, accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.signToken(admin, "refresh", now, now.Add(s.config.RefreshTokenExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
		TokenType:    "Bearer",
	}, nil
}

func (s *Service) signToken(admin *models.Admin, subject string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: admin.ID.String(),
		Role:   RoleAdmin,
		Email:  admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *Service) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
