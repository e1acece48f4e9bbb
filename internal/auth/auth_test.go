package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/barsamweb/reviews/internal/config"
	"github.com/barsamweb/reviews/internal/models"
	"github.com/barsamweb/reviews/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeAdminStore struct {
	admins map[string]*models.Admin
}

func (f *fakeAdminStore) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin, ok := f.admins[email]
	if !ok {
		return nil, store.ErrAdminNotFound
	}
	return admin, nil
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:             "test-secret-key",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "barsam-reviews",
	}
}

func newTestAuth(t *testing.T, password string) (*Service, *models.Admin) {
	t.Helper()
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	admin := &models.Admin{
		ID:           uuid.New(),
		Email:        "admin@barsam-website.com",
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	st := &fakeAdminStore{admins: map[string]*models.Admin{admin.Email: admin}}
	return NewService(st, testJWTConfig()), admin
}

func TestLogin_Success(t *testing.T) {
	svc, admin := newTestAuth(t, "correct-horse")

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    admin.Email,
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if resp.Admin.Email != admin.Email {
		t.Errorf("Admin email = %q", resp.Admin.Email)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Error("Expected both tokens to be issued")
	}
	if resp.Tokens.TokenType != "Bearer" {
		t.Errorf("TokenType = %q", resp.Tokens.TokenType)
	}
	if !resp.Tokens.ExpiresAt.After(time.Now()) {
		t.Error("Access token already expired")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, admin := newTestAuth(t, "correct-horse")

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    admin.Email,
		Password: "battery-staple",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmailIndistinguishable(t *testing.T) {
	svc, _ := newTestAuth(t, "correct-horse")

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Unknown email must yield ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenClaims(t *testing.T) {
	svc, admin := newTestAuth(t, "correct-horse")
	resp, err := svc.Login(context.Background(), &LoginRequest{Email: admin.Email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := svc.parseToken(resp.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Failed to parse access token: %v", err)
	}
	if claims.Subject != "access" {
		t.Errorf("Access token subject = %q", claims.Subject)
	}
	if claims.Role != RoleAdmin || claims.Email != admin.Email {
		t.Errorf("Claims = %+v", claims)
	}
	if claims.UserID != admin.ID.String() {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.Issuer != "barsam-reviews" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
}

func TestRefreshTokens(t *testing.T) {
	svc, admin := newTestAuth(t, "correct-horse")
	resp, _ := svc.Login(context.Background(), &LoginRequest{Email: admin.Email, Password: "correct-horse"})

	pair, err := svc.RefreshTokens(context.Background(), resp.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Expected a fresh token pair")
	}
}

func TestRefreshTokens_RejectsAccessToken(t *testing.T) {
	svc, admin := newTestAuth(t, "correct-horse")
	resp, _ := svc.Login(context.Background(), &LoginRequest{Email: admin.Email, Password: "correct-horse"})

	if _, err := svc.RefreshTokens(context.Background(), resp.Tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Access token must not refresh, got %v", err)
	}
}

func TestRefreshTokens_RemovedAdmin(t *testing.T) {
	hash, _ := argon2id.CreateHash("pw-irrelevant", argon2id.DefaultParams)
	admin := &models.Admin{ID: uuid.New(), Email: "gone@example.com", PasswordHash: hash}
	st := &fakeAdminStore{admins: map[string]*models.Admin{admin.Email: admin}}
	svc := NewService(st, testJWTConfig())

	pair, err := svc.generateTokenPair(admin)
	if err != nil {
		t.Fatalf("generateTokenPair failed: %v", err)
	}

	delete(st.admins, admin.Email)
	if _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken); !errors.Is(err, ErrAdminNotFound) {
		t.Errorf("Expected ErrAdminNotFound after removal, got %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	svc, admin := newTestAuth(t, "correct-horse")

	past := time.Now().Add(-time.Hour)
	token, err := svc.signToken(admin, "access", past, past.Add(time.Minute))
	if err != nil {
		t.Fatalf("signToken failed: %v", err)
	}

	if _, err := svc.parseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	svc, admin := newTestAuth(t, "correct-horse")

	otherCfg := testJWTConfig()
	otherCfg.Secret = "a-different-secret"
	other := NewService(&fakeAdminStore{admins: map[string]*models.Admin{}}, otherCfg)

	now := time.Now()
	token, err := other.signToken(admin, "access", now, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("signToken failed: %v", err)
	}

	if _, err := svc.parseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestParseToken_RejectsUnsignedAlgorithm(t *testing.T) {
	svc, admin := newTestAuth(t, "correct-horse")

	claims := &Claims{
		UserID: admin.ID.String(),
		Role:   RoleAdmin,
		Email:  admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "access",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to build unsigned token: %v", err)
	}

	if _, err := svc.parseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Unsigned token must be rejected, got %v", err)
	}
}
