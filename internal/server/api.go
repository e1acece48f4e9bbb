package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/barsamweb/reviews/internal/auth"
	"github.com/barsamweb/reviews/internal/config"
	apierrors "github.com/barsamweb/reviews/internal/errors"
	"github.com/barsamweb/reviews/internal/logging"
	"github.com/barsamweb/reviews/internal/middleware"
	"github.com/barsamweb/reviews/internal/models"
	"github.com/barsamweb/reviews/internal/monitoring"
	"github.com/barsamweb/reviews/internal/render"
	"github.com/barsamweb/reviews/internal/reviews"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIServer represents the main API server
type APIServer struct {
	config           *config.Config
	router           *gin.Engine
	reviewService    *reviews.Service
	authService      *auth.Service
	jwtAuthenticator *middleware.JWTAuthenticator
}

// NewAPIServer creates a new API server instance
func NewAPIServer(cfg *config.Config, reviewService *reviews.Service, authService *auth.Service) *APIServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	srv := &APIServer{
		config:           cfg,
		router:           router,
		reviewService:    reviewService,
		authService:      authService,
		jwtAuthenticator: middleware.NewJWTAuthenticator(&cfg.JWT),
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/logout", s.handleLogout)
			authGroup.POST("/refresh", s.handleRefresh)
		}

		// Public review routes
		v1.GET("/reviews", s.handleListApproved)
		v1.POST("/reviews", s.handleSubmitReview)

		// Admin moderation routes (protected)
		admin := v1.Group("/admin")
		admin.Use(s.jwtAuthenticator.JWTAuth())
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/reviews", s.handleLoadAll)
			admin.POST("/reviews/:id/approve", s.handleApprove)
			admin.POST("/reviews/:id/reject", s.handleReject)
			admin.POST("/reviews/:id/unapprove", s.handleUnapprove)
			admin.DELETE("/reviews/:id", s.handleDelete)
		}
	}
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "reviews",
	})
}

// handleLogin handles operator login
func (s *APIServer) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logging.LogSecurityEvent("login_failed", req.Email, c.ClientIP(), "invalid credentials")
			respondError(c, apierrors.ErrInvalidCredentialsError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleLogout handles operator logout. Sessions are stateless JWTs, so
// logout is client-side token disposal.
func (s *APIServer) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// handleRefresh handles token refresh
func (s *APIServer) handleRefresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	tokens, err := s.authService.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			respondError(c, apierrors.ErrInvalidCredentialsError)
		case errors.Is(err, auth.ErrTokenExpired):
			respondError(c, apierrors.ErrTokenExpiredError)
		case errors.Is(err, auth.ErrAdminNotFound):
			respondError(c, apierrors.ErrInvalidCredentialsError)
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// handleListApproved serves the public reviews page for one language
func (s *APIServer) handleListApproved(c *gin.Context) {
	language := models.Language(c.DefaultQuery("language", string(models.LanguageEnglish)))
	if !language.Valid() {
		respondError(c, apierrors.NewInvalidRequestError("Invalid language"))
		return
	}

	approved, err := s.reviewService.ListApproved(c.Request.Context(), language)
	if err != nil {
		respondError(c, apierrors.ErrStoreUnavailableError)
		return
	}

	response := gin.H{
		"language": language,
		"count":    len(approved),
		"reviews":  render.Cards(approved, render.PublicCard),
	}
	if len(approved) == 0 {
		response["empty_message"] = render.EmptyMessage(language)
	}

	c.JSON(http.StatusOK, response)
}

// handleSubmitReview runs the submission pipeline
func (s *APIServer) handleSubmitReview(c *gin.Context) {
	var req reviews.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Malformed submission payload"))
		return
	}

	created, err := s.reviewService.Submit(c.Request.Context(), req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		var validationErr *reviews.ValidationError
		var rateLimitErr *reviews.RateLimitError
		switch {
		case errors.As(err, &validationErr):
			respondError(c, apierrors.NewValidationError(validationErr.Violations))
		case errors.As(err, &rateLimitErr):
			retryAfter := int(rateLimitErr.RetryAfter.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			respondError(c, apierrors.NewRateLimitedError(retryAfter))
		default:
			respondError(c, apierrors.ErrStoreUnavailableError)
		}
		return
	}

	logging.LogSubmission(middleware.GetRequestIDFromContext(c), created.ID.String(), string(created.Language), "accepted")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      created.ID,
	})
}

// handleLoadAll returns all three moderation buckets plus queue stats.
// A failed bucket is returned empty with its error surfaced, leaving the
// successful buckets intact.
func (s *APIServer) handleLoadAll(c *gin.Context) {
	c.JSON(http.StatusOK, s.loadAllResponse(c))
}

// handleApprove transitions a review to approved
func (s *APIServer) handleApprove(c *gin.Context) {
	s.mutateReview(c, "approve", func(id uuid.UUID) error {
		return s.reviewService.Approve(c.Request.Context(), id, middleware.GetEmailFromContext(c))
	})
}

// handleReject transitions a review to rejected
func (s *APIServer) handleReject(c *gin.Context) {
	s.mutateReview(c, "reject", func(id uuid.UUID) error {
		return s.reviewService.Reject(c.Request.Context(), id)
	})
}

// handleUnapprove moves a review back to pending
func (s *APIServer) handleUnapprove(c *gin.Context) {
	s.mutateReview(c, "unapprove", func(id uuid.UUID) error {
		return s.reviewService.Unapprove(c.Request.Context(), id)
	})
}

// handleDelete permanently removes a review
func (s *APIServer) handleDelete(c *gin.Context) {
	s.mutateReview(c, "delete", func(id uuid.UUID) error {
		return s.reviewService.Delete(c.Request.Context(), id)
	})
}

// mutateReview applies a moderation action and, on success, responds with
// freshly reloaded buckets. State is never patched in memory; the response
// always reflects a real store read.
func (s *APIServer) mutateReview(c *gin.Context, action string, apply func(uuid.UUID) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid review id"))
		return
	}

	if err := apply(id); err != nil {
		if errors.Is(err, reviews.ErrReviewNotFound) {
			respondError(c, apierrors.ErrReviewNotFoundError)
		} else {
			respondError(c, apierrors.ErrStoreUnavailableError)
		}
		return
	}

	logging.LogModeration(middleware.GetRequestIDFromContext(c), id.String(), action, middleware.GetEmailFromContext(c))

	response := s.loadAllResponse(c)
	response["action"] = action
	c.JSON(http.StatusOK, response)
}

func (s *APIServer) loadAllResponse(c *gin.Context) gin.H {
	buckets, bucketsErr := s.reviewService.LoadAll(c.Request.Context())

	response := gin.H{
		"pending":  render.Cards(buckets.Pending, render.AdminCard),
		"approved": render.Cards(buckets.Approved, render.AdminCard),
		"rejected": render.Cards(buckets.Rejected, render.AdminCard),
		"empty_messages": gin.H{
			"pending":  render.EmptyBucketMessage(models.ReviewStatusPending),
			"approved": render.EmptyBucketMessage(models.ReviewStatusApproved),
			"rejected": render.EmptyBucketMessage(models.ReviewStatusRejected),
		},
	}
	if bucketsErr != nil {
		response["errors"] = []string{bucketsErr.Error()}
	}

	stats, err := s.reviewService.Stats(c.Request.Context())
	if err == nil {
		response["stats"] = stats
	} else {
		logging.LogError(err, middleware.GetRequestIDFromContext(c), "server", "stats")
	}

	return response
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	requestID := c.GetString("request_id")
	c.JSON(err.HTTPStatus, apierrors.NewErrorResponse(err, requestID))
}
