// Package reviews implements the review lifecycle: the public submission
// pipeline and the admin moderation pipeline, both in front of the store.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/barsamweb/reviews/internal/models"
	"github.com/barsamweb/reviews/internal/monitoring"
	"github.com/barsamweb/reviews/internal/ratelimit"
	"github.com/barsamweb/reviews/internal/reviewcache"
	"github.com/barsamweb/reviews/internal/sanitize"
	"github.com/barsamweb/reviews/internal/store"
	"github.com/barsamweb/reviews/internal/validation"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Service errors
var (
	ErrReviewNotFound = errors.New("review not found")
)

// ValidationError reports every violated field rule of a submission
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "Validation failed: " + strings.Join(e.Violations, ", ")
}

// RateLimitError reports a submission attempted inside the throttle window
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "please wait a moment before submitting another review"
}

// Limiter throttles submissions per client
type Limiter interface {
	Check(ctx context.Context, clientKey string) (*ratelimit.Result, error)
	Mark(ctx context.Context, clientKey string) error
}

// Notifier relays accepted submissions to a secondary endpoint
type Notifier interface {
	Notify(ctx context.Context, fields map[string]string) error
}

// SubmitRequest is the raw form input of a review submission
type SubmitRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Rating   int    `json:"rating"`
	Review   string `json:"review"`
	Language string `json:"language"`
}

// Buckets groups reviews by moderation status
type Buckets struct {
	Pending  []models.Review `json:"pending"`
	Approved []models.Review `json:"approved"`
	Rejected []models.Review `json:"rejected"`
}

// Service handles review submission and moderation
type Service struct {
	store    store.Store
	cache    *reviewcache.Cache
	limiter  Limiter
	notifier Notifier
	logger   zerolog.Logger
}

// NewService creates a review service. The cache is owned by the service;
// pageSize bounds how many approved reviews the public listing serves.
func NewService(st store.Store, cacheTTL time.Duration, pageSize int, limiter Limiter, notifier Notifier, logger zerolog.Logger) *Service {
	s := &Service{
		store:    st,
		limiter:  limiter,
		notifier: notifier,
		logger:   logger,
	}
	s.cache = reviewcache.New(cacheTTL, func(ctx context.Context, language models.Language) ([]models.Review, error) {
		return st.ListByStatus(ctx, models.ReviewStatusApproved, language, pageSize)
	})
	return s
}

// Submit runs the submission pipeline: validate, rate limit, sanitize,
// persist, then open the throttle window and fire the notification relay.
// A new pending review never touches the approved cache.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, clientKey, userAgent string) (*models.Review, error) {
	candidate := validation.Candidate{
		Name:     req.Name,
		Email:    req.Email,
		Rating:   req.Rating,
		Review:   req.Review,
		Language: models.Language(req.Language),
	}

	if result := validation.Validate(candidate); !result.Valid {
		monitoring.RecordSubmission(req.Language, "validation_failed")
		return nil, &ValidationError{Violations: result.Errors}
	}

	if s.limiter != nil {
		limit, err := s.limiter.Check(ctx, clientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check rate limit: %w", err)
		}
		if !limit.Allowed {
			monitoring.RecordSubmission(req.Language, "rate_limited")
			return nil, &RateLimitError{RetryAfter: limit.RetryAfter}
		}
	}

	review := &models.Review{
		Name:      sanitize.Clean(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Rating:    req.Rating,
		Review:    sanitize.Clean(req.Review),
		Language:  candidate.Language,
		Status:    models.ReviewStatusPending,
		UserAgent: userAgent,
	}

	created, err := s.store.Create(ctx, review)
	if err != nil {
		monitoring.RecordSubmission(req.Language, "store_error")
		return nil, fmt.Errorf("failed to store review: %w", err)
	}

	if s.limiter != nil {
		// Best effort: a lost mark only weakens throttling, never the write
		_ = s.limiter.Mark(ctx, clientKey)
	}

	if s.notifier != nil {
		fields := map[string]string{
			"name":      req.Name,
			"email":     req.Email,
			"rating":    strconv.Itoa(req.Rating),
			"review":    req.Review,
			"_language": req.Language,
		}
		// Detached from the request: relay failure never affects the outcome
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = s.notifier.Notify(nctx, fields)
		}()
	}

	monitoring.RecordSubmission(req.Language, "accepted")
	s.logger.Info().
		Str("review_id", created.ID.String()).
		Str("language", string(created.Language)).
		Int("rating", created.Rating).
		Msg("Review submitted")

	return created, nil
}

// ListApproved returns the approved reviews for one language through the
// cache
func (s *Service) ListApproved(ctx context.Context, language models.Language) ([]models.Review, error) {
	return s.cache.Get(ctx, language)
}

// LoadAll loads the three status buckets with independent queries. A
// failed bucket stays empty and its error is aggregated; the other
// buckets are returned intact.
func (s *Service) LoadAll(ctx context.Context) (*Buckets, error) {
	buckets := &Buckets{}
	targets := []struct {
		status models.ReviewStatus
		dest   *[]models.Review
	}{
		{models.ReviewStatusPending, &buckets.Pending},
		{models.ReviewStatusApproved, &buckets.Approved},
		{models.ReviewStatusRejected, &buckets.Rejected},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs *multierror.Error
	)
	for _, target := range targets {
		wg.Add(1)
		go func(status models.ReviewStatus, dest *[]models.Review) {
			defer wg.Done()
			reviews, err := s.store.ListByStatus(ctx, status, "", 0)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("%s bucket: %w", status, err))
				mu.Unlock()
				return
			}
			*dest = reviews
		}(target.status, target.dest)
	}
	wg.Wait()

	return buckets, errs.ErrorOrNil()
}

// Approve transitions a review to approved, stamping the approval time
// (database clock) and the operator identity
func (s *Service) Approve(ctx context.Context, id uuid.UUID, operator string) error {
	if err := s.setStatus(ctx, id, models.ReviewStatusApproved, operator); err != nil {
		return err
	}
	monitoring.RecordModerationAction("approve")
	s.logger.Info().Str("review_id", id.String()).Str("operator", operator).Msg("Review approved")
	return nil
}

// Reject transitions a review to rejected. Approval metadata is left
// untouched; it is meaningless while rejected.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) error {
	if err := s.setStatus(ctx, id, models.ReviewStatusRejected, ""); err != nil {
		return err
	}
	monitoring.RecordModerationAction("reject")
	s.logger.Info().Str("review_id", id.String()).Msg("Review rejected")
	return nil
}

// Unapprove moves a review back to pending and clears the approval fields
func (s *Service) Unapprove(ctx context.Context, id uuid.UUID) error {
	if err := s.setStatus(ctx, id, models.ReviewStatusPending, ""); err != nil {
		return err
	}
	monitoring.RecordModerationAction("unapprove")
	s.logger.Info().Str("review_id", id.String()).Msg("Review moved back to pending")
	return nil
}

// Delete permanently removes a review
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}
	s.cache.Invalidate()
	monitoring.RecordModerationAction("delete")
	s.logger.Info().Str("review_id", id.String()).Msg("Review deleted")
	return nil
}

// Stats returns bucket counts and the average approved rating
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, operator string) error {
	if err := s.store.SetStatus(ctx, id, status, operator); err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to update review status: %w", err)
	}
	// The public page must converge faster than the TTL after moderation
	s.cache.Invalidate()
	return nil
}
