// Package store is the persistence boundary for reviews and admin
// accounts. Services depend on the Store interface; the Postgres
// implementation is constructed once at startup and injected.
package store

import (
	"context"
	"errors"

	"github.com/barsamweb/reviews/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store errors
var (
	ErrReviewNotFound = errors.New("review not found")
	ErrAdminNotFound  = errors.New("admin not found")
)

// Stats summarizes the moderation queue for the admin dashboard
type Stats struct {
	Pending       int             `json:"pending"`
	Approved      int             `json:"approved"`
	Rejected      int             `json:"rejected"`
	Total         int             `json:"total"`
	AverageRating decimal.Decimal `json:"average_rating"`
}

// Store is the persistence gateway for reviews
type Store interface {
	// Create inserts a pending review. The id and creation timestamp are
	// assigned server-side; the returned review carries both.
	Create(ctx context.Context, review *models.Review) (*models.Review, error)

	// GetByID returns a single review or ErrReviewNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)

	// ListByStatus returns reviews in one status bucket ordered by
	// creation time descending. An empty language matches all languages;
	// limit <= 0 means no limit.
	ListByStatus(ctx context.Context, status models.ReviewStatus, language models.Language, limit int) ([]models.Review, error)

	// SetStatus transitions a review. Approving stamps approved_at with
	// the database clock and records the operator; moving back to pending
	// clears both fields; rejecting changes status only.
	SetStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, operator string) error

	// Delete permanently removes a review
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats returns bucket counts and the average approved rating
	Stats(ctx context.Context) (*Stats, error)
}

// AdminStore looks up moderation operator accounts
type AdminStore interface {
	// GetAdminByEmail returns an admin account or ErrAdminNotFound
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}
