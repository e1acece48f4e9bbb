package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/barsamweb/reviews/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Postgres implements Store and AdminStore on a pgx connection pool
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed store
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const reviewColumns = `id, name, email, rating, review, language, status, created_at, approved_at, approved_by, user_agent`

// Create inserts a pending review with a server-assigned id and timestamp
func (p *Postgres) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	var created models.Review
	err := p.db.QueryRow(ctx, `
		INSERT INTO reviews (name, email, rating, review, language, status, user_agent)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		RETURNING `+reviewColumns+`
	`, review.Name, review.Email, review.Rating, review.Review, review.Language, review.UserAgent).Scan(
		&created.ID, &created.Name, &created.Email, &created.Rating, &created.Review,
		&created.Language, &created.Status, &created.CreatedAt,
		&created.ApprovedAt, &created.ApprovedBy, &created.UserAgent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return &created, nil
}

// GetByID returns a single review
func (p *Postgres) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var r models.Review
	err := p.db.QueryRow(ctx, `
		SELECT `+reviewColumns+` FROM reviews WHERE id = $1
	`, id).Scan(
		&r.ID, &r.Name, &r.Email, &r.Rating, &r.Review,
		&r.Language, &r.Status, &r.CreatedAt,
		&r.ApprovedAt, &r.ApprovedBy, &r.UserAgent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &r, nil
}

// ListByStatus returns one status bucket, newest first
func (p *Postgres) ListByStatus(ctx context.Context, status models.ReviewStatus, language models.Language, limit int) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE status = $1`
	args := []any{status}
	if language != "" {
		query += ` AND language = $2`
		args = append(args, language)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s reviews: %w", status, err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		err := rows.Scan(
			&r.ID, &r.Name, &r.Email, &r.Rating, &r.Review,
			&r.Language, &r.Status, &r.CreatedAt,
			&r.ApprovedAt, &r.ApprovedBy, &r.UserAgent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}
	return reviews, nil
}

// SetStatus transitions a review to the given status
func (p *Postgres) SetStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, operator string) error {
	var tag string
	var args []any
	switch status {
	case models.ReviewStatusApproved:
		tag = `UPDATE reviews SET status = 'approved', approved_at = NOW(), approved_by = $2 WHERE id = $1`
		args = []any{id, operator}
	case models.ReviewStatusPending:
		tag = `UPDATE reviews SET status = 'pending', approved_at = NULL, approved_by = NULL WHERE id = $1`
		args = []any{id}
	case models.ReviewStatusRejected:
		// Approval metadata is left untouched; it is meaningless while rejected
		tag = `UPDATE reviews SET status = 'rejected' WHERE id = $1`
		args = []any{id}
	default:
		return fmt.Errorf("unknown review status: %s", status)
	}

	result, err := p.db.Exec(ctx, tag, args...)
	if err != nil {
		return fmt.Errorf("failed to set review status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Delete permanently removes a review
func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := p.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Stats returns bucket counts and the average approved rating
func (p *Postgres) Stats(ctx context.Context) (*Stats, error) {
	rows, err := p.db.Query(ctx, `
		SELECT status, COUNT(*) FROM reviews GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var status models.ReviewStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan review counts: %w", err)
		}
		switch status {
		case models.ReviewStatusPending:
			stats.Pending = count
		case models.ReviewStatusApproved:
			stats.Approved = count
		case models.ReviewStatusRejected:
			stats.Rejected = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read review counts: %w", err)
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected

	var avg *string
	err = p.db.QueryRow(ctx, `
		SELECT ROUND(AVG(rating), 2)::text FROM reviews WHERE status = 'approved'
	`).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("failed to average ratings: %w", err)
	}
	if avg != nil {
		rating, err := decimal.NewFromString(*avg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse average rating: %w", err)
		}
		stats.AverageRating = rating
	}

	return stats, nil
}

// GetAdminByEmail returns a moderation operator account
func (p *Postgres) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	err := p.db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at FROM admins WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}
