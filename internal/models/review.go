package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus represents the moderation status of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Valid reports whether s is one of the three known statuses
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// Language represents a supported display language
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageDutch   Language = "nl"
	LanguageFarsi   Language = "fa"
)

// Languages lists every supported language code
var Languages = []Language{LanguageEnglish, LanguageDutch, LanguageFarsi}

// Valid reports whether l is a supported language code
func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageDutch, LanguageFarsi:
		return true
	}
	return false
}

// Review represents a visitor testimonial with moderation state.
// ApprovedAt/ApprovedBy are non-nil iff Status is approved.
type Review struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	Email      string       `json:"email,omitempty" db:"email"`
	Rating     int          `json:"rating" db:"rating"`
	Review     string       `json:"review" db:"review"`
	Language   Language     `json:"language" db:"language"`
	Status     ReviewStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	ApprovedAt *time.Time   `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy *string      `json:"approved_by,omitempty" db:"approved_by"`
	UserAgent  string       `json:"-" db:"user_agent"`
}
