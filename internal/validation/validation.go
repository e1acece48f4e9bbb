// Package validation checks review submissions against the field rules
// enforced before any write reaches the store. All rules are evaluated
// independently so every violation is reported, not just the first.
package validation

import (
	"regexp"
	"strings"

	"github.com/barsamweb/reviews/internal/models"
)

// Field limits for review submissions
const (
	NameMinLength   = 2
	NameMaxLength   = 100
	ReviewMinLength = 10
	ReviewMaxLength = 5000
	MinRating       = 1
	MaxRating       = 5
)

// Single @, at least one dot after it, no whitespace
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Candidate is a review submission before sanitization and storage
type Candidate struct {
	Name     string
	Email    string
	Rating   int
	Review   string
	Language models.Language
}

// Result holds the outcome of validating a candidate
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks every field rule and collects all violations. It is pure
// and deterministic; the candidate is never modified.
func Validate(c Candidate) Result {
	var errs []string

	name := strings.TrimSpace(c.Name)
	if len([]rune(name)) < NameMinLength {
		errs = append(errs, "Name is too short")
	}
	if len([]rune(c.Name)) > NameMaxLength {
		errs = append(errs, "Name is too long")
	}

	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		errs = append(errs, "Invalid email format")
	}

	if c.Rating < MinRating || c.Rating > MaxRating {
		errs = append(errs, "Invalid rating (must be 1-5)")
	}

	text := strings.TrimSpace(c.Review)
	if len([]rune(text)) < ReviewMinLength {
		errs = append(errs, "Review is too short")
	}
	if len([]rune(c.Review)) > ReviewMaxLength {
		errs = append(errs, "Review is too long")
	}

	if !c.Language.Valid() {
		errs = append(errs, "Invalid language")
	}

	return Result{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}
