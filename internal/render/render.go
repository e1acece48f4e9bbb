// Package render maps reviews to view models for the public page and the
// admin dashboard. It is a pure function of pipeline output and holds no
// state.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/barsamweb/reviews/internal/models"
	"github.com/barsamweb/reviews/internal/sanitize"
	ptime "github.com/yaa110/go-persian-calendar"
)

// Action is a moderation affordance offered on an admin card
type Action string

const (
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionUnapprove Action = "unapprove"
	ActionDelete    Action = "delete"
)

// Card is the view model for one review
type Card struct {
	ID            string          `json:"id"`
	Author        string          `json:"author"`
	Rating        int             `json:"rating"`
	Stars         string          `json:"stars"`
	RatingLabel   string          `json:"rating_label"`
	Body          string          `json:"body"`
	Date          string          `json:"date"`
	Language      models.Language `json:"language"`
	LanguageBadge string          `json:"language_badge"`
	RTL           bool            `json:"rtl"`
	Email         string          `json:"email,omitempty"`
	Actions       []Action        `json:"actions,omitempty"`
}

const (
	fullStar  = "★"
	emptyStar = "☆"
	maxStars  = 5
)

// Stars renders a rating as filled and empty glyphs out of five
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > maxStars {
		rating = maxStars
	}
	return strings.Repeat(fullStar, rating) + strings.Repeat(emptyStar, maxStars-rating)
}

// RatingLabel returns the accessible description of a star rating
func RatingLabel(rating int) string {
	return fmt.Sprintf("%d out of 5 stars", rating)
}

var englishMonths = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var dutchMonths = [...]string{
	"januari", "februari", "maart", "april", "mei", "juni",
	"juli", "augustus", "september", "oktober", "november", "december",
}

var persianDigits = [...]rune{'۰', '۱', '۲', '۳', '۴', '۵', '۶', '۷', '۸', '۹'}

// FormatDate localizes a timestamp by the review's own language, not the
// viewer's locale. English and Dutch use long Gregorian forms; Farsi uses
// the Persian calendar with Persian-Arabic digits, matching fa-IR locale
// rendering.
func FormatDate(t time.Time, language models.Language) string {
	if t.IsZero() {
		return ""
	}
	switch language {
	case models.LanguageDutch:
		return fmt.Sprintf("%d %s %d", t.Day(), dutchMonths[t.Month()-1], t.Year())
	case models.LanguageFarsi:
		pt := ptime.New(t)
		return fmt.Sprintf("%s %s %s",
			toPersianDigits(pt.Day()), pt.Month().String(), toPersianDigits(pt.Year()))
	default:
		return fmt.Sprintf("%s %d, %d", englishMonths[t.Month()-1], t.Day(), t.Year())
	}
}

func toPersianDigits(n int) string {
	latin := fmt.Sprintf("%d", n)
	var b strings.Builder
	for _, r := range latin {
		if r >= '0' && r <= '9' {
			b.WriteRune(persianDigits[r-'0'])
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PublicCard builds the view model shown on the public reviews page.
// Name and body pass through sanitization again so legacy rows stay inert.
func PublicCard(r *models.Review) Card {
	return Card{
		ID:            r.ID.String(),
		Author:        sanitize.Clean(r.Name),
		Rating:        r.Rating,
		Stars:         Stars(r.Rating),
		RatingLabel:   RatingLabel(r.Rating),
		Body:          sanitize.Clean(r.Review),
		Date:          FormatDate(r.CreatedAt, r.Language),
		Language:      r.Language,
		LanguageBadge: strings.ToUpper(string(r.Language)),
		RTL:           r.Language == models.LanguageFarsi,
	}
}

// AdminCard builds the dashboard view model, including the submitter email
// and the actions appropriate to the review's bucket
func AdminCard(r *models.Review) Card {
	card := PublicCard(r)
	card.Email = sanitize.Clean(r.Email)
	card.Actions = actionsFor(r.Status)
	return card
}

// Cards maps a bucket of reviews through one of the card builders
func Cards(reviews []models.Review, build func(*models.Review) Card) []Card {
	cards := make([]Card, 0, len(reviews))
	for i := range reviews {
		cards = append(cards, build(&reviews[i]))
	}
	return cards
}

func actionsFor(status models.ReviewStatus) []Action {
	switch status {
	case models.ReviewStatusPending:
		return []Action{ActionApprove, ActionReject}
	case models.ReviewStatusApproved:
		return []Action{ActionUnapprove, ActionDelete}
	case models.ReviewStatusRejected:
		return []Action{ActionApprove, ActionDelete}
	}
	return nil
}

var noReviewsMessages = map[models.Language]string{
	models.LanguageEnglish: "No reviews yet. Be the first to share your thoughts!",
	models.LanguageDutch:   "Nog geen recensies. Wees de eerste om uw gedachten te delen!",
	models.LanguageFarsi:   "هنوز نظری ثبت نشده است. اولین نفری باشید که نظر خود را به اشتراک می‌گذارد!",
}

// EmptyMessage returns the localized public empty-state message
func EmptyMessage(language models.Language) string {
	if msg, ok := noReviewsMessages[language]; ok {
		return msg
	}
	return noReviewsMessages[models.LanguageEnglish]
}

var emptyBucketMessages = map[models.ReviewStatus]string{
	models.ReviewStatusPending:  "No pending reviews",
	models.ReviewStatusApproved: "No approved reviews yet",
	models.ReviewStatusRejected: "No rejected reviews",
}

// EmptyBucketMessage returns the dashboard empty-state message for a bucket
func EmptyBucketMessage(status models.ReviewStatus) string {
	return emptyBucketMessages[status]
}
