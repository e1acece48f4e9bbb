package render

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/barsamweb/reviews/internal/models"
	"github.com/google/uuid"
)

func TestStars(t *testing.T) {
	cases := []struct {
		rating int
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{1, "★☆☆☆☆"},
		{3, "★★★☆☆"},
		{5, "★★★★★"},
		{-2, "☆☆☆☆☆"},
		{9, "★★★★★"},
	}

	for _, tc := range cases {
		if got := Stars(tc.rating); got != tc.want {
			t.Errorf("Stars(%d) = %q, want %q", tc.rating, got, tc.want)
		}
	}
}

func TestRatingLabel(t *testing.T) {
	if got := RatingLabel(4); got != "4 out of 5 stars" {
		t.Errorf("RatingLabel(4) = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

	if got := FormatDate(ts, models.LanguageEnglish); got != "March 15, 2024" {
		t.Errorf("English date = %q", got)
	}
	if got := FormatDate(ts, models.LanguageDutch); got != "15 maart 2024" {
		t.Errorf("Dutch date = %q", got)
	}

	fa := FormatDate(ts, models.LanguageFarsi)
	if fa == "" {
		t.Fatal("Farsi date is empty")
	}
	if strings.ContainsAny(fa, "0123456789") {
		t.Errorf("Farsi date contains Latin digits: %q", fa)
	}
	// 2024-03-15 falls in Esfand 1402
	if !strings.Contains(fa, "۱۴۰۲") {
		t.Errorf("Expected Persian year 1402 in %q", fa)
	}
}

func TestFormatDate_ZeroTime(t *testing.T) {
	if got := FormatDate(time.Time{}, models.LanguageEnglish); got != "" {
		t.Errorf("Zero time should render empty, got %q", got)
	}
}

func sampleReview(status models.ReviewStatus) *models.Review {
	return &models.Review{
		ID:        uuid.New(),
		Name:      "Anna",
		Email:     "anna@example.com",
		Rating:    4,
		Review:    "A very moving tribute",
		Language:  models.LanguageEnglish,
		Status:    status,
		CreatedAt: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublicCard(t *testing.T) {
	r := sampleReview(models.ReviewStatusApproved)
	card := PublicCard(r)

	if card.Author != "Anna" || card.Body != "A very moving tribute" {
		t.Errorf("Unexpected card content: %+v", card)
	}
	if card.Stars != "★★★★☆" {
		t.Errorf("Stars = %q", card.Stars)
	}
	if card.Date != "June 1, 2024" {
		t.Errorf("Date = %q", card.Date)
	}
	if card.LanguageBadge != "EN" {
		t.Errorf("LanguageBadge = %q", card.LanguageBadge)
	}
	if card.RTL {
		t.Error("English card should not be RTL")
	}
	if card.Email != "" || card.Actions != nil {
		t.Error("Public card must not carry email or actions")
	}
}

func TestPublicCard_SanitizesStoredContent(t *testing.T) {
	r := sampleReview(models.ReviewStatusApproved)
	r.Name = "<b>Anna</b>"
	r.Review = "great <script>alert(1)</script> memories"

	card := PublicCard(r)
	if card.Author != "Anna" {
		t.Errorf("Author = %q", card.Author)
	}
	if strings.Contains(card.Body, "<") {
		t.Errorf("Body still contains markup: %q", card.Body)
	}
}

func TestPublicCard_FarsiIsRTL(t *testing.T) {
	r := sampleReview(models.ReviewStatusApproved)
	r.Language = models.LanguageFarsi

	card := PublicCard(r)
	if !card.RTL {
		t.Error("Farsi card should be RTL")
	}
	if card.LanguageBadge != "FA" {
		t.Errorf("LanguageBadge = %q", card.LanguageBadge)
	}
}

func TestAdminCard_ActionsPerStatus(t *testing.T) {
	cases := []struct {
		status models.ReviewStatus
		want   []Action
	}{
		{models.ReviewStatusPending, []Action{ActionApprove, ActionReject}},
		{models.ReviewStatusApproved, []Action{ActionUnapprove, ActionDelete}},
		{models.ReviewStatusRejected, []Action{ActionApprove, ActionDelete}},
	}

	for _, tc := range cases {
		card := AdminCard(sampleReview(tc.status))
		if !reflect.DeepEqual(card.Actions, tc.want) {
			t.Errorf("Actions for %s = %v, want %v", tc.status, card.Actions, tc.want)
		}
		if card.Email != "anna@example.com" {
			t.Errorf("Admin card email = %q", card.Email)
		}
	}
}

func TestCards(t *testing.T) {
	reviews := []models.Review{*sampleReview(models.ReviewStatusApproved), *sampleReview(models.ReviewStatusApproved)}
	cards := Cards(reviews, PublicCard)
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(cards))
	}

	if empty := Cards(nil, PublicCard); len(empty) != 0 {
		t.Errorf("Expected no cards for empty input, got %d", len(empty))
	}
}

func TestEmptyMessage(t *testing.T) {
	if msg := EmptyMessage(models.LanguageDutch); !strings.HasPrefix(msg, "Nog geen recensies") {
		t.Errorf("Dutch empty message = %q", msg)
	}
	if msg := EmptyMessage(models.Language("de")); msg != EmptyMessage(models.LanguageEnglish) {
		t.Errorf("Unknown language should fall back to English, got %q", msg)
	}
}

func TestEmptyBucketMessage(t *testing.T) {
	cases := map[models.ReviewStatus]string{
		models.ReviewStatusPending:  "No pending reviews",
		models.ReviewStatusApproved: "No approved reviews yet",
		models.ReviewStatusRejected: "No rejected reviews",
	}
	for status, want := range cases {
		if got := EmptyBucketMessage(status); got != want {
			t.Errorf("EmptyBucketMessage(%s) = %q, want %q", status, got, want)
		}
	}
}
