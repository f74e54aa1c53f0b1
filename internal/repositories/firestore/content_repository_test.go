package firestore

import (
	"testing"
	"time"

	domain "github.com/landlorddesk/api/internal/domain"
)

func TestGuideDocumentRoundTrip(t *testing.T) {
	updated := time.Date(2026, 1, 20, 14, 0, 0, 0, time.UTC)
	guide := domain.Guide{
		ID:           "section-21-basics__en-gb",
		Slug:         "section-21-basics",
		Locale:       "en-GB",
		Jurisdiction: "england",
		Category:     "eviction",
		Title:        "Section 21 basics",
		Summary:      "When a no-fault notice applies.",
		BodyRef:      "content/guides/s21.md",
		Status:       "published",
		UpdatedAt:    updated,
	}

	got := decodeGuideDocument(guide.ID, encodeGuideDocument(guide), updated)
	if got != guide {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, guide)
	}
}

func TestLandingPageDocumentRoundTrip(t *testing.T) {
	updated := time.Date(2026, 1, 20, 14, 0, 0, 0, time.UTC)
	page := domain.LandingPage{
		ID:           "evict-a-tenant__en-gb",
		Slug:         "evict-a-tenant",
		Locale:       "en-GB",
		Jurisdiction: "england",
		Title:        "Evict a tenant",
		BodyRef:      "content/pages/evict.md",
		Status:       "published",
		UpdatedAt:    updated,
	}

	got := decodeLandingPageDocument(page.ID, encodeLandingPageDocument(page), updated)
	if got != page {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, page)
	}
}

func TestContentDocID(t *testing.T) {
	id, err := contentDocID(" Section-21-Basics ", "en-GB")
	if err != nil {
		t.Fatalf("contentDocID: %v", err)
	}
	if id != "section-21-basics__en-gb" {
		t.Fatalf("id = %q", id)
	}

	if _, err := contentDocID("", "en-GB"); err == nil {
		t.Fatalf("expected error for empty slug")
	}
	if _, err := contentDocID("slug", "  "); err == nil {
		t.Fatalf("expected error for empty locale")
	}
}
