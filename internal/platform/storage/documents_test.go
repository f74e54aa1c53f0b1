package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestDocumentSigner(t *testing.T) *DocumentSigner {
	t.Helper()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	client, err := NewClient(&fakeSigner{email: "render@landlorddesk.iam.gserviceaccount.com"}, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	signer, err := NewDocumentSigner(client, "landlorddesk-documents")
	if err != nil {
		t.Fatalf("NewDocumentSigner: %v", err)
	}
	return signer
}

func TestDocumentSignerSignDownload(t *testing.T) {
	signer := newTestDocumentSigner(t)

	url, expiresAt, err := signer.SignDownload(context.Background(), "cases/case_a/documents/doc_a.pdf", 10*time.Minute)
	if err != nil {
		t.Fatalf("SignDownload: %v", err)
	}
	if !strings.Contains(url, "X-Goog-Signature=") {
		t.Fatalf("expected signed URL, got %s", url)
	}
	if !strings.Contains(url, "response-content-disposition=attachment") {
		t.Fatalf("expected attachment disposition in URL, got %s", url)
	}
	want := time.Date(2026, 3, 14, 10, 10, 0, 0, time.UTC)
	if !expiresAt.Equal(want) {
		t.Fatalf("expiry = %v, want %v", expiresAt, want)
	}
}

func TestDocumentSignerSignUpload(t *testing.T) {
	signer := newTestDocumentSigner(t)

	url, expiresAt, err := signer.SignUpload(context.Background(), "cases/case_a/documents/doc_a.pdf", time.Hour)
	if err != nil {
		t.Fatalf("SignUpload: %v", err)
	}
	if !strings.Contains(url, "X-Goog-Signature=") {
		t.Fatalf("expected signed URL, got %s", url)
	}
	want := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	if !expiresAt.Equal(want) {
		t.Fatalf("expiry = %v, want %v", expiresAt, want)
	}
}

func TestDocumentSignerRejectsBadPath(t *testing.T) {
	signer := newTestDocumentSigner(t)

	if _, _, err := signer.SignDownload(context.Background(), "../escape.pdf", time.Minute); err == nil {
		t.Fatal("expected error for traversal path")
	}
	if _, _, err := signer.SignUpload(context.Background(), "", time.Minute); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNewDocumentSignerValidation(t *testing.T) {
	client, err := NewClient(&fakeSigner{email: "render@landlorddesk.iam.gserviceaccount.com"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := NewDocumentSigner(nil, "bucket"); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewDocumentSigner(client, "  "); err == nil {
		t.Fatal("expected error for blank bucket")
	}
}
