package pagination

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeToken(t *testing.T) {
	cursor := Cursor{
		UpdatedAt: time.Date(2026, 3, 14, 10, 30, 0, 123456789, time.UTC),
		DocID:     "case_01abc",
	}

	token := EncodeToken(cursor)
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	decoded, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if !decoded.UpdatedAt.Equal(cursor.UpdatedAt) {
		t.Fatalf("updatedAt = %v, want %v", decoded.UpdatedAt, cursor.UpdatedAt)
	}
	if decoded.DocID != cursor.DocID {
		t.Fatalf("docID = %q, want %q", decoded.DocID, cursor.DocID)
	}
}

func TestEncodeTokenZeroCursor(t *testing.T) {
	if token := EncodeToken(Cursor{}); token != "" {
		t.Fatalf("expected empty token for zero cursor, got %q", token)
	}
}

func TestDecodeTokenEmpty(t *testing.T) {
	cursor, err := DecodeToken("  ")
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if !cursor.IsZero() {
		t.Fatalf("expected zero cursor, got %+v", cursor)
	}
}

func TestDecodeTokenInvalid(t *testing.T) {
	cases := []string{
		"not base64!!",
		"bm8gc2VwYXJhdG9y",
		"bm90LWEtdGltZXxkb2NfMQ",
	}
	for _, token := range cases {
		if _, err := DecodeToken(token); !errors.Is(err, ErrInvalidPageToken) {
			t.Fatalf("token %q: expected ErrInvalidPageToken, got %v", token, err)
		}
	}
}
