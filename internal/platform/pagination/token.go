// Package pagination provides the opaque cursor tokens the Firestore
// repositories hand to clients as page_token values.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPageToken indicates the supplied page token could not be decoded.
var ErrInvalidPageToken = errors.New("pagination: invalid page token")

// Cursor identifies the last document of a page. Listings order by
// updatedAt descending with the document ID as tie-breaker, so both
// values are needed to resume a query.
type Cursor struct {
	UpdatedAt time.Time
	DocID     string
}

// IsZero reports whether the cursor carries no position.
func (c Cursor) IsZero() bool {
	return c.UpdatedAt.IsZero() && c.DocID == ""
}

// EncodeToken serialises the cursor into a base64 URL-safe page token.
// A zero cursor encodes to the empty string.
func EncodeToken(cursor Cursor) string {
	if cursor.IsZero() {
		return ""
	}
	payload := fmt.Sprintf("%s|%s", cursor.UpdatedAt.UTC().Format(time.RFC3339Nano), cursor.DocID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// DecodeToken parses a page token produced by EncodeToken. An empty
// token yields a zero cursor.
func DecodeToken(token string) (Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Cursor{}, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	parts := strings.SplitN(string(data), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Cursor{}, fmt.Errorf("%w: malformed payload", ErrInvalidPageToken)
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	return Cursor{UpdatedAt: ts, DocID: parts[1]}, nil
}
