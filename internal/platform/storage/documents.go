package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DocumentSigner issues signed download URLs for rendered document PDFs.
// Ownership is checked by the document service before signing, so the
// resulting URL is bearer-authorised.
type DocumentSigner struct {
	client *Client
	bucket string
}

// NewDocumentSigner constructs a DocumentSigner for the given bucket.
func NewDocumentSigner(client *Client, bucket string) (*DocumentSigner, error) {
	if client == nil {
		return nil, errors.New("storage: client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errInvalidBucket
	}
	return &DocumentSigner{client: client, bucket: bucket}, nil
}

// SignDownload returns a time-limited GET URL for the stored object.
func (s *DocumentSigner) SignDownload(ctx context.Context, storagePath string, expiry time.Duration) (string, time.Time, error) {
	if s == nil || s.client == nil {
		return "", time.Time{}, errNoSigner
	}
	if err := ValidateObjectPath(storagePath); err != nil {
		return "", time.Time{}, err
	}

	result, err := s.client.SignedURL(ctx, s.bucket, strings.TrimSpace(storagePath), SignedURLOptions{
		Download: &DownloadOptions{
			Method:         httpMethodGet,
			ExpiresIn:      expiry,
			Disposition:    "attachment",
			ResponseType:   "application/pdf",
			AllowAnonymous: true,
		},
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return result.URL, result.ExpiresAt, nil
}

// SignUpload returns a time-limited PUT URL the render worker uses to store
// the finished PDF at the given path.
func (s *DocumentSigner) SignUpload(ctx context.Context, storagePath string, expiry time.Duration) (string, time.Time, error) {
	if s == nil || s.client == nil {
		return "", time.Time{}, errNoSigner
	}
	if err := ValidateObjectPath(storagePath); err != nil {
		return "", time.Time{}, err
	}

	result, err := s.client.SignedURL(ctx, s.bucket, strings.TrimSpace(storagePath), SignedURLOptions{
		Upload: &UploadOptions{
			Method:              httpMethodPut,
			ContentType:         "application/pdf",
			AllowedContentTypes: []string{"application/pdf"},
			ExpiresIn:           expiry,
		},
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return result.URL, result.ExpiresAt, nil
}
