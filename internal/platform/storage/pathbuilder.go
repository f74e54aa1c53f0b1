package storage

import (
	"fmt"
	"strings"
)

// BuildDocumentObjectPath composes the object key for a rendered document PDF.
func BuildDocumentObjectPath(caseID, documentID string) (string, error) {
	caseSegment, err := validateSegment("caseID", caseID)
	if err != nil {
		return "", err
	}
	docSegment, err := validateSegment("documentID", documentID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("cases/%s/documents/%s.pdf", caseSegment, docSegment), nil
}

// ValidateObjectPath rejects object keys that escape the bucket layout.
func ValidateObjectPath(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return fmt.Errorf("storage: object path is required")
	}
	if strings.HasPrefix(trimmed, "/") {
		return fmt.Errorf("storage: object path must be relative")
	}
	if strings.Contains(trimmed, "..") {
		return fmt.Errorf("storage: object path contains invalid traversal sequence")
	}
	if strings.Contains(trimmed, "\\") {
		return fmt.Errorf("storage: object path contains invalid path characters")
	}
	return nil
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}
