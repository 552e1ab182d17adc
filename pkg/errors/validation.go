package errors

import (
	"strings"
	"unicode"
)

// ValidateArtifactPath validates an artifact path for safety and correctness.
// It rejects paths that could escape the run's artifact namespace.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No absolute paths
//   - No control characters or null bytes
//   - No path traversal sequences (.., //, backslashes)
//   - Maximum length of 256 characters
func ValidateArtifactPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidArtifactPath, "artifact path cannot be empty")
	}

	if len(path) > 256 {
		return New(ErrCodeInvalidArtifactPath, "artifact path too long (max 256 characters)")
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidArtifactPath, "artifact path must be relative")
	}

	// Check for control characters and null bytes
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArtifactPath, "artifact path contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidArtifactPath, "artifact path contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateRunID validates a run identifier.
// Run IDs are generated as UUIDs, but the store accepts any opaque token that
// is safe to embed in a filesystem path or URL segment.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRunID, "run id cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidRunID, "run id too long (max 64 characters)")
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return New(ErrCodeInvalidRunID, "run id contains invalid character %q", r)
		}
	}

	return nil
}
