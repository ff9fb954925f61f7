package errors

import (
	"strings"
	"unicode"
)

// ValidateOutputFormat checks a requested artifact format against the
// supported set.
func ValidateOutputFormat(format string, supported []string) error {
	for _, s := range supported {
		if format == s {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (supported: %s)", format, strings.Join(supported, ", "))
}

// ValidatePath validates a user-supplied file path: non-empty, bounded
// length, no control characters or null bytes.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateTaxonName checks a taxon label: non-empty, bounded length, no
// control characters, and none of the characters reserved by tree and
// graph text formats.
func ValidateTaxonName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "taxon name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "taxon name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "taxon name contains control characters")
		}
	}
	if strings.ContainsAny(name, "(),;:[]\"'") {
		return New(ErrCodeInvalidInput, "taxon name %q contains reserved punctuation", name)
	}
	return nil
}
