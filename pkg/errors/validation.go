package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// identifierRegex matches topology names, group ids and cell ids:
// letters, digits and dashes, starting with a letter.
var identifierRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// maxIdentifierLength bounds names that end up in storage keys and URLs.
const maxIdentifierLength = 64

// ValidateTopologyName validates a topology name for safety and shape.
// It does not check that the topology is registered; that is the registry's job.
//
// Rules:
//   - No empty names
//   - No control characters
//   - Letters, digits and dashes only, starting with a letter
//   - Maximum length of 64 characters
func ValidateTopologyName(name string) error {
	return validateIdentifier(ErrCodeInvalidTopology, "topology name", name)
}

// ValidateGroupID validates the id of a proportion group (e.g. "rows", "row-2").
func ValidateGroupID(id string) error {
	return validateIdentifier(ErrCodeInvalidGroup, "group id", id)
}

// ValidateCellID validates a cell id.
func ValidateCellID(id string) error {
	return validateIdentifier(ErrCodeInvalidInput, "cell id", id)
}

func validateIdentifier(code Code, what, s string) error {
	if s == "" {
		return New(code, "%s cannot be empty", what)
	}

	if len(s) > maxIdentifierLength {
		return New(code, "%s too long (max %d characters)", what, maxIdentifierLength)
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return New(code, "%s contains invalid control characters", what)
		}
	}

	// Keys are joined with "/" and ":" in stores; reject anything path-like early.
	if strings.ContainsAny(s, "/\\:.") {
		return New(code, "%s contains invalid characters: %q", what, s)
	}

	if !identifierRegex.MatchString(s) {
		return New(code, "invalid %s: %q", what, s)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
