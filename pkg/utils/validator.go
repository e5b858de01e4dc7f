package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	identifierRe = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)
)

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}

// ValidateIdentifier checks that an entity identifier is a short token of
// letters, digits, dashes or underscores.
func ValidateIdentifier(id string) error {
	if !identifierRe.MatchString(id) {
		return fmt.Errorf("invalid identifier: %q", id)
	}
	return nil
}
