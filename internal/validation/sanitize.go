/*-------------------------------------------------------------------------
 *
 * sanitize.go
 *    Input sanitization for borrower-supplied fields
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/validation/sanitize.go
 *
 *-------------------------------------------------------------------------
 */

package validation

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var phoneRegexp = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

/* SanitizeString sanitizes a string input */
func SanitizeString(input string) string {
	/* Trim whitespace */
	output := strings.TrimSpace(input)

	/* Escape HTML entities */
	output = html.EscapeString(output)

	return output
}

/* SanitizePhone normalizes a phone number, stripping separators */
func SanitizePhone(input string) string {
	output := strings.TrimSpace(input)
	for _, sep := range []string{" ", "-", "(", ")", "."} {
		output = strings.ReplaceAll(output, sep, "")
	}
	return output
}

/* ValidatePhone validates a sanitized phone number */
func ValidatePhone(phone string) error {
	if !phoneRegexp.MatchString(phone) {
		return fmt.Errorf("phone number is not valid: %s", phone)
	}
	return nil
}
