package utils

import (
	"fmt"
	"regexp"
)

var (
	projectIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/_\-]*$`)
	currencyRegex  = regexp.MustCompile(`^[A-Z]{3}$`)
	controlRegex   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateProjectID validates a sanctioned project identifier
func ValidateProjectID(projectID string) error {
	if len(projectID) > 64 {
		return fmt.Errorf("project ID too long: %s", projectID)
	}
	if !projectIDRegex.MatchString(projectID) {
		return fmt.Errorf("invalid project ID format: %s", projectID)
	}
	return nil
}

// ValidateCurrency validates an ISO 4217 currency code
func ValidateCurrency(currency string) error {
	if !currencyRegex.MatchString(currency) {
		return fmt.Errorf("invalid currency code: %s", currency)
	}
	return nil
}

// SanitizeString removes control characters from user-supplied text
func SanitizeString(s string) string {
	return controlRegex.ReplaceAllString(s, "")
}
