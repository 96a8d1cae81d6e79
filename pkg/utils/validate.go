package utils

import (
	"os"
	"strings"
)

const defaultEmailDomain = "thapar.edu"

// AllowedEmailDomain is the campus domain signups are restricted to.
func AllowedEmailDomain() string {
	if domain := os.Getenv("ALLOWED_EMAIL_DOMAIN"); domain != "" {
		return domain
	}
	return defaultEmailDomain
}

// EmailDomainAllowed checks the address against the allowed campus domain.
func EmailDomainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return strings.EqualFold(email[at+1:], AllowedEmailDomain())
}

// IsValidPhoneNumber accepts exactly ten digits.
func IsValidPhoneNumber(phone string) bool {
	return isDigits(phone, 10)
}

// IsValidRollNumber accepts exactly ten digits.
func IsValidRollNumber(roll string) bool {
	return isDigits(roll, 10)
}

func isDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
