// Package models defines the data structures for the customer retention engine.
package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrDuplicateOfferCode = errors.New("duplicate offer code in catalog")
	ErrOfferNotFound      = errors.New("offer code not found in catalog")
)

// ValidateRecord validates a cancellation record before processing.
// The reason may be empty (an empty reason degrades to no-match downstream);
// the email must be deliverable.
func ValidateRecord(r CancellationRecord) error {
	if !IsValidEmail(r.CustomerEmail) {
		return ErrInvalidEmail
	}
	return nil
}

// IsValidEmail performs basic email validation.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}

	// Must contain @ with content before and after
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	return true
}

// EmailLocalPart extracts the part before the @ sign, used to derive a
// customer salutation when no separate name field exists.
func EmailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return email
}
