package utils

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidateAmount checks that an amount string is a valid non-negative
// decimal and returns the parsed value.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ValidateLedger checks that a ledger identifier is usable as a prefix: a
// parseable URL (http://red.example) or a dotted address prefix
// (us.fed.red.).
func ValidateLedger(ledger string) error {
	if ledger == "" {
		return fmt.Errorf("ledger cannot be empty")
	}

	if strings.Contains(ledger, "://") {
		u, err := url.Parse(ledger)
		if err != nil {
			return fmt.Errorf("invalid ledger URI: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("ledger URI has no host")
		}
		return nil
	}

	if strings.ContainsAny(ledger, " \t\n") {
		return fmt.Errorf("ledger prefix contains whitespace")
	}

	return nil
}

// ValidateCondition checks the surface shape of an encoded crypto-condition.
// Conditions are otherwise opaque to this library.
func ValidateCondition(condition string) error {
	if condition == "" {
		return fmt.Errorf("condition cannot be empty")
	}
	if !strings.HasPrefix(condition, "cc:") {
		return fmt.Errorf("condition must be a cc: URI")
	}
	return nil
}

// ValidateFulfillment checks the surface shape of an encoded fulfillment.
func ValidateFulfillment(fulfillment string) error {
	if fulfillment == "" {
		return fmt.Errorf("fulfillment cannot be empty")
	}
	if !strings.HasPrefix(fulfillment, "cf:") {
		return fmt.Errorf("fulfillment must be a cf: URI")
	}
	return nil
}

// ValidateExpiry checks that an expiry timestamp parses as RFC 3339 and lies
// in the future.
func ValidateExpiry(expiresAt string) (time.Time, error) {
	if expiresAt == "" {
		return time.Time{}, fmt.Errorf("expiry cannot be empty")
	}

	t, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry format: %w", err)
	}

	if t.Before(time.Now()) {
		return time.Time{}, fmt.Errorf("expiry must be in the future")
	}

	return t, nil
}
