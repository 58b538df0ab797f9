// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers entered without a country prefix.
const DefaultRegion = "US"

// NormalizeE164 formats a phone number to E.164 using DefaultRegion.
// If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	return NormalizeE164In(input, DefaultRegion)
}

// NormalizeE164In is NormalizeE164 with an explicit fallback region.
func NormalizeE164In(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizePtr applies NormalizeE164 to an optional value.
func NormalizePtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := NormalizeE164(*input)
	return &out
}
