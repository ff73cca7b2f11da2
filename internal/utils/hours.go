package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/shiftlog/work-hour-api/internal/constants"
)

// hoursPattern accepts a plain decimal with at most two fraction digits.
var hoursPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ValidateHours checks the wire format and range of an hours string and
// returns its decimal value. Accepted values satisfy 0 < h <= 168.
func ValidateHours(hours string) (decimal.Decimal, error) {
	if !hoursPattern.MatchString(hours) {
		return decimal.Zero, fmt.Errorf("hours must match a decimal with up to two fraction digits")
	}

	value, err := decimal.NewFromString(hours)
	if err != nil {
		return decimal.Zero, fmt.Errorf("hours is not a valid decimal: %w", err)
	}

	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("hours must be greater than zero")
	}
	if value.GreaterThan(decimal.NewFromInt(constants.MaxHoursPerLog)) {
		return decimal.Zero, fmt.Errorf("hours must not exceed %d", constants.MaxHoursPerLog)
	}

	return value, nil
}

// NormalizeHours validates hours and returns the canonical literal for
// storage: superfluous leading zeros drop off while the fraction keeps the
// digits as typed, so "0007.50" persists as "7.50" and "7.5" stays "7.5".
// The result never exceeds the six characters of "168.00".
func NormalizeHours(hours string) (string, error) {
	value, err := ValidateHours(hours)
	if err != nil {
		return "", err
	}

	if idx := strings.IndexByte(hours, '.'); idx >= 0 {
		return value.StringFixed(int32(len(hours) - idx - 1)), nil
	}
	return value.String(), nil
}
