package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateHours_Accepts(t *testing.T) {
	for _, hours := range []string{"0.01", "1", "7.5", "7.50", "24", "168", "168.00"} {
		value, err := ValidateHours(hours)
		require.NoError(t, err, "hours=%s", hours)
		require.True(t, value.IsPositive())
	}
}

func TestNormalizeHours_CanonicalLiteral(t *testing.T) {
	cases := map[string]string{
		"0001.25": "1.25",
		"07.50":   "7.50",
		"7.50":    "7.50",
		"7.5":     "7.5",
		"0.10":    "0.10",
		"024":     "24",
		"168.00":  "168.00",
	}
	for input, want := range cases {
		got, err := NormalizeHours(input)
		require.NoError(t, err, "hours=%s", input)
		require.Equal(t, want, got, "hours=%s", input)
		require.LessOrEqual(t, len(got), 6, "hours=%s", input)
	}
}

func TestNormalizeHours_RejectsInvalid(t *testing.T) {
	for _, hours := range []string{"", "0", "0000", "169", "1.234"} {
		_, err := NormalizeHours(hours)
		require.Error(t, err, "hours=%s", hours)
	}
}

func TestValidateHours_Rejects(t *testing.T) {
	for _, hours := range []string{
		"", "0", "0.00", "-1", "1.234", "168.01", "169",
		"1,5", ".5", "1.", "abc", "1e2", "+1", " 1",
	} {
		_, err := ValidateHours(hours)
		require.Error(t, err, "hours=%s", hours)
	}
}
