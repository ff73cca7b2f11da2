package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateResetToken returns an opaque password-reset token.
func GenerateResetToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
