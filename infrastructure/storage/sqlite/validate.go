// ABOUTME: Key and value validation for the SQLite storage backend
// ABOUTME: Rejects empty, oversized or null-byte keys and oversized values

package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

var (
	maxKeyLength   = 255
	maxValueLength = 16 * 1024 * 1024
)

// ValidateKey checks a storage key. Keys with quoting or comment characters
// are accepted, since every query is parameterized, but logged.
func ValidateKey(key string, logger interfaces.Logger) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return fmt.Errorf("key too long: max %d characters", maxKeyLength)
	}

	if strings.Contains(key, "\x00") {
		return errors.New("key cannot contain null bytes")
	}

	if logger != nil && strings.ContainsAny(key, "'\";\\\n\r\t") {
		logger.Warn("Suspicious pattern detected in storage key", map[string]interface{}{
			"key_length":  len(key),
			"key_preview": truncateKey(key),
		})
	}

	return nil
}

// ValidateValue checks a storage value. Empty values are allowed.
func ValidateValue(value []byte) error {
	if len(value) > maxValueLength {
		return fmt.Errorf("value too large: max %d bytes", maxValueLength)
	}
	return nil
}

func truncateKey(key string) string {
	const maxPreview = 50
	if len(key) <= maxPreview {
		return key
	}
	return key[:maxPreview] + "..."
}
