package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewUploadName returns a unique name for a staged upload.
func NewUploadName() string {
	return "upload-" + uuid.NewString() + ".tmp"
}

// NewRequestID returns a random request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// ParseETag extracts the hash from an If-None-Match value. Quotes and a weak
// validator prefix are accepted.
func ParseETag(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "W/")
	return strings.Trim(value, `"`)
}

// ETag formats a hash as a strong entity tag.
func ETag(hash string) string {
	return `"` + hash + `"`
}
