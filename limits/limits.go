// Package limits provides centralized size limits for portalsend uploads.
package limits

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxFileNameLength is the maximum display name length in bytes.
	// The value matches typical filesystem limits.
	MaxFileNameLength = 255

	// MaxEncodedFileName is the maximum length of the URL-encoded file-name header.
	MaxEncodedFileName = MaxFileNameLength * 3

	// MaxResponseSnippet is the number of response body bytes kept when the
	// receiver rejects an upload.
	MaxResponseSnippet = 512
)

var (
	// ErrNameEmpty indicates an empty file name was provided
	ErrNameEmpty = errors.New("empty file name")

	// ErrNameTooLong indicates a file name exceeds MaxFileNameLength
	ErrNameTooLong = errors.New("file name too long")
)

// ValidateFileName validates a display name against MaxFileNameLength.
// Returns an error with context if the name is empty or exceeds the limit.
func ValidateFileName(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if len(name) > MaxFileNameLength {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrNameTooLong, len(name), MaxFileNameLength)
	}
	return nil
}

// TruncateFileName shortens name to at most MaxFileNameLength bytes without
// splitting a UTF-8 sequence.
func TruncateFileName(name string) string {
	return truncateUTF8(name, MaxFileNameLength)
}

// Snippet converts a response body prefix into a display string of at most
// MaxResponseSnippet bytes with surrounding whitespace removed.
func Snippet(body []byte) string {
	return strings.TrimSpace(truncateUTF8(string(body), MaxResponseSnippet))
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
