package receiver

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/opd-ai/portalsend/limits"
	"github.com/opd-ai/portalsend/transfer"
)

// ErrInvalidName is returned for header values that do not name a file.
var ErrInvalidName = errors.New("invalid file name")

// maxCollisionSuffix bounds the "(n)" search.
const maxCollisionSuffix = 9999

// SanitizeName decodes a file-name header value into a safe base name.
func SanitizeName(header string) (string, error) {
	if len(header) > limits.MaxEncodedFileName {
		return "", fmt.Errorf("%w: %w", ErrInvalidName, limits.ErrNameTooLong)
	}
	decoded, err := transfer.DecodeFileName(header)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidName, err)
	}

	name := path.Base(strings.ReplaceAll(decoded, `\`, "/"))
	name = strings.TrimSpace(name)
	if name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, decoded)
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", fmt.Errorf("%w: control character in %q", ErrInvalidName, decoded)
	}
	if err := limits.ValidateFileName(name); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	return name, nil
}

// candidateName returns name for n == 0 and "stem (n).ext" otherwise.
func candidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		// dotfiles such as ".bashrc" keep the whole name as the stem
		stem, ext = name, ""
	}
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}
