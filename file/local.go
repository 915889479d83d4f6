package file

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// LocalSource serves content from a path on the local filesystem.
type LocalSource struct {
	path string
}

// NewLocalSource creates a source for path after checking it for directory
// traversal.
func NewLocalSource(path string) (*LocalSource, error) {
	cleaned, err := ValidatePath(path)
	if err != nil {
		return nil, err
	}
	return &LocalSource{path: cleaned}, nil
}

// ValidatePath checks if a file path is safe from directory traversal attacks.
// It returns the cleaned path or an error if the path contains traversal attempts.
func ValidatePath(path string) (string, error) {
	cleanedPath := filepath.Clean(path)

	for _, part := range strings.Split(filepath.ToSlash(cleanedPath), "/") {
		if part == ".." {
			return "", ErrDirectoryTraversal
		}
	}

	return cleanedPath, nil
}

// ID returns the cleaned path.
func (s *LocalSource) ID() string { return s.path }

// Name returns the base name of the path.
func (s *LocalSource) Name() (string, error) {
	return filepath.Base(s.path), nil
}

// Size returns the file length. Pipes, devices and other non-regular files
// report ErrNotRegularFile since their stat size does not describe the stream.
func (s *LocalSource) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return UnknownSize, err
	}
	if !info.Mode().IsRegular() {
		return UnknownSize, fmt.Errorf("%s: %w", s.path, ErrNotRegularFile)
	}
	return info.Size(), nil
}

// ContentType guesses the MIME type from the file extension.
func (s *LocalSource) ContentType() (string, error) {
	return mime.TypeByExtension(filepath.Ext(s.path)), nil
}

// Open opens the file for reading.
func (s *LocalSource) Open() (io.ReadCloser, error) {
	return os.Open(s.path)
}
