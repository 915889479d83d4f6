// Package file resolves shared content into transferable handles.
//
// This package hides where bytes come from (a path on disk, a pipe, a
// platform content provider) behind the Source capability and produces an
// immutable Handle carrying the metadata needed for an upload.
//
// Example:
//
//	src, err := file.NewLocalSource("/tmp/a.pdf")
//	if err != nil {
//	    return err
//	}
//	handle := file.Resolve(src)
//	fmt.Println(handle.Name, handle.Size)
package file

import (
	"errors"
	"io"
)

// UnknownSize marks a handle whose byte length could not be determined.
// Uploads of such handles use chunked transfer encoding.
const UnknownSize int64 = -1

// DefaultFileName is used when neither the source nor its identifier yield a name.
const DefaultFileName = "shared_file"

// ErrDirectoryTraversal indicates an attempt to access files outside allowed directories.
var ErrDirectoryTraversal = errors.New("path contains directory traversal")

// ErrNotRegularFile indicates the path does not refer to a regular file, so its
// size cannot be trusted.
var ErrNotRegularFile = errors.New("not a regular file")

// ErrNoSource indicates a handle was built without a backing source.
var ErrNoSource = errors.New("handle has no source")

// Source is the minimal capability a platform adapter provides for a piece of
// shared content. Metadata methods may fail independently; Resolve degrades
// each failure to a default instead of propagating it.
type Source interface {
	// ID returns the opaque content identifier (a path or URI).
	ID() string

	// Name returns the display name, or "" if the provider has none.
	Name() (string, error)

	// Size returns the byte length, or UnknownSize.
	Size() (int64, error)

	// ContentType returns the MIME type, or "" if unknown.
	ContentType() (string, error)

	// Open returns a fresh stream over the content bytes.
	Open() (io.ReadCloser, error)
}
