package file

import (
	"io"
	"path"
	"strings"

	"github.com/opd-ai/portalsend/limits"
	"github.com/sirupsen/logrus"
)

// Handle is a resolved piece of shared content. It is immutable once returned
// by Resolve; the size is never queried again while the bytes are streamed.
type Handle struct {
	ID          string
	Name        string
	Size        int64
	ContentType string

	source Source
}

// SizeKnown reports whether the exact byte length is available.
func (h *Handle) SizeKnown() bool {
	return h.Size >= 0
}

// Open returns a new stream over the handle's bytes.
func (h *Handle) Open() (io.ReadCloser, error) {
	if h.source == nil {
		return nil, ErrNoSource
	}
	return h.source.Open()
}

// Resolve queries src for its display name, size and content type. It never
// fails: a metadata query error or a missing field falls back to a name derived
// from the identifier's trailing path segment, UnknownSize, and no content type.
func Resolve(src Source) *Handle {
	id := src.ID()
	h := &Handle{
		ID:     id,
		Size:   UnknownSize,
		source: src,
	}

	name, err := src.Name()
	if err != nil || name == "" {
		fields := logrus.Fields{
			"function": "Resolve",
			"id":       id,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		logrus.WithFields(fields).Debug("Display name unavailable, deriving from identifier")
		name = FallbackName(id)
	}
	h.Name = limits.TruncateFileName(name)

	size, err := src.Size()
	switch {
	case err != nil:
		// A transient provider failure lands here too and forces a chunked
		// upload for a file whose size is actually knowable.
		logrus.WithFields(logrus.Fields{
			"function": "Resolve",
			"id":       id,
			"error":    err.Error(),
			"fallback": "chunked",
		}).Warn("Size query failed, treating size as unknown")
	case size < 0:
		logrus.WithFields(logrus.Fields{
			"function": "Resolve",
			"id":       id,
			"fallback": "chunked",
		}).Debug("Source reports unknown size")
	default:
		h.Size = size
	}

	contentType, err := src.ContentType()
	if err == nil {
		h.ContentType = contentType
	}

	logrus.WithFields(logrus.Fields{
		"function":     "Resolve",
		"id":           id,
		"file_name":    h.Name,
		"file_size":    h.Size,
		"content_type": h.ContentType,
	}).Debug("Resolved file handle")

	return h
}

// FallbackName derives a display name from an identifier's trailing path
// segment, or returns DefaultFileName when there is none.
func FallbackName(id string) string {
	trimmed := strings.TrimRight(strings.ReplaceAll(id, "\\", "/"), "/")
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return DefaultFileName
	}
	base := path.Base(trimmed)
	if base == "." || base == "/" || base == "" || strings.HasSuffix(base, ":") {
		return DefaultFileName
	}
	return base
}
