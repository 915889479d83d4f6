package file

import "io"

// StreamSource adapts an arbitrary opener, such as standard input or an
// in-memory buffer, to Source.
type StreamSource struct {
	id          string
	name        string
	size        int64
	contentType string
	open        func() (io.ReadCloser, error)
}

// NewStreamSource creates a source with fixed metadata. Pass UnknownSize when
// the length is not known in advance.
func NewStreamSource(id, name string, size int64, contentType string, open func() (io.ReadCloser, error)) *StreamSource {
	return &StreamSource{
		id:          id,
		name:        name,
		size:        size,
		contentType: contentType,
		open:        open,
	}
}

func (s *StreamSource) ID() string                   { return s.id }
func (s *StreamSource) Name() (string, error)        { return s.name, nil }
func (s *StreamSource) Size() (int64, error)         { return s.size, nil }
func (s *StreamSource) ContentType() (string, error) { return s.contentType, nil }

// Open calls the opener. Each call must yield a fresh stream.
func (s *StreamSource) Open() (io.ReadCloser, error) {
	return s.open()
}
