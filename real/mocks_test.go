package real

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// capturedRequest is what the receiver observed for one upload.
type capturedRequest struct {
	method           string
	path             string
	fileName         string
	contentType      string
	contentLength    int64
	transferEncoding []string
	body             []byte
}

// capturingServer records every request and answers with a fixed status.
type capturingServer struct {
	server   *httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
}

func newCapturingServer(t *testing.T, status int, respBody string) *capturingServer {
	t.Helper()
	c := &capturingServer{}
	c.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.requests = append(c.requests, capturedRequest{
			method:           r.Method,
			path:             r.URL.Path,
			fileName:         r.Header.Get("file-name"),
			contentType:      r.Header.Get("Content-Type"),
			contentLength:    r.ContentLength,
			transferEncoding: r.TransferEncoding,
			body:             body,
		})
		c.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(c.server.Close)
	return c
}

func (c *capturingServer) last() capturedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return capturedRequest{}
	}
	return c.requests[len(c.requests)-1]
}

func (c *capturingServer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// trackingSource implements file.Source and counts stream closes.
type trackingSource struct {
	name     string
	data     []byte
	size     int64
	closeErr error

	mu     sync.Mutex
	closes int
}

func newTrackingSource(name string, data []byte, size int64) *trackingSource {
	return &trackingSource{name: name, data: data, size: size}
}

func (s *trackingSource) ID() string                   { return "test://" + s.name }
func (s *trackingSource) Name() (string, error)        { return s.name, nil }
func (s *trackingSource) Size() (int64, error)         { return s.size, nil }
func (s *trackingSource) ContentType() (string, error) { return "", nil }

func (s *trackingSource) Open() (io.ReadCloser, error) {
	return &trackingReader{Reader: bytes.NewReader(s.data), src: s}, nil
}

func (s *trackingSource) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type trackingReader struct {
	io.Reader
	src *trackingSource
}

func (r *trackingReader) Close() error {
	r.src.mu.Lock()
	defer r.src.mu.Unlock()
	r.src.closes++
	return r.src.closeErr
}

// errReader fails every read.
type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("device unplugged")
}
