package file

import (
	"bytes"
	"errors"
	"io"
	"time"
)

// mockTimeProvider provides deterministic time for testing.
type mockTimeProvider struct {
	currentTime time.Time
}

func (m *mockTimeProvider) Now() time.Time {
	return m.currentTime
}

func (m *mockTimeProvider) Since(t time.Time) time.Duration {
	return m.currentTime.Sub(t)
}

func (m *mockTimeProvider) advance(d time.Duration) {
	m.currentTime = m.currentTime.Add(d)
}

func newMockTimeProvider() *mockTimeProvider {
	return &mockTimeProvider{
		currentTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

var errProviderGlitch = errors.New("provider glitch")

// mockSource implements Source with per-field failures.
type mockSource struct {
	id          string
	name        string
	nameErr     error
	size        int64
	sizeErr     error
	contentType string
	typeErr     error
	data        []byte
	sizeCalls   int
}

func (m *mockSource) ID() string { return m.id }

func (m *mockSource) Name() (string, error) { return m.name, m.nameErr }

func (m *mockSource) Size() (int64, error) {
	m.sizeCalls++
	return m.size, m.sizeErr
}

func (m *mockSource) ContentType() (string, error) { return m.contentType, m.typeErr }

func (m *mockSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

// closeErrReader fails on Close.
type closeErrReader struct {
	io.Reader
	closes int
}

func (c *closeErrReader) Close() error {
	c.closes++
	return errors.New("close failed")
}
