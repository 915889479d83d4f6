package launcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/opd-ai/portalsend/file"
)

// recordingSink records what the listener delivered.
type recordingSink struct {
	mu       sync.Mutex
	launches int
	shares   []*file.Handle
}

func (s *recordingSink) Launch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launches++
}

func (s *recordingSink) Share(h *file.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares = append(s.shares, h)
}

func (s *recordingSink) snapshot() (int, []*file.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launches, append([]*file.Handle(nil), s.shares...)
}

// socketPath returns a short socket path; unix socket paths are limited
// to about 100 bytes and t.TempDir can exceed that on some platforms.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "psl")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "l.sock")
}
