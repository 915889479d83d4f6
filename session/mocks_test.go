package session

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/opd-ai/portalsend/file"
	"github.com/opd-ai/portalsend/transfer"
)

// manualScheduler fires timers only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{s: m, at: m.now + d, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock and runs every timer that came due.
func (m *manualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.fired && !t.stopped && t.at <= m.now {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// pending counts timers that have neither fired nor been stopped.
func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// mockSender records calls. When release is set, Send blocks until it is
// closed or the context ends.
type mockSender struct {
	mu       sync.Mutex
	calls    int
	requests []*transfer.Request
	result   error
	release  chan struct{}
	ctxErr   error
	returned chan struct{}
}

func newMockSender() *mockSender {
	return &mockSender{returned: make(chan struct{}, 16)}
}

func (m *mockSender) Send(ctx context.Context, req *transfer.Request) error {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	release := m.release
	result := m.result
	m.mu.Unlock()

	defer func() { m.returned <- struct{}{} }()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			m.mu.Lock()
			m.ctxErr = ctx.Err()
			m.mu.Unlock()
			return transfer.IOFailure(ctx.Err())
		}
	}
	return result
}

func (m *mockSender) IsSimulation() bool { return true }

func (m *mockSender) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockSender) lastRequest() *transfer.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockSender) setResult(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = err
}

func (m *mockSender) block() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release = make(chan struct{})
	return m.release
}

// blockingStore holds every Get until release is closed.
type blockingStore struct {
	address string
	entered chan struct{}
	release chan struct{}
}

func newBlockingStore(address string) *blockingStore {
	return &blockingStore{
		address: address,
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (b *blockingStore) Get(key string) (string, bool) {
	b.entered <- struct{}{}
	<-b.release
	return b.address, b.address != ""
}

// eventRecorder collects transition events.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []State
	for _, ev := range r.events {
		if !isHoverEvent(ev) {
			out = append(out, ev.To)
		}
	}
	return out
}

func (r *eventRecorder) hovers() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bool
	for _, ev := range r.events {
		if isHoverEvent(ev) {
			out = append(out, ev.Hover)
		}
	}
	return out
}

func isHoverEvent(ev Event) bool {
	return ev.From == Armed && ev.To == Armed
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func testFile(name string, size int) *file.Handle {
	data := bytes.Repeat([]byte{0x5a}, size)
	src := file.NewStreamSource("mem://"+name, name, int64(size), "application/octet-stream", func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
	return file.Resolve(src)
}
