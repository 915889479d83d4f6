package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opd-ai/portalsend/file"
	"github.com/opd-ai/portalsend/interfaces"
	"github.com/opd-ai/portalsend/settings"
	"github.com/opd-ai/portalsend/transfer"
	"github.com/sirupsen/logrus"
)

// Default timings.
const (
	DefaultPresentationDelay = 300 * time.Millisecond
	DefaultDismissDelay      = 3000 * time.Millisecond
)

var (
	// ErrInputLocked is returned for a drag while a commit or upload is in progress
	ErrInputLocked = errors.New("input locked while sending")
	// ErrInvalidTransition is returned when an input does not apply to the current state
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrClosed is returned by every input after Close or success
	ErrClosed = errors.New("session closed")
	// ErrNoSender is returned by New without a sender
	ErrNoSender = errors.New("session requires a sender")
	// ErrNoStore is returned by New without an address store
	ErrNoStore = errors.New("session requires an address store")
)

// Options configures a Session.
type Options struct {
	Sender interfaces.ISender
	Store  interfaces.IAddressStore
	// File is the handle sent on commit. It may be set later with SetFile.
	File *file.Handle

	// DefaultPort is appended to stored addresses without one. Zero means
	// transfer.DefaultReceiverPort.
	DefaultPort       int
	PresentationDelay time.Duration
	DismissDelay      time.Duration
	Scheduler         Scheduler
}

// Session is one send screen's state machine.
type Session struct {
	id   string
	opts Options

	// notifyMu serializes observer calls; it is always taken before mu.
	notifyMu sync.Mutex
	mu       sync.Mutex

	state     State
	hover     bool
	failure   *transfer.Failure
	file      *file.Handle
	attempts  int
	timer     Timer
	observers []func(Event)
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Session in Idle. Cancelling parent has the same effect as
// Close on an in-flight upload's context, but does not tear the session down.
func New(parent context.Context, opts Options) (*Session, error) {
	if opts.Sender == nil {
		return nil, ErrNoSender
	}
	if opts.Store == nil {
		return nil, ErrNoStore
	}
	if opts.DefaultPort == 0 {
		opts.DefaultPort = transfer.DefaultReceiverPort
	}
	if opts.PresentationDelay <= 0 {
		opts.PresentationDelay = DefaultPresentationDelay
	}
	if opts.DismissDelay <= 0 {
		opts.DismissDelay = DefaultDismissDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = DefaultScheduler{}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		id:     id.String(),
		opts:   opts,
		state:  Idle,
		file:   opts.File,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	logrus.WithFields(logrus.Fields{
		"function":   "session.New",
		"session_id": s.id,
		"simulation": opts.Sender.IsSimulation(),
		"has_file":   opts.File != nil,
	}).Info("Created send session")

	return s, nil
}

// ID returns the session's correlation id.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Failure returns the failure shown while in Failed, nil otherwise.
func (s *Session) Failure() *transfer.Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Attempts returns how many uploads have been started.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Done is closed when the session succeeds or is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// OnTransition registers an observer. Observers run one at a time outside
// the state lock and must not call back into the session synchronously.
func (s *Session) OnTransition(fn func(Event)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// SetFile replaces the handle sent on the next commit. It is refused while
// a commit is in progress.
func (s *Session) SetFile(h *file.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.state == Committing || s.state == Sending {
		return ErrInputLocked
	}
	s.file = h
	return nil
}

// BeginDrag arms the send target. Only valid from Idle.
func (s *Session) BeginDrag() error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if err := s.checkInput(Idle); err != nil {
		s.mu.Unlock()
		return err
	}
	ev := s.transition(Armed, nil)
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Hover reports whether the dragged card is over the target. It only
// emits an event when the highlight changes.
func (s *Session) Hover(over bool) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if err := s.checkInput(Armed); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.hover == over {
		s.mu.Unlock()
		return nil
	}
	s.hover = over
	ev := Event{From: Armed, To: Armed, Hover: over}
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
	return nil
}

// Drop ends the drag. Over the target it commits; otherwise the session
// returns to Idle.
func (s *Session) Drop(over bool) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if err := s.checkInput(Armed); err != nil {
		s.mu.Unlock()
		return err
	}
	s.hover = false
	if !over {
		ev := s.transition(Idle, nil)
		s.mu.Unlock()
		s.emit(ev)
		return nil
	}

	ev := s.transition(Committing, nil)
	s.timer = s.opts.Scheduler.AfterFunc(s.opts.PresentationDelay, s.beginSending)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":   "Session.Drop",
		"session_id": s.id,
		"delay":      s.opts.PresentationDelay.String(),
	}).Debug("Committed, upload starts after presentation delay")

	s.emit(ev)
	return nil
}

// Close tears the session down. An in-flight upload is abandoned and its
// result is never reported. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	state := s.state
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.cancel()
	close(s.done)

	logrus.WithFields(logrus.Fields{
		"function":   "Session.Close",
		"session_id": s.id,
		"state":      state.String(),
	}).Info("Send session closed")
}

// checkInput validates an interactive input expected in want. Caller holds mu.
func (s *Session) checkInput(want State) error {
	if s.closed {
		return ErrClosed
	}
	if s.state == Committing || s.state == Sending {
		return ErrInputLocked
	}
	if s.state != want {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, inputFor(want), s.state)
	}
	return nil
}

func inputFor(want State) string {
	if want == Idle {
		return "begin drag"
	}
	return "drag input"
}

// transition moves to next and returns the event to emit. Caller holds mu.
func (s *Session) transition(next State, failure *transfer.Failure) Event {
	ev := Event{From: s.state, To: next, Failure: failure}
	s.state = next
	s.failure = failure

	logrus.WithFields(logrus.Fields{
		"function":   "Session.transition",
		"session_id": s.id,
		"from":       ev.From.String(),
		"to":         ev.To.String(),
	}).Debug("State transition")

	return ev
}

// emit runs observers. Caller holds notifyMu but not mu.
func (s *Session) emit(ev Event) {
	s.mu.Lock()
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}

// beginSending fires when the presentation delay elapses. The address is
// read with no lock held, since the store may block on a file lock; inputs
// stay rejected meanwhile because the session is still Committing.
func (s *Session) beginSending() {
	s.mu.Lock()
	s.timer = nil
	if s.closed || s.state != Committing {
		s.mu.Unlock()
		return
	}
	store := s.opts.Store
	s.mu.Unlock()

	address, ok := store.Get(settings.ReceiverAddressKey)

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed || s.state != Committing {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function":   "Session.beginSending",
			"session_id": s.id,
		}).Debug("Session closed while reading receiver address")
		return
	}
	if !ok {
		ev := s.fail(transfer.ConfigurationFailure(transfer.ErrNoReceiver))
		s.mu.Unlock()
		s.emit(ev)
		return
	}
	req, err := transfer.NewRequest(address, s.opts.DefaultPort, s.file)
	if err != nil {
		ev := s.fail(transfer.Classify(err))
		s.mu.Unlock()
		s.emit(ev)
		return
	}

	ev := s.transition(Sending, nil)
	s.attempts++
	attempt := s.attempts
	ctx := s.ctx
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":   "Session.beginSending",
		"session_id": s.id,
		"address":    req.Address,
		"file_name":  req.File.Name,
		"attempt":    attempt,
	}).Info("Starting upload")

	s.emit(ev)
	go s.run(ctx, req)
}

// run performs the upload on its own goroutine.
func (s *Session) run(ctx context.Context, req *transfer.Request) {
	err := s.opts.Sender.Send(ctx, req)
	s.complete(err)
}

// complete hands the upload result back to the state machine.
func (s *Session) complete(err error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed || s.state != Sending {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function":   "Session.complete",
			"session_id": s.id,
		}).Debug("Discarding result of abandoned upload")
		return
	}

	if err == nil {
		ev := s.transition(Succeeded, nil)
		s.closed = true
		s.mu.Unlock()

		logrus.WithFields(logrus.Fields{
			"function":   "Session.complete",
			"session_id": s.id,
		}).Info("Upload accepted by receiver")

		s.emit(ev)
		s.cancel()
		close(s.done)
		return
	}

	ev := s.fail(transfer.Classify(err))
	s.mu.Unlock()
	s.emit(ev)
}

// fail moves to Failed and schedules the dismissal. Caller holds mu.
func (s *Session) fail(failure *transfer.Failure) Event {
	logrus.WithFields(logrus.Fields{
		"function":   "Session.fail",
		"session_id": s.id,
		"reason":     failure.Reason.String(),
		"status":     failure.Status,
		"error":      failure.Error(),
	}).Warn("Upload failed")

	ev := s.transition(Failed, failure)
	s.timer = s.opts.Scheduler.AfterFunc(s.opts.DismissDelay, s.dismiss)
	return ev
}

// dismiss returns a failed session to Idle.
func (s *Session) dismiss() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.timer = nil
	if s.closed || s.state != Failed {
		s.mu.Unlock()
		return
	}
	ev := s.transition(Idle, nil)
	s.mu.Unlock()
	s.emit(ev)
}
