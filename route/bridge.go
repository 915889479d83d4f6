package route

import (
	"sync"

	"github.com/opd-ai/portalsend/file"
	"github.com/sirupsen/logrus"
)

// Routes understood by the application layer.
const (
	// DefaultRoute is returned by PullInitialRoute when nothing is pending
	DefaultRoute = "/"
	// RouteSender opens the send screen without a payload
	RouteSender = "/sender"
	// RouteShare opens the send screen with a shared file
	RouteShare = "/share"
)

// Navigator is the running application layer. NavigateTo is called outside
// the bridge's state lock, one call at a time; it may read the shared
// payload but must not write to the bridge synchronously.
type Navigator interface {
	NavigateTo(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

// NavigateTo calls f(route).
func (f NavigatorFunc) NavigateTo(route string) { f(route) }

// PendingRoute is a route written while no navigator was attached.
type PendingRoute struct {
	Route    string
	Payload  *file.Handle
	Consumed bool
}

// Bridge is the route mailbox. The zero value is not usable; call NewBridge.
type Bridge struct {
	// notifyMu serializes pushes; it is always taken before mu.
	notifyMu sync.Mutex
	mu       sync.Mutex

	pending   *PendingRoute
	shared    *file.Handle
	navigator Navigator
}

// NewBridge returns an empty bridge with no navigator attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Launch records a direct launch (shortcut tap).
func (b *Bridge) Launch() {
	b.Deliver(RouteSender, nil)
}

// Share records a share action carrying h.
func (b *Bridge) Share(h *file.Handle) {
	b.Deliver(RouteShare, h)
}

// Deliver writes route and an optional payload. With a navigator attached
// the route is pushed immediately and the payload parked in the shared
// slot; otherwise both replace whatever is pending.
func (b *Bridge) Deliver(route string, payload *file.Handle) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	nav := b.navigator
	if nav == nil {
		overwritten := b.pending != nil && !b.pending.Consumed
		b.pending = &PendingRoute{Route: route, Payload: payload}
		b.mu.Unlock()

		logrus.WithFields(logrus.Fields{
			"function":    "Bridge.Deliver",
			"route":       route,
			"has_payload": payload != nil,
			"overwrote":   overwritten,
		}).Debug("Buffered route until the application pulls it")
		return
	}
	if payload != nil {
		b.shared = payload
	}
	b.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":    "Bridge.Deliver",
		"route":       route,
		"has_payload": payload != nil,
	}).Debug("Pushing route to running application")

	nav.NavigateTo(route)
}

// PullInitialRoute returns the pending route and marks it consumed, or
// DefaultRoute when nothing is pending. It never blocks on a push in
// progress.
func (b *Bridge) PullInitialRoute() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == nil || b.pending.Consumed {
		return DefaultRoute
	}
	route := b.pending.Route
	b.pending.Consumed = true
	if b.pending.Payload == nil {
		b.pending = nil
	}
	return route
}

// PullSharedPayload returns the shared file once. When the shared slot is
// empty it falls back to the payload carried by the most recent buffered
// share, clearing it.
func (b *Bridge) PullSharedPayload() (*file.Handle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if h := b.shared; h != nil {
		b.shared = nil
		return h, true
	}
	if b.pending != nil && b.pending.Payload != nil {
		h := b.pending.Payload
		b.pending.Payload = nil
		if b.pending.Consumed {
			b.pending = nil
		}
		return h, true
	}
	return nil, false
}

// Attach registers the running application layer. A pending route that was
// never pulled is pushed right away.
func (b *Bridge) Attach(nav Navigator) {
	if nav == nil {
		return
	}
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	b.navigator = nav
	var route string
	if b.pending != nil && !b.pending.Consumed {
		route = b.pending.Route
		if b.pending.Payload != nil {
			b.shared = b.pending.Payload
		}
		b.pending = nil
	}
	b.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "Bridge.Attach",
		"pushed_pending": route != "",
	}).Info("Application layer attached to route bridge")

	if route != "" {
		nav.NavigateTo(route)
	}
}

// Detach unregisters the application layer; later writes are buffered.
func (b *Bridge) Detach() {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	b.navigator = nil
	b.mu.Unlock()

	logrus.WithField("function", "Bridge.Detach").Info("Application layer detached from route bridge")
}

// Attached reports whether a navigator is registered.
func (b *Bridge) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.navigator != nil
}
