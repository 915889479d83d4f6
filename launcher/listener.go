package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/opd-ai/portalsend/file"
	"github.com/opd-ai/portalsend/route"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnknownRoute is returned for events naming a route the app does not serve
	ErrUnknownRoute = errors.New("launcher: unknown route")
	// ErrRelativePath is returned for share events without an absolute path
	ErrRelativePath = errors.New("launcher: share path must be absolute")
	// ErrAlreadyRunning is returned by Listen when another process owns the socket
	ErrAlreadyRunning = errors.New("launcher: application already running")
)

// Sink receives decoded events. *route.Bridge implements it.
type Sink interface {
	Launch()
	Share(h *file.Handle)
}

// Listener accepts launcher events on a unix socket.
type Listener struct {
	path string
	sink Sink

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// NewListener creates a listener for path that writes events to sink.
func NewListener(path string, sink Sink) *Listener {
	return &Listener{path: path, sink: sink}
}

// Listen binds the socket. A stale socket file left by a crashed process
// is removed; a live one yields ErrAlreadyRunning.
func (l *Listener) Listen() error {
	if _, err := os.Stat(l.path); err == nil {
		if conn, dialErr := net.DialTimeout("unix", l.path, time.Second); dialErr == nil {
			conn.Close()
			return ErrAlreadyRunning
		}
		if err := os.Remove(l.path); err != nil {
			return fmt.Errorf("launcher: remove stale socket: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("launcher: create socket directory: %w", err)
	}

	ln, err := net.Listen("unix", l.path)
	if err != nil {
		return fmt.Errorf("launcher: listen on %s: %w", l.path, err)
	}
	if err := os.Chmod(l.path, 0o600); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listener.Listen",
			"socket":   l.path,
			"error":    err.Error(),
		}).Warn("Failed to restrict socket permissions")
	}

	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Listener.Listen",
		"socket":   l.path,
	}).Info("Launcher listening")
	return nil
}

// Serve accepts connections until ctx ends or Close is called. Listen must
// have succeeded first.
func (l *Listener) Serve(ctx context.Context) error {
	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("launcher: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { _ = l.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				l.wg.Wait()
				return nil
			}
			logrus.WithFields(logrus.Fields{
				"function": "Listener.Serve",
				"error":    err.Error(),
			}).Warn("Accept failed")
			continue
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.handleConnection(conn)
		}()
	}
}

// Close stops accepting and removes the socket file.
func (l *Listener) Close() error {
	l.mu.Lock()
	ln := l.ln
	l.ln = nil
	l.mu.Unlock()
	if ln == nil {
		return nil
	}

	err := ln.Close()
	if rmErr := os.Remove(l.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		logrus.WithFields(logrus.Fields{
			"function": "Listener.Close",
			"socket":   l.path,
			"error":    rmErr.Error(),
		}).Warn("Failed to remove socket file")
	}
	return err
}

// handleConnection handles a single event on a connection.
func (l *Listener) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(DefaultTimeout))

	var ev Event
	ack := Ack{OK: true}
	if err := cbor.NewDecoder(conn).Decode(&ev); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listener.handleConnection",
			"error":    err.Error(),
		}).Warn("Failed to decode launcher event")
		ack = Ack{Error: fmt.Sprintf("malformed event: %v", err)}
	} else if err := l.Dispatch(ev); err != nil {
		ack = Ack{Error: err.Error()}
	}
	if err := cborEncMode.NewEncoder(conn).Encode(&ack); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listener.handleConnection",
			"error":    err.Error(),
		}).Warn("Failed to write launcher ack")
	}
}

// Dispatch validates ev and writes it to the sink. It is also used to seed
// the bridge directly on a cold start.
func (l *Listener) Dispatch(ev Event) error {
	return Dispatch(l.sink, ev)
}

// Dispatch writes ev to sink, resolving share paths into file handles.
func Dispatch(sink Sink, ev Event) error {
	logger := logrus.WithFields(logrus.Fields{
		"function": "launcher.Dispatch",
		"route":    ev.Route,
		"path":     ev.Path,
	})

	switch ev.Route {
	case route.RouteSender:
		sink.Launch()
	case route.RouteShare:
		if !filepath.IsAbs(ev.Path) {
			logger.Warn("Rejected share with relative path")
			return fmt.Errorf("%w: %q", ErrRelativePath, ev.Path)
		}
		src, err := file.NewLocalSource(ev.Path)
		if err != nil {
			logger.WithField("error", err.Error()).Warn("Rejected share path")
			return err
		}
		sink.Share(file.Resolve(src))
	default:
		logger.Warn("Rejected unknown route")
		return fmt.Errorf("%w: %q", ErrUnknownRoute, ev.Route)
	}

	logger.Info("Delivered launcher event")
	return nil
}
