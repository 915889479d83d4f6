package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds one exchange when the context has no deadline.
const DefaultTimeout = 5 * time.Second

var (
	// ErrNotRunning means no application is listening on the socket
	ErrNotRunning = errors.New("launcher: application not running")
	// ErrRejected means the application refused the event
	ErrRejected = errors.New("launcher: event rejected")
)

// Send delivers ev to the application listening on socketPath and waits
// for its acknowledgement.
func Send(ctx context.Context, socketPath string, ev Event) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		if isNotListening(err) {
			logrus.WithFields(logrus.Fields{
				"function": "launcher.Send",
				"socket":   socketPath,
			}).Debug("No application listening")
			return ErrNotRunning
		}
		return fmt.Errorf("launcher: dial %s: %w", socketPath, err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("launcher: set deadline: %w", err)
	}

	if err := cborEncMode.NewEncoder(conn).Encode(&ev); err != nil {
		return fmt.Errorf("launcher: write event: %w", err)
	}

	var ack Ack
	if err := cbor.NewDecoder(conn).Decode(&ack); err != nil {
		return fmt.Errorf("launcher: read ack: %w", err)
	}
	if !ack.OK {
		return fmt.Errorf("%w: %s", ErrRejected, ack.Error)
	}

	logrus.WithFields(logrus.Fields{
		"function": "launcher.Send",
		"route":    ev.Route,
		"path":     ev.Path,
	}).Info("Forwarded event to running application")

	return nil
}

// isNotListening reports dial errors meaning nobody owns the socket.
func isNotListening(err error) bool {
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENOENT)
}
