package interfaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/opd-ai/portalsend/transfer"
)

// ISender executes one upload per call. Implementations must not retry:
// a nil error means the receiver accepted the file, any other error is a
// *transfer.Failure.
type ISender interface {
	// Send streams req.File to req.Address and blocks until the receiver answers
	Send(ctx context.Context, req *transfer.Request) error

	// IsSimulation returns true if this is a simulation implementation
	IsSimulation() bool
}

// IAddressStore is the read side of the settings store holding the last-known
// receiver address. The transfer core never writes it.
type IAddressStore interface {
	// Get returns the value stored under key, or false if absent
	Get(key string) (string, bool)
}

// ErrInvalidTimeout indicates a non-positive dial timeout
var ErrInvalidTimeout = errors.New("dial timeout must be positive")

// SenderConfig holds configuration for sender implementations
type SenderConfig struct {
	// UseSimulation determines whether to use simulation or real network
	UseSimulation bool

	// DialTimeout bounds connection setup in milliseconds. Streaming itself is
	// never timed out.
	DialTimeout int
}

// Validate checks the configuration bounds.
func (c *SenderConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, c.DialTimeout)
	}
	return nil
}
