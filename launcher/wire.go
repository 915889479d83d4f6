// Package launcher forwards shortcut and share invocations to a running
// portalsend application over a unix socket.
//
// Each connection carries exactly one CBOR-encoded Event from the invoking
// process and one Ack back. When nothing listens, Send returns
// ErrNotRunning and the caller is expected to cold start the application
// with the event seeded into its route bridge instead.
package launcher

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Event is a launch request. Path is only meaningful for the share route
// and must be absolute.
type Event struct {
	Route string `cbor:"1,keyasint"`
	Path  string `cbor:"2,keyasint,omitempty"`
}

// Ack is the listener's reply.
type Ack struct {
	OK    bool   `cbor:"1,keyasint"`
	Error string `cbor:"2,keyasint,omitempty"`
}

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("launcher: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}
