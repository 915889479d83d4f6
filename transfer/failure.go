package transfer

import (
	"errors"
	"fmt"
)

// Reason classifies why an upload did not succeed.
type Reason uint8

const (
	// ReasonConfiguration means no usable receiver address; no I/O was attempted.
	ReasonConfiguration Reason = iota + 1
	// ReasonIO means a connect, write or read fault.
	ReasonIO
	// ReasonServerRejection means the receiver answered with a non-2xx status.
	ReasonServerRejection
)

// String returns a short label for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonConfiguration:
		return "configuration"
	case ReasonIO:
		return "io"
	case ReasonServerRejection:
		return "server_rejection"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// Failure is the error returned by a sender when an upload fails. Status and
// Snippet are set only for ReasonServerRejection.
type Failure struct {
	Reason  Reason
	Status  int
	Snippet string
	Err     error
}

// Error implements error.
func (f *Failure) Error() string {
	switch f.Reason {
	case ReasonServerRejection:
		if f.Snippet == "" {
			return fmt.Sprintf("server rejected upload: status %d", f.Status)
		}
		return fmt.Sprintf("server rejected upload: status %d: %s", f.Status, f.Snippet)
	default:
		if f.Err == nil {
			return f.Reason.String() + " failure"
		}
		return f.Reason.String() + ": " + f.Err.Error()
	}
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// ConfigurationFailure wraps err as a configuration failure.
func ConfigurationFailure(err error) *Failure {
	return &Failure{Reason: ReasonConfiguration, Err: err}
}

// IOFailure wraps err as an I/O failure.
func IOFailure(err error) *Failure {
	return &Failure{Reason: ReasonIO, Err: err}
}

// RejectionFailure records a non-2xx answer from the receiver.
func RejectionFailure(status int, snippet string) *Failure {
	return &Failure{Reason: ReasonServerRejection, Status: status, Snippet: snippet}
}

// Classify returns err as a *Failure. Errors that are not already failures
// are treated as I/O faults. A nil error yields nil.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return IOFailure(err)
}
