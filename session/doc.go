// Package session implements the drag-to-send state machine.
//
// A Session walks Idle → Armed → Committing → Sending and ends either in
// Succeeded (terminal) or Failed, which returns to Idle after DismissDelay.
// The commit is one-way: once the card is dropped on the target no input
// can cancel it, and while Committing or Sending further drags are
// rejected with ErrInputLocked, so at most one upload is in flight per
// session.
//
// The receiver address is read from the address store when the commit
// delay elapses, never earlier, and never cached between attempts.
//
// Interactive calls (BeginDrag, Hover, Drop) are expected from one
// goroutine. The upload runs on its own goroutine and its result is handed
// back into the state machine. Close abandons an in-flight upload and
// suppresses its completion event.
package session
