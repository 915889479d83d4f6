package session

import (
	"image"

	"github.com/opd-ai/portalsend/transfer"
)

// State is a position in the send state machine.
type State int

const (
	Idle State = iota
	Armed
	Committing
	Sending
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Committing:
		return "committing"
	case Sending:
		return "sending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == Succeeded
}

// Event describes one transition. Hover events have From == To == Armed.
type Event struct {
	From    State
	To      State
	Failure *transfer.Failure
	Hover   bool
}

// Overlaps reports whether the dragged card intersects the drop target.
// Empty rectangles never overlap.
func Overlaps(card, target image.Rectangle) bool {
	return card.Overlaps(target)
}
