package resize

import (
	"time"

	"github.com/matzehuels/dashgrid/pkg/proportion"
)

// Comparison tolerances, in percentage points. The group tolerance is tighter
// because drift across many cells is more visible.
const (
	PairTolerance  = 1.0
	GroupTolerance = 0.1
)

// Decision is the outcome of evaluating one external vector.
type Decision int

const (
	// Adopt replaces the displayed vector with the external one.
	Adopt Decision = iota
	// RejectMalformed: wrong length or an invalid sum.
	RejectMalformed
	// RejectDragging: a drag is in progress and is never interrupted.
	RejectDragging
	// RejectEcho: the vector is our own save coming back.
	RejectEcho
	// RejectUnchanged: the same external value was already evaluated and
	// the display still shows it.
	RejectUnchanged
	// RejectWithinTolerance: the display already shows this value.
	RejectWithinTolerance
)

func (d Decision) String() string {
	switch d {
	case Adopt:
		return "adopt"
	case RejectMalformed:
		return "reject-malformed"
	case RejectDragging:
		return "reject-dragging"
	case RejectEcho:
		return "reject-echo"
	case RejectUnchanged:
		return "reject-unchanged"
	case RejectWithinTolerance:
		return "reject-within-tolerance"
	default:
		return "unknown"
	}
}

// Adopted reports whether the decision replaces the displayed vector.
func (d Decision) Adopted() bool { return d == Adopt }

// External is an externally supplied vector, for example one loaded from
// storage. Revision is the save revision stored with it, if any.
type External struct {
	Vector   proportion.Vector
	Revision string
}

// SyncState is the bookkeeping the guard keeps per controller.
type SyncState struct {
	// LastSent is the key of the vector most recently handed to the persister.
	LastSent string
	// LastSentRevision is the revision the persister assigned to LastSent.
	LastSentRevision string
	// SuppressUntil ends the window in which LastSent is treated as an echo.
	SuppressUntil time.Time
	// LastAppliedExternal is the key of the last external vector evaluated
	// past the echo check. Local commits and resets clear it.
	LastAppliedExternal string
}

// Arm records a committed vector and opens the suppression window.
func (s *SyncState) Arm(v proportion.Vector, now time.Time, window time.Duration) {
	s.LastSent = v.Key()
	s.LastSentRevision = ""
	s.SuppressUntil = now.Add(window)
	s.LastAppliedExternal = ""
}

// Acknowledge attaches the persister's revision to the last sent vector.
// It is ignored when a newer vector has been sent in the meantime.
func (s *SyncState) Acknowledge(v proportion.Vector, revision string) {
	if s.LastSent == v.Key() {
		s.LastSentRevision = revision
	}
}

func (s *SyncState) expire(now time.Time) {
	if !s.SuppressUntil.IsZero() && !now.Before(s.SuppressUntil) {
		s.LastSent = ""
		s.SuppressUntil = time.Time{}
	}
}

// Guard decides whether an external vector replaces the displayed one.
type Guard struct {
	// Tolerance is the element-wise distance, in percentage points, below
	// which an external vector is considered already displayed.
	Tolerance float64
}

// Decide evaluates ext against the displayed vector and updates s. The rules
// apply in order: malformed, dragging, echo, unchanged, within tolerance,
// adopt.
func (g Guard) Decide(s *SyncState, ext External, displayed proportion.Vector, dragging bool, now time.Time) Decision {
	s.expire(now)

	if err := ext.Vector.ValidateLen(len(displayed)); err != nil {
		return RejectMalformed
	}
	if dragging {
		return RejectDragging
	}

	key := ext.Vector.Key()
	byRevision := ext.Revision != "" && ext.Revision == s.LastSentRevision
	byValue := s.LastSent != "" && key == s.LastSent && now.Before(s.SuppressUntil)
	if byRevision || byValue {
		s.LastAppliedExternal = key
		return RejectEcho
	}

	if ext.Vector.WithinTolerance(displayed, g.Tolerance) {
		if key == s.LastAppliedExternal {
			return RejectUnchanged
		}
		s.LastAppliedExternal = key
		return RejectWithinTolerance
	}
	s.LastAppliedExternal = key

	s.LastSent = ""
	s.LastSentRevision = ""
	s.SuppressUntil = time.Time{}
	return Adopt
}
