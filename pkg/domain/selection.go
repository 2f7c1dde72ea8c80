package domain

// Phase describes where the compare-selection state machine currently is.
type Phase string

const (
	PhaseIdle          Phase = "idle"           // Compare mode off
	PhaseSelectingFrom Phase = "selecting_from" // Compare mode on, no version chosen yet
	PhaseSelectingTo   Phase = "selecting_to"   // First version chosen, waiting for the second
	PhaseComparing     Phase = "comparing"      // Both versions chosen
)

// Slot names one of the two compare positions.
type Slot string

const (
	SlotFrom Slot = "from"
	SlotTo   Slot = "to"
)

// CompareSelection is the compare-mode slice of the history viewer state.
// Values are replaced wholesale by Reduce; a snapshot is never edited in place.
type CompareSelection struct {
	// Active is true while compare mode is on.
	Active bool `json:"active"`

	// VersionFrom is always filled before VersionTo.
	VersionFrom *Version `json:"version_from,omitempty"`
	VersionTo   *Version `json:"version_to,omitempty"`

	// Current is the version open in the detail view outside compare mode.
	Current *Version `json:"current,omitempty"`
}

// Phase derives the state machine phase from the snapshot.
func (s CompareSelection) Phase() Phase {
	switch {
	case !s.Active:
		return PhaseIdle
	case s.VersionFrom == nil:
		return PhaseSelectingFrom
	case s.VersionTo == nil:
		return PhaseSelectingTo
	default:
		return PhaseComparing
	}
}

// Pair returns both compared versions once the selection is complete.
func (s CompareSelection) Pair() (from, to *Version, ok bool) {
	if s.Phase() != PhaseComparing {
		return nil, nil, false
	}
	return s.VersionFrom, s.VersionTo, true
}

// IsActiveVersion reports whether a row for v should be highlighted: the
// versions occupying the compare slots, or the viewed version outside compare mode.
func (s CompareSelection) IsActiveVersion(v *Version) bool {
	if v == nil {
		return false
	}
	if s.Active {
		return s.VersionFrom.Same(v) || s.VersionTo.Same(v)
	}
	return s.Current.Same(v)
}

// Valid reports whether the snapshot honours the slot ordering invariant.
func (s CompareSelection) Valid() bool {
	if s.VersionTo != nil && s.VersionFrom == nil {
		return false
	}
	if !s.Active && (s.VersionFrom != nil || s.VersionTo != nil) {
		return false
	}
	return true
}

// Clone returns a deep copy of the snapshot.
func (s CompareSelection) Clone() CompareSelection {
	return CompareSelection{
		Active:      s.Active,
		VersionFrom: s.VersionFrom.Clone(),
		VersionTo:   s.VersionTo.Clone(),
		Current:     s.Current.Clone(),
	}
}
