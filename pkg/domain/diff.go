package domain

// SelectionDelta describes what changed between two selection snapshots.
// It is serialised to JSON for readers that subscribe to selection updates.
type SelectionDelta struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Phase  *Phase `json:"phase,omitempty"`
	Active *bool  `json:"active,omitempty"`

	// Version numbers of the slots that changed; 0 means the slot was cleared.
	VersionFrom *int `json:"version_from,omitempty"`
	VersionTo   *int `json:"version_to,omitempty"`
	Current     *int `json:"current,omitempty"`
}

// DiffSelection calculates the difference between old and next.
// If old is nil, the delta describes the whole of next (initial load).
// It returns nil when nothing changed.
func DiffSelection(sessionID string, old *CompareSelection, next CompareSelection) *SelectionDelta {
	d := &SelectionDelta{SessionID: sessionID}

	if old == nil || old.Phase() != next.Phase() {
		p := next.Phase()
		d.Phase = &p
	}
	if old == nil || old.Active != next.Active {
		a := next.Active
		d.Active = &a
	}

	var prev CompareSelection
	if old != nil {
		prev = *old
	}
	d.VersionFrom = diffSlot(old == nil, prev.VersionFrom, next.VersionFrom)
	d.VersionTo = diffSlot(old == nil, prev.VersionTo, next.VersionTo)
	d.Current = diffSlot(old == nil, prev.Current, next.Current)

	if d.IsEmpty() {
		return nil
	}
	return d
}

func diffSlot(initial bool, old, next *Version) *int {
	n := versionNumber(next)
	if initial {
		if n == 0 {
			return nil
		}
		return &n
	}
	if versionNumber(old) == n {
		return nil
	}
	return &n
}

func versionNumber(v *Version) int {
	if v == nil {
		return 0
	}
	return v.Version
}

// IsEmpty checks if the delta contains any actionable changes.
func (d *SelectionDelta) IsEmpty() bool {
	return d.Phase == nil &&
		d.Active == nil &&
		d.VersionFrom == nil &&
		d.VersionTo == nil &&
		d.Current == nil
}
