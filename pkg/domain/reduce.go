package domain

// Reduce applies an action to a selection snapshot and returns the next snapshot.
// It is total and has no side effects; the input snapshot is left untouched.
func Reduce(s CompareSelection, a Action) CompareSelection {
	next := s

	switch act := a.(type) {
	case EnterCompare:
		return CompareSelection{Active: true, VersionFrom: act.Version, Current: s.Current}

	case SelectVersion:
		if !s.Active {
			next.Current = act.Version
			return next
		}
		if act.Version == nil {
			return s
		}
		// The empty slot is filled first; "from" is never replaced by a plain select.
		if s.VersionFrom == nil {
			next.VersionFrom = act.Version
			return next
		}
		if s.VersionFrom.Same(act.Version) {
			return s
		}
		next.VersionTo = act.Version

	case ExitCompare:
		return CompareSelection{Current: s.Current}

	case ClearSlot:
		switch act.Slot {
		case SlotFrom:
			// Promote "to" so that "to" is never set without "from".
			next.VersionFrom = s.VersionTo
			next.VersionTo = nil
		case SlotTo:
			next.VersionTo = nil
		}

	case ToggleCompare:
		if act.Checked {
			return Reduce(s, EnterCompare{Version: s.Current})
		}
		return Reduce(s, ExitCompare{})

	case ShowVersion:
		next.Current = act.Version
	}

	return next
}

// ReduceAll folds a sequence of actions over a starting snapshot.
func ReduceAll(s CompareSelection, actions ...Action) CompareSelection {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}
