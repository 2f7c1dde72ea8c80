package domain

import "fmt"

// ActionType is the wire name of a selection action.
type ActionType string

const (
	ActionEnterCompare  ActionType = "enter_compare"
	ActionSelectVersion ActionType = "select_version"
	ActionExitCompare   ActionType = "exit_compare"
	ActionClearSlot     ActionType = "clear_slot"
	ActionToggleCompare ActionType = "toggle_compare"
	ActionShowVersion   ActionType = "show_version"
)

// Action is a closed set of inputs to the compare-selection state machine.
type Action interface {
	Type() ActionType
}

// EnterCompare switches compare mode on with Version as the "from" side.
type EnterCompare struct{ Version *Version }

// SelectVersion picks a version. In compare mode it fills the empty slot.
type SelectVersion struct{ Version *Version }

// ExitCompare switches compare mode off and clears both slots.
type ExitCompare struct{}

// ClearSlot empties one compare slot.
type ClearSlot struct{ Slot Slot }

// ToggleCompare mirrors the "Compare 2 versions" checkbox.
type ToggleCompare struct{ Checked bool }

// ShowVersion opens a single version in the detail view.
type ShowVersion struct{ Version *Version }

func (EnterCompare) Type() ActionType  { return ActionEnterCompare }
func (SelectVersion) Type() ActionType { return ActionSelectVersion }
func (ExitCompare) Type() ActionType   { return ActionExitCompare }
func (ClearSlot) Type() ActionType     { return ActionClearSlot }
func (ToggleCompare) Type() ActionType { return ActionToggleCompare }
func (ShowVersion) Type() ActionType   { return ActionShowVersion }

// ActionEnvelope is the serialisable form of an Action used by adapters.
type ActionEnvelope struct {
	Type    ActionType `json:"type"`
	Version *Version   `json:"version,omitempty"`
	Slot    Slot       `json:"slot,omitempty"`
	Checked bool       `json:"checked,omitempty"`
}

// Action decodes the envelope into a concrete Action.
func (e ActionEnvelope) Action() (Action, error) {
	switch e.Type {
	case ActionEnterCompare:
		return EnterCompare{Version: e.Version}, nil
	case ActionSelectVersion:
		return SelectVersion{Version: e.Version}, nil
	case ActionExitCompare:
		return ExitCompare{}, nil
	case ActionClearSlot:
		if e.Slot != SlotFrom && e.Slot != SlotTo {
			return nil, fmt.Errorf("%w: slot %q", ErrInvalidAction, e.Slot)
		}
		return ClearSlot{Slot: e.Slot}, nil
	case ActionToggleCompare:
		return ToggleCompare{Checked: e.Checked}, nil
	case ActionShowVersion:
		return ShowVersion{Version: e.Version}, nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidAction, e.Type)
	}
}

// Envelope converts an Action back to its serialisable form.
func Envelope(a Action) ActionEnvelope {
	env := ActionEnvelope{Type: a.Type()}
	switch act := a.(type) {
	case EnterCompare:
		env.Version = act.Version
	case SelectVersion:
		env.Version = act.Version
	case ClearSlot:
		env.Slot = act.Slot
	case ToggleCompare:
		env.Checked = act.Checked
	case ShowVersion:
		env.Version = act.Version
	}
	return env
}
