// Package nav implements the two-screen tunnel menu: a tunnel list
// (Overview) and a three-field view of one tunnel (Detail).
package nav

// Screen identifies which menu is shown.
type Screen int

const (
	Overview Screen = iota
	Detail
)

func (s Screen) String() string {
	if s == Detail {
		return "detail"
	}
	return "overview"
}

// Field is a row of the Detail screen.
type Field int

const (
	FieldDomain Field = iota
	FieldName
	FieldPort
)

const detailMaxIndex = int(FieldPort)

// Action tells the caller what an Activate event requires of it.
type Action int

const (
	ActionNone Action = iota
	ActionDescend
	ActionEditName
	ActionEditPort
)

// State is the cursor position and descent history. Selected stays within
// [0, MaxIndex]; the stack holds one entry per level below Overview.
type State struct {
	Screen   Screen
	Selected int
	MaxIndex int

	stack   []int
	tunnels int
}

func New() *State {
	return &State{Screen: Overview}
}

// SetBounds recomputes MaxIndex for the current screen from the tunnel count.
// It runs on every render pass because a refresh may change the count. If the
// tunnel shown in Detail no longer exists the state ascends to Overview.
func (s *State) SetBounds(tunnelCount int) {
	s.tunnels = tunnelCount

	if s.Screen == Detail {
		if idx, ok := s.TunnelIndex(); !ok || idx >= tunnelCount {
			s.Back()
		}
	}

	switch s.Screen {
	case Detail:
		s.MaxIndex = detailMaxIndex
	default:
		s.MaxIndex = tunnelCount - 1
		if s.MaxIndex < 0 {
			s.MaxIndex = 0
		}
	}
	if s.Selected > s.MaxIndex {
		s.Selected = s.MaxIndex
	}
}

func (s *State) Up() {
	if s.Selected > 0 {
		s.Selected--
	}
}

func (s *State) Down() {
	if s.Selected < s.MaxIndex {
		s.Selected++
	}
}

// Activate handles Enter/Right. Descending from Overview happens here; edits
// are only requested and left to the caller.
func (s *State) Activate() Action {
	switch s.Screen {
	case Overview:
		if s.tunnels == 0 {
			return ActionNone
		}
		s.stack = append(s.stack, s.Selected)
		s.Screen = Detail
		s.Selected = 0
		s.MaxIndex = detailMaxIndex
		return ActionDescend
	case Detail:
		switch Field(s.Selected) {
		case FieldName:
			return ActionEditName
		case FieldPort:
			return ActionEditPort
		}
	}
	return ActionNone
}

// Back handles Escape/Left: pop the stack into Selected and return to Overview.
func (s *State) Back() {
	if len(s.stack) == 0 {
		return
	}
	last := len(s.stack) - 1
	s.Selected = s.stack[last]
	s.stack = s.stack[:last]
	s.Screen = Overview
	s.MaxIndex = s.tunnels - 1
	if s.MaxIndex < 0 {
		s.MaxIndex = 0
	}
	if s.Selected > s.MaxIndex {
		s.Selected = s.MaxIndex
	}
}

// Depth is the number of descents below Overview.
func (s *State) Depth() int {
	return len(s.stack)
}

// TunnelIndex is the tunnel shown in Detail.
func (s *State) TunnelIndex() (int, bool) {
	if len(s.stack) == 0 {
		return 0, false
	}
	return s.stack[0], true
}

// Field is the Detail row under the cursor.
func (s *State) Field() Field {
	return Field(s.Selected)
}
