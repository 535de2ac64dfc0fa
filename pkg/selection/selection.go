// Package selection holds the current grade and school choice. It performs no
// I/O; every method is a pure state transition.
package selection

import (
	"errors"
	"sort"
	"strconv"
)

// ErrNoGradeSelected is returned when a school is chosen before a grade.
var ErrNoGradeSelected = errors.New("selection: no grade selected")

// Mode decides how many schools make a selection ready.
type Mode int

const (
	// ModeSingle is ready with exactly one school.
	ModeSingle Mode = iota
	// ModeMulti is ready with one or more schools.
	ModeMulti
)

// ParseMode maps a config value to a Mode, defaulting to ModeSingle.
func ParseMode(s string) Mode {
	if s == "multi" {
		return ModeMulti
	}
	return ModeSingle
}

// Phase is the coarse state of a selection.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseGradeChosen
	PhaseSchoolChosen
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseGradeChosen:
		return "grade-chosen"
	case PhaseSchoolChosen:
		return "school-chosen"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Key identifies the selection a request was issued for. Responses carrying a
// Key that no longer matches State.Key are stale.
type Key struct {
	Grade  int
	School string
}

// IsZero reports whether the key names no grade.
func (k Key) IsZero() bool { return k.Grade == 0 && k.School == "" }

func (k Key) String() string {
	if k.IsZero() {
		return "-"
	}
	return strconv.Itoa(k.Grade) + "/" + k.School
}

// State is the single source of truth for grade and schools.
type State struct {
	mode     Mode
	grade    int
	hasGrade bool
	schools  map[string]struct{}
}

// New returns an empty selection.
func New(mode Mode) *State {
	return &State{mode: mode, schools: map[string]struct{}{}}
}

// Mode returns the readiness mode.
func (s *State) Mode() Mode { return s.mode }

// SetGrade chooses grade g and clears every school, since unit availability is
// grade scoped. It reports whether the result is ready to preview.
func (s *State) SetGrade(g int) bool {
	s.grade = g
	s.hasGrade = true
	s.schools = map[string]struct{}{}
	return s.IsReady()
}

// ClearGrade returns to the empty state.
func (s *State) ClearGrade() {
	s.grade = 0
	s.hasGrade = false
	s.schools = map[string]struct{}{}
}

// ToggleSchool flips membership of school.
func (s *State) ToggleSchool(school string) error {
	if !s.hasGrade {
		return ErrNoGradeSelected
	}
	if _, ok := s.schools[school]; ok {
		delete(s.schools, school)
		return nil
	}
	s.schools[school] = struct{}{}
	return nil
}

// SelectSchool replaces the school set with school. An empty name clears it.
func (s *State) SelectSchool(school string) error {
	if !s.hasGrade {
		return ErrNoGradeSelected
	}
	s.schools = map[string]struct{}{}
	if school != "" {
		s.schools[school] = struct{}{}
	}
	return nil
}

// IsReady is true when a grade is set and the school count satisfies the mode.
func (s *State) IsReady() bool {
	if !s.hasGrade {
		return false
	}
	if s.mode == ModeSingle {
		return len(s.schools) == 1
	}
	return len(s.schools) > 0
}

// Grade returns the current grade.
func (s *State) Grade() (int, bool) { return s.grade, s.hasGrade }

// Has reports whether school is selected.
func (s *State) Has(school string) bool {
	_, ok := s.schools[school]
	return ok
}

// Schools returns the selected schools sorted by name.
func (s *State) Schools() []string {
	out := make([]string, 0, len(s.schools))
	for name := range s.schools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// School returns the selected school when exactly one is chosen.
func (s *State) School() (string, bool) {
	if len(s.schools) != 1 {
		return "", false
	}
	for name := range s.schools {
		return name, true
	}
	return "", false
}

// Key returns the preview key for the current selection.
func (s *State) Key() Key {
	if !s.hasGrade {
		return Key{}
	}
	school, _ := s.School()
	return Key{Grade: s.grade, School: school}
}

// Phase reports where the selection sits in Empty → GradeChosen → SchoolChosen → Ready.
func (s *State) Phase() Phase {
	switch {
	case !s.hasGrade:
		return PhaseEmpty
	case s.IsReady():
		return PhaseReady
	case len(s.schools) > 0:
		return PhaseSchoolChosen
	default:
		return PhaseGradeChosen
	}
}
