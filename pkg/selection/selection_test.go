package selection

import (
	"errors"
	"reflect"
	"testing"
)

func TestSetGradeAlwaysClearsSchools(t *testing.T) {
	s := New(ModeMulti)
	sequence := []int{1, 1, 3, 2, 2, 1}
	for i, g := range sequence {
		if err := s.ToggleSchool("가나고"); err != nil && i > 0 {
			t.Fatalf("toggle after grade: %v", err)
		}
		_ = s.ToggleSchool("나고등")
		if ready := s.SetGrade(g); ready {
			t.Fatalf("step %d: SetGrade(%d) reported ready", i, g)
		}
		if got := s.Schools(); len(got) != 0 {
			t.Fatalf("step %d: schools not cleared after SetGrade(%d): %v", i, g, got)
		}
		if p := s.Phase(); p != PhaseGradeChosen {
			t.Fatalf("step %d: phase = %s", i, p)
		}
	}
}

func TestToggleSchoolRequiresGrade(t *testing.T) {
	s := New(ModeSingle)
	if err := s.ToggleSchool("가나고"); !errors.Is(err, ErrNoGradeSelected) {
		t.Fatalf("expected ErrNoGradeSelected, got %v", err)
	}
	if err := s.SelectSchool("가나고"); !errors.Is(err, ErrNoGradeSelected) {
		t.Fatalf("expected ErrNoGradeSelected, got %v", err)
	}
	if len(s.Schools()) != 0 {
		t.Fatalf("school added without grade")
	}
	if s.Phase() != PhaseEmpty {
		t.Fatalf("expected empty phase")
	}
}

func TestToggleSchoolIsAnInvolution(t *testing.T) {
	tests := map[string]struct {
		start []string
		flip  string
	}{
		"absent school":  {start: []string{"가나고"}, flip: "나고등"},
		"present school": {start: []string{"가나고", "나고등"}, flip: "가나고"},
		"empty set":      {start: nil, flip: "다고등"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := New(ModeMulti)
			s.SetGrade(1)
			for _, school := range tc.start {
				if err := s.ToggleSchool(school); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}
			before := s.Schools()
			_ = s.ToggleSchool(tc.flip)
			_ = s.ToggleSchool(tc.flip)
			if after := s.Schools(); !reflect.DeepEqual(before, after) {
				t.Fatalf("double toggle changed membership: %v -> %v", before, after)
			}
		})
	}
}

func TestReadinessByMode(t *testing.T) {
	single := New(ModeSingle)
	single.SetGrade(2)
	_ = single.ToggleSchool("가나고")
	if !single.IsReady() || single.Phase() != PhaseReady {
		t.Fatalf("single mode with one school should be ready")
	}
	_ = single.ToggleSchool("나고등")
	if single.IsReady() {
		t.Fatalf("single mode with two schools must not be ready")
	}
	if single.Phase() != PhaseSchoolChosen {
		t.Fatalf("phase = %s", single.Phase())
	}

	multi := New(ModeMulti)
	multi.SetGrade(2)
	if multi.IsReady() {
		t.Fatalf("multi mode without schools must not be ready")
	}
	_ = multi.ToggleSchool("가나고")
	_ = multi.ToggleSchool("나고등")
	if !multi.IsReady() {
		t.Fatalf("multi mode with two schools should be ready")
	}
}

func TestSelectSchoolReplacesAndKeys(t *testing.T) {
	s := New(ModeSingle)
	s.SetGrade(1)
	_ = s.SelectSchool("A")
	if k := s.Key(); k != (Key{Grade: 1, School: "A"}) {
		t.Fatalf("key = %v", k)
	}
	_ = s.SelectSchool("B")
	if got := s.Schools(); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("schools = %v", got)
	}
	s.SetGrade(2)
	if k := s.Key(); k != (Key{Grade: 2}) {
		t.Fatalf("key after grade change = %v", k)
	}
	s.ClearGrade()
	if !s.Key().IsZero() {
		t.Fatalf("expected zero key after clear")
	}
}
