package view

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/preview"
	"tableflip.dev/exammerge/pkg/selection"
	"tableflip.dev/exammerge/pkg/tui/theme"
	"tableflip.dev/exammerge/pkg/tui/toast"
)

func strPtr(s string) *string { return &s }

func TestRenderEmptyStatePrompts(t *testing.T) {
	out := Render(State{Help: "q quit"}, theme.Default(), 120)
	for _, want := range []string{PromptChooseGrade, PromptChooseSchool, "q quit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestRenderGradesAndSchools(t *testing.T) {
	s := State{
		Grades:      []GradeRow{{Grade: 1}, {Grade: 2, Selected: true}},
		GradeChosen: true,
		Schools: []SchoolRow{
			{Name: "가람고", HasEnd: true},
			{Name: "나래고", Selected: true},
		},
		Focus:        ColumnSchools,
		SchoolCursor: 1,
	}
	out := Render(s, theme.Default(), 120)
	for _, want := range []string{"1학년", "2학년", "가람고", "나래고", hasEndTag} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
	if strings.Contains(out, PromptChooseGrade) {
		t.Fatalf("grade prompt shown after a grade was chosen")
	}
	if got := strings.Count(out, hasEndTag); got != 1 {
		t.Fatalf("has-end tags = %d, want 1", got)
	}
}

func TestRenderGradeWithoutSchools(t *testing.T) {
	s := State{Grades: []GradeRow{{Grade: 3, Selected: true}}, GradeChosen: true}
	out := Render(s, theme.Default(), 120)
	if !strings.Contains(out, emptySchools) {
		t.Fatalf("expected %q in view:\n%s", emptySchools, out)
	}
	if strings.Contains(out, loadingText) {
		t.Fatalf("school column shows loading for an empty grade:\n%s", out)
	}
}

func TestRenderUnitTableFlagsMissing(t *testing.T) {
	res := &preview.Result{
		Key: selection.Key{Grade: 2, School: "가람고"},
		Units: []preview.Unit{
			{Code: "U1", Title: strPtr("함수"), HasFile: true},
			{Code: "U2", Title: strPtr("수열"), HasFile: false},
		},
		MissingCount: 1,
		LastUpdated:  "2025-03-01 09:00",
	}
	out := Render(State{GradeChosen: true, Preview: res}, theme.Default(), 160)
	for _, want := range []string{"U1", "함수", "U2", "수열 (서술형/최다빈출 파일 없음)", updatedLabel + "2025-03-01 09:00", "(1)개의"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
	if strings.Contains(out, PromptChooseSchool) {
		t.Fatalf("school prompt shown alongside a preview")
	}
}

func TestRenderAllReadyNotice(t *testing.T) {
	res := &preview.Result{
		Units: []preview.Unit{{Code: "U1", Title: strPtr("함수"), HasFile: true}},
	}
	out := Render(State{GradeChosen: true, Preview: res}, theme.Default(), 160)
	if !strings.Contains(out, "준비되어") {
		t.Fatalf("expected all-ready notice:\n%s", out)
	}
	if strings.Contains(out, "자동으로 제외") {
		t.Fatalf("exclusion notice shown with no missing units")
	}
}

func TestRenderButtonsAndJobs(t *testing.T) {
	req := merge.Request{Grade: 2, School: "가람고", Category: merge.Descriptive, Kind: merge.KindScoped}
	s := State{
		Buttons: []Button{
			{Key: "1", Label: "서술형", Busy: true},
			{Key: "2", Label: "최다빈출", Enabled: true},
			{Key: "3", Label: "Final모의고사"},
		},
		Jobs: []merge.Job{
			{ID: uuid.New(), Request: req, State: merge.StateRunning, Progress: 0.5},
			{ID: uuid.New(), Request: req, State: merge.StateFailed, Progress: 1},
		},
	}
	out := Render(s, theme.Default(), 120)
	for _, want := range []string{"[1] 서술형 …", "[2] 최다빈출", "[3] Final모의고사", req.Label(), " 50%", "실패"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestRenderToastAndPrompt(t *testing.T) {
	s := State{
		Toast:  &toast.Toast{Title: "가람고 2학년 서술형", Body: "완료", Level: toast.LevelSuccess},
		Prompt: PromptGradeFirst,
	}
	out := Render(s, theme.Default(), 120)
	for _, want := range []string{"가람고 2학년 서술형", PromptGradeFirst} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestClipUsesDisplayWidth(t *testing.T) {
	got := clip("가나다라마바사", 6)
	if !strings.HasSuffix(got, ellipsis) {
		t.Fatalf("clip = %q, want ellipsis tail", got)
	}
	if w := len([]rune(got)); w > 4 {
		t.Fatalf("clip kept %d runes of a width-6 budget", w)
	}
	if got := clip("abc", 6); got != "abc" {
		t.Fatalf("short strings must not be clipped, got %q", got)
	}
}
