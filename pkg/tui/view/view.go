// Package view renders the exam-merge screen. Render is a pure function of
// State: it performs no I/O and keeps no state between calls.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/progress"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/preview"
	"tableflip.dev/exammerge/pkg/tui/theme"
	"tableflip.dev/exammerge/pkg/tui/toast"
)

const (
	// PromptChooseGrade is shown in the school column until a grade is chosen.
	PromptChooseGrade = "학년을 선택하세요"
	// PromptChooseSchool is shown in the unit panel until a school is chosen.
	PromptChooseSchool = "학교를 선택하세요"
	// PromptGradeFirst is the inline hint for choosing a school without a grade.
	PromptGradeFirst = "학년을 먼저 선택하세요"

	updatedLabel  = "최신 업데이트: "
	hasEndTag     = "●"
	loadingText   = "불러오는 중…"
	emptyCatalog  = "시험범위 데이터가 없습니다"
	emptySchools  = "학교가 없습니다"
	unitCodeTitle = "단원"
	unitNameTitle = "제목"

	gradeColumnWidth  = 12
	schoolColumnWidth = 28
	minUnitsWidth     = 24
	jobBarWidth       = 24
	ellipsis          = "…"
)

// Column identifies which list has keyboard focus.
type Column int

const (
	ColumnGrades Column = iota
	ColumnSchools
)

// GradeRow is one entry of the grade column.
type GradeRow struct {
	Grade    int
	Selected bool
}

// SchoolRow is one entry of the school column. HasEnd marks schools whose
// exam scope data is complete for the grade.
type SchoolRow struct {
	Name     string
	HasEnd   bool
	Selected bool
}

// Button is one merge action.
type Button struct {
	Key     string
	Label   string
	Enabled bool
	Busy    bool
}

// State is everything the screen shows.
type State struct {
	Focus Column

	Grades      []GradeRow
	GradeCursor int
	GradeChosen bool

	Schools      []SchoolRow
	SchoolCursor int

	LoadingCatalog bool
	LoadingPreview bool
	Preview        *preview.Result

	Buttons []Button
	Jobs    []merge.Job
	Toast   *toast.Toast

	Prompt string
	Status string
	Help   string
}

// GradeLabel renders a grade as "{g}학년".
func GradeLabel(g int) string {
	return fmt.Sprintf("%d학년", g)
}

// Render draws s at the given terminal width.
func Render(s State, th theme.Theme, width int) string {
	if width <= 0 {
		width = 80
	}

	gradeW := gradeColumnWidth
	schoolW := schoolColumnWidth
	unitsW := width - gradeW - schoolW
	if unitsW < minUnitsWidth {
		unitsW = minUnitsWidth
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		renderGrades(s, th, gradeW),
		renderSchools(s, th, schoolW),
		renderUnits(s, th, unitsW),
	)

	sections := []string{top, renderButtons(s.Buttons, th)}
	if jobs := renderJobs(s.Jobs, th, width); jobs != "" {
		sections = append(sections, jobs)
	}
	if s.Toast != nil {
		sections = append(sections, renderToast(*s.Toast, th, width))
	}
	if s.Prompt != "" {
		sections = append(sections, th.Footer.Prompt.Render(clip(s.Prompt, width)))
	}
	footer := s.Help
	if s.Status != "" {
		footer = th.Footer.Status.Render(s.Status) + "  " + th.Footer.Help.Render(s.Help)
	} else {
		footer = th.Footer.Help.Render(footer)
	}
	sections = append(sections, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func panel(th theme.Theme, focused bool, width int, title string, lines []string) string {
	frame := th.Panel.Frame
	if focused {
		frame = th.Panel.Focused
	}
	// border and padding take four cells of width
	inner := width - 4
	if inner < 1 {
		inner = 1
	}
	body := make([]string, 0, len(lines)+1)
	body = append(body, th.Panel.Title.Render(clip(title, inner)))
	body = append(body, lines...)
	return frame.Width(width - 2).Render(strings.Join(body, "\n"))
}

func renderGrades(s State, th theme.Theme, width int) string {
	inner := width - 4
	var lines []string
	switch {
	case s.LoadingCatalog && len(s.Grades) == 0:
		lines = append(lines, th.List.Muted.Render(clip(loadingText, inner)))
	case len(s.Grades) == 0:
		lines = append(lines, th.List.Muted.Render(clip(emptyCatalog, inner)))
	}
	for i, row := range s.Grades {
		label := clip(GradeLabel(row.Grade), inner-2)
		lines = append(lines, listRow(th, s.Focus == ColumnGrades && i == s.GradeCursor, row.Selected, label))
	}
	return panel(th, s.Focus == ColumnGrades, width, "학년", lines)
}

func renderSchools(s State, th theme.Theme, width int) string {
	inner := width - 4
	var lines []string
	switch {
	case !s.GradeChosen:
		lines = append(lines, th.List.Muted.Render(clip(PromptChooseGrade, inner)))
	case len(s.Schools) == 0:
		lines = append(lines, th.List.Muted.Render(clip(emptySchools, inner)))
	}
	if s.GradeChosen {
		for i, row := range s.Schools {
			name := clip(row.Name, inner-4)
			line := listRow(th, s.Focus == ColumnSchools && i == s.SchoolCursor, row.Selected, name)
			if row.HasEnd {
				line += " " + th.List.Tag.Render(hasEndTag)
			}
			lines = append(lines, line)
		}
	}
	return panel(th, s.Focus == ColumnSchools, width, "학교", lines)
}

func listRow(th theme.Theme, cursor, selected bool, label string) string {
	prefix := "  "
	if cursor {
		prefix = th.List.Cursor.Render("› ")
	}
	switch {
	case selected:
		return prefix + th.List.Selected.Render(label)
	case cursor:
		return prefix + th.List.Cursor.Render(label)
	default:
		return prefix + th.List.Item.Render(label)
	}
}

func renderUnits(s State, th theme.Theme, width int) string {
	inner := width - 4
	var lines []string
	switch {
	case s.LoadingPreview:
		lines = append(lines, th.List.Muted.Render(clip(loadingText, inner)))
	case s.Preview == nil:
		lines = append(lines, th.List.Muted.Render(clip(PromptChooseSchool, inner)))
	default:
		lines = unitLines(*s.Preview, th, inner)
	}
	return panel(th, false, width, "시험범위", lines)
}

func unitLines(r preview.Result, th theme.Theme, inner int) []string {
	lines := make([]string, 0, len(r.Units)+4)
	if r.LastUpdated != "" {
		lines = append(lines, th.Units.Updated.Render(clip(updatedLabel+r.LastUpdated, inner)))
	}

	codeW := lipgloss.Width(unitCodeTitle)
	for _, u := range r.Units {
		if w := lipgloss.Width(u.Code); w > codeW {
			codeW = w
		}
	}
	if limit := inner / 3; codeW > limit {
		codeW = limit
	}
	titleW := inner - codeW - 1
	if titleW < 1 {
		titleW = 1
	}

	lines = append(lines, th.Units.Header.Render(pad(unitCodeTitle, codeW)+" "+unitNameTitle))
	for _, u := range r.Units {
		code := th.Units.Code.Render(pad(clip(u.Code, codeW), codeW))
		title := clip(u.DisplayTitle(), titleW)
		if u.HasFile {
			title = th.Units.Title.Render(title)
		} else {
			title = th.Units.Missing.Render(title)
		}
		lines = append(lines, code+" "+title)
	}

	notice := wrap(r.Notice(), inner)
	if r.NoticeKind() == preview.NoticeExcluded {
		lines = append(lines, "", th.Units.Notice.Render(notice))
	} else {
		lines = append(lines, "", th.Units.AllReady.Render(notice))
	}
	return lines
}

func renderButtons(buttons []Button, th theme.Theme) string {
	if len(buttons) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(buttons))
	for _, b := range buttons {
		text := fmt.Sprintf("[%s] %s", b.Key, b.Label)
		switch {
		case b.Busy:
			rendered = append(rendered, th.Button.Busy.Render(text+" …"))
		case b.Enabled:
			rendered = append(rendered, th.Button.Enabled.Render(text))
		default:
			rendered = append(rendered, th.Button.Disabled.Render(text))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderJobs(jobs []merge.Job, th theme.Theme, width int) string {
	if len(jobs) == 0 {
		return ""
	}
	bar := progress.New(progress.WithWidth(jobBarWidth), progress.WithoutPercentage())
	labelW := width - jobBarWidth - 8
	if labelW < 8 {
		labelW = 8
	}
	lines := make([]string, 0, len(jobs))
	for _, j := range jobs {
		label := th.Job.Label.Render(pad(clip(j.Request.Label(), labelW), labelW))
		var status string
		switch j.State {
		case merge.StateSuccess:
			status = th.Job.Success.Render("완료")
		case merge.StateFailed:
			status = th.Job.Failed.Render("실패")
		default:
			status = th.Job.Running.Render(fmt.Sprintf("%3.0f%%", j.Progress*100))
		}
		lines = append(lines, label+" "+bar.ViewAs(j.Progress)+" "+status)
	}
	return strings.Join(lines, "\n")
}

func renderToast(t toast.Toast, th theme.Theme, width int) string {
	frame := th.Toast.Frame
	switch t.Level {
	case toast.LevelSuccess:
		frame = th.Toast.Success
	case toast.LevelError:
		frame = th.Toast.Error
	}
	inner := width - 4
	if inner < 8 {
		inner = 8
	}
	var body []string
	if t.Title != "" {
		body = append(body, th.Toast.Title.Render(clip(t.Title, inner)))
	}
	if t.Body != "" {
		body = append(body, th.Toast.Body.Render(wrap(t.Body, inner)))
	}
	return frame.Render(strings.Join(body, "\n"))
}

// clip truncates s to w display cells.
func clip(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= w {
		return s
	}
	return truncate.StringWithTail(s, uint(w), ellipsis)
}

func pad(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func wrap(s string, w int) string {
	return lipgloss.NewStyle().Width(w).Render(s)
}
