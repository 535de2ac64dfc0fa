package teaui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/exammerge/pkg/tui/components/eventviewer"
	"tableflip.dev/exammerge/pkg/tui/events"
)

func (m *Model) toggleDebug() {
	if m.debugEnabled {
		m.debugEnabled = false
		m.eventViewer = nil
		return
	}
	m.debugEnabled = true
	m.eventViewer = eventviewer.NewModel(400)
	m.layoutDebug()
	m.appendEvent(eventviewer.Entry{
		Summary: "debug",
		Detail:  "event log enabled",
		Source:  "ui",
	})
}

func (m *Model) layoutDebug() {
	if m.eventViewer == nil {
		return
	}
	rows := m.computeDebugHeight(m.height)
	if rows <= 0 {
		rows = 5
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.eventViewer.SetSize(width, rows)
}

// dropStale records a response that arrived after its request was
// superseded.
func (m *Model) dropStale(kind, detail string) {
	m.log.Debug("stale response dropped", "kind", kind, "detail", detail)
	m.appendEvent(eventviewer.Entry{
		Source:  "stale",
		Summary: kind,
		Detail:  detail,
		Level:   eventviewer.LevelWarn,
	})
}

func (m *Model) noteEvent(msg tea.Msg) {
	if m.eventViewer == nil {
		return
	}
	source := "tea"
	if s, ok := eventSource(msg); ok && s != "" {
		source = s
	}
	entry := eventviewer.Entry{
		Timestamp: time.Now(),
		Source:    source,
		Summary:   fmt.Sprintf("%T", msg),
		Detail:    describeMsg(msg),
		Level:     eventviewer.LevelInfo,
	}
	if failed(msg) {
		entry.Level = eventviewer.LevelError
	}
	if entry.Detail == "" {
		entry.Detail = fmt.Sprintf("%v", msg)
	}
	m.eventViewer.Append(entry)
}

func (m *Model) appendEvent(entry eventviewer.Entry) {
	if m.eventViewer == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Source == "" {
		entry.Source = "ui"
	}
	m.eventViewer.Append(entry)
}

func (m *Model) computeDebugHeight(totalRows int) int {
	if totalRows <= 4 {
		return 0
	}
	minHeight := 5
	maxHeight := totalRows - 1
	if maxHeight < minHeight {
		return maxHeight
	}
	return clamp(totalRows/3, minHeight, min(12, maxHeight))
}

func describeMsg(msg tea.Msg) string {
	if d, ok := msg.(interface{ Describe() string }); ok {
		return d.Describe()
	}
	switch v := msg.(type) {
	case tea.KeyMsg:
		return fmt.Sprintf("key=%q", v.String())
	case tea.WindowSizeMsg:
		return fmt.Sprintf("size=%dx%d", v.Width, v.Height)
	default:
		return ""
	}
}

func eventSource(msg tea.Msg) (string, bool) {
	switch v := msg.(type) {
	case events.CatalogLoadedMsg:
		return string(v.Component), true
	case events.GradeSchoolsLoadedMsg:
		return string(v.Component), true
	case events.PreviewLoadedMsg:
		return string(v.Component), true
	case events.JobUpdateMsg:
		return string(v.Component), true
	case events.JobFinishedMsg:
		return string(v.Component), true
	case events.ReloadDoneMsg:
		return string(v.Component), true
	default:
		return "", false
	}
}

func failed(msg tea.Msg) bool {
	switch v := msg.(type) {
	case events.CatalogLoadedMsg:
		return v.Err != nil
	case events.PreviewLoadedMsg:
		return v.Err != nil
	case events.ReloadDoneMsg:
		return v.Err != nil
	case events.JobFinishedMsg:
		return v.Result.Job.Err != nil
	default:
		return false
	}
}

// clamp bounds value to [lower, upper]; an empty range yields lower.
func clamp(value, lower, upper int) int {
	if upper < lower {
		return lower
	}
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
