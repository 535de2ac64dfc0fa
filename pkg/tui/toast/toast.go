// Package toast shows one transient notification at a time. A new toast
// replaces the current one and restarts the dismissal timer.
package toast

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// DefaultDelay is how long a toast stays visible.
const DefaultDelay = 3 * time.Second

// Level tints the toast.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Toast is the visible notification.
type Toast struct {
	Title string
	Body  string
	Level Level
}

// ClearMsg dismisses the toast with the matching sequence number. Clears for
// older toasts are ignored.
type ClearMsg struct {
	Seq int
}

// Describe implements the logging helper.
func (m ClearMsg) Describe() string {
	return fmt.Sprintf(`seq:%d`, m.Seq)
}

// Model owns the current toast.
type Model struct {
	delay   time.Duration
	seq     int
	current *Toast
}

// New returns an empty model that dismisses toasts after delay.
func New(delay time.Duration) *Model {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Model{delay: delay}
}

// Show replaces the current toast and returns the command that clears it.
func (m *Model) Show(t Toast) tea.Cmd {
	m.seq++
	m.current = &t
	seq := m.seq
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return ClearMsg{Seq: seq}
	})
}

// Update applies a ClearMsg. It reports whether the toast was dismissed.
func (m *Model) Update(msg tea.Msg) bool {
	cm, ok := msg.(ClearMsg)
	if !ok || cm.Seq != m.seq || m.current == nil {
		return false
	}
	m.current = nil
	return true
}

// Current returns the visible toast, if any.
func (m *Model) Current() (Toast, bool) {
	if m.current == nil {
		return Toast{}, false
	}
	return *m.current, true
}

// Seq returns the sequence number of the newest toast.
func (m *Model) Seq() int { return m.seq }
