package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer FooterTheme
	Panel  PanelTheme
	List   ListTheme
	Units  UnitsTheme
	Button ButtonTheme
	Job    JobTheme
	Toast  ToastTheme
}

// FooterTheme groups styles used by the bottom status and help line.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Prompt lipgloss.Style
}

// PanelTheme styles framed columns and headings.
type PanelTheme struct {
	Frame   lipgloss.Style
	Focused lipgloss.Style
	Title   lipgloss.Style
	Body    lipgloss.Style
}

// ListTheme styles grade and school rows.
type ListTheme struct {
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Tag      lipgloss.Style
	Muted    lipgloss.Style
}

// UnitsTheme styles the preview table.
type UnitsTheme struct {
	Header   lipgloss.Style
	Code     lipgloss.Style
	Title    lipgloss.Style
	Missing  lipgloss.Style
	Notice   lipgloss.Style
	AllReady lipgloss.Style
	Updated  lipgloss.Style
}

// ButtonTheme styles the merge action keys.
type ButtonTheme struct {
	Enabled  lipgloss.Style
	Disabled lipgloss.Style
	Busy     lipgloss.Style
}

// JobTheme styles merge job cards.
type JobTheme struct {
	Label   lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
}

// ToastTheme styles the transient notification. Success and Error are
// complete frames.
type ToastTheme struct {
	Frame   lipgloss.Style
	Title   lipgloss.Style
	Body    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	button := lipgloss.NewStyle().Padding(0, 1)
	toastFrame := lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1)

	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")),
		},
		Panel: PanelTheme{
			Frame:   frame,
			Focused: frame.BorderForeground(lipgloss.Color("212")),
			Title:   lipgloss.NewStyle().Bold(true),
			Body:    lipgloss.NewStyle(),
		},
		List: ListTheme{
			Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
			Item:     lipgloss.NewStyle(),
			Tag:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
		Units: UnitsTheme{
			Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("248")),
			Code:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Title:    lipgloss.NewStyle(),
			Missing:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
			Notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB347")),
			AllReady: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Updated:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		},
		Button: ButtonTheme{
			Enabled:  button.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")),
			Disabled: button.Foreground(lipgloss.Color("241")),
			Busy:     button.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("94")),
		},
		Job: JobTheme{
			Label:   lipgloss.NewStyle().Bold(true),
			Running: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		},
		Toast: ToastTheme{
			Frame:   toastFrame,
			Title:   lipgloss.NewStyle().Bold(true),
			Body:    lipgloss.NewStyle(),
			Success: toastFrame.BorderForeground(lipgloss.Color("42")),
			Error:   toastFrame.BorderForeground(lipgloss.Color("#FF5F5F")),
		},
	}
}
