// Package ui provides the runner that opens the interactive merge client.
package ui

import (
	"context"
	"errors"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/store"
	teaui "tableflip.dev/exammerge/pkg/tui/app"
)

// UI runs the Bubble Tea client until the user quits.
type UI struct {
	App    *app.Service
	Config *store.Config
}

func (d *UI) Do(ctx context.Context) error {
	if d.App == nil {
		return errors.New("can not open ui, no service")
	}
	return teaui.Run(ctx, d.App, d.Config)
}
