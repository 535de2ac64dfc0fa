// Package reload provides the runner that asks the server to re-ingest its
// exam-scope data.
package reload

import (
	"context"
	"errors"

	"github.com/fatih/color"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/printers"
)

// Reload triggers a server reload and refreshes the catalog.
type Reload struct {
	App  *app.Service
	JSON bool

	Printer *printers.PrettyPrint
}

func (n *Reload) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not reload, no service")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}

	entries, err := n.App.Reload(ctx)
	title, body := app.ReloadOutcome(err)
	if n.JSON {
		// the outcome is in the payload
		return pp.JSON(map[string]any{"ok": err == nil, "title": title, "message": body, "rows": len(entries)})
	}
	pp.Title(title)
	c := color.New(color.FgGreen)
	if err != nil {
		c = color.New(color.FgRed)
	}
	pp.Line(c.Sprint(body))
	if err == nil {
		grades := n.App.Catalog.Grades()
		pp.Line(color.New(color.Faint).Sprintf("%d개 학년 · %d개 행", len(grades), len(entries)))
	}
	pp.NewLine()
	return err
}
