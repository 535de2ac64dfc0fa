// Package downloads provides runners over the directory merged PDFs are
// saved into.
package downloads

import (
	"context"
	"errors"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/printers"
	"tableflip.dev/exammerge/pkg/store"
	"tableflip.dev/exammerge/pkg/timeutil"
)

// Downloads lists saved bundles. Last switches to the per-school report for
// that window; Calendar adds a month calendar; Watch keeps printing changes
// until ctx is done.
type Downloads struct {
	App      *app.Service
	Last     string
	Calendar bool
	On       time.Time
	Watch    bool
	JSON     bool

	Printer *printers.PrettyPrint
	Now     func() time.Time
}

type savedJSON struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (n *Downloads) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not list downloads, no service")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}

	saved, err := n.App.ListDownloads(ctx)
	if err != nil {
		return err
	}

	switch {
	case n.Last != "":
		window, label, err := timeutil.ParseWindow(n.Last)
		if err != nil {
			return err
		}
		since, until := timeutil.Bounds(now(), window)
		result, err := n.App.Report(ctx, since, until)
		if err != nil {
			return err
		}
		if n.JSON {
			return pp.JSON(result)
		}
		pp.Report(result, label)
	case n.JSON:
		out := make([]savedJSON, 0, len(saved))
		for _, s := range saved {
			out = append(out, savedJSON{Name: s.Name, Size: s.Size, Modified: s.ModTime})
		}
		return pp.JSON(map[string]any{"downloads": out})
	default:
		pp.Downloads(saved)
	}

	if n.Calendar && !n.JSON {
		on := n.On
		if on.IsZero() {
			on = now()
		}
		pp.Calendar(on, saved)
	}

	if n.Watch {
		return n.watch(ctx, pp)
	}
	return nil
}

func (n *Downloads) watch(ctx context.Context, pp *printers.PrettyPrint) error {
	events, err := n.App.Watch(ctx)
	if err != nil {
		return err
	}
	faint := color.New(color.Faint)
	pp.Line(faint.Sprint("변경 사항을 기다리는 중… (Ctrl+C로 종료)"))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			n.printEvent(pp, ev)
		}
	}
}

func (n *Downloads) printEvent(pp *printers.PrettyPrint, ev store.Event) {
	stamp := color.New(color.Faint).Sprint(time.Now().Format("15:04:05"))
	switch ev.Type {
	case store.EventSaved:
		pp.Line(stamp + " " + color.New(color.FgGreen).Sprint("+ ") + ev.Name)
	case store.EventRemoved:
		pp.Line(stamp + " " + color.New(color.FgRed).Sprint("- ") + ev.Name)
	default:
		saved, err := n.App.ListDownloads(context.Background())
		if err != nil {
			return
		}
		pp.Line(stamp + " " + color.New(color.Faint).Sprintf("PDF %d개", len(saved)))
	}
}
