// Package preview provides the runner that shows a school's exam-scope units.
package preview

import (
	"context"
	"errors"
	"strings"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/printers"
)

// Preview prints the unit table of Grade/School. With Codes set it uses the
// plain unit list instead of the material-aware preview.
type Preview struct {
	App    *app.Service
	Grade  int
	School string
	Codes  bool
	JSON   bool

	Printer *printers.PrettyPrint
}

type unitJSON struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	HasFile bool   `json:"hasFile"`
}

func (n *Preview) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not preview, no service")
	}
	n.School = strings.TrimSpace(n.School)
	if n.Grade <= 0 {
		return errors.New("grade required")
	}
	if n.School == "" {
		return errors.New("school required")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}

	if n.Codes {
		units, err := n.App.UnitCodes(ctx, n.Grade, n.School)
		if err != nil {
			return err
		}
		if n.JSON {
			out := make([]unitJSON, 0, len(units))
			for _, u := range units {
				out = append(out, unitJSON{Code: u.Code, Title: u.Label(), HasFile: true})
			}
			return pp.JSON(map[string]any{"grade": n.Grade, "school": n.School, "units": out})
		}
		pp.UnitCodes(units)
		return nil
	}

	// the timestamp comes from the catalog; a preview without it is still useful
	if err := n.App.Ensure(ctx); err != nil {
		n.App.Log.Warn("catalog unavailable for preview", "error", err)
	}
	res, err := n.App.PreviewUnits(ctx, n.Grade, n.School)
	if err != nil {
		return err
	}
	if n.JSON {
		out := make([]unitJSON, 0, len(res.Units))
		for _, u := range res.Units {
			out = append(out, unitJSON{Code: u.Code, Title: u.DisplayTitle(), HasFile: u.HasFile})
		}
		return pp.JSON(map[string]any{
			"grade":        n.Grade,
			"school":       n.School,
			"lastUpdated":  res.LastUpdated,
			"units":        out,
			"missingCount": res.MissingCount,
			"notice":       res.Notice(),
		})
	}
	pp.Units(res)
	return nil
}
