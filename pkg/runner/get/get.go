// Package get provides runners that list catalog grades and schools.
package get

import (
	"context"
	"errors"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/printers"
)

var errNoService = errors.New("can not get, no service")

// Get lists the catalog grades, or the schools of Grade when it is set.
type Get struct {
	App   *app.Service
	Grade int
	JSON  bool

	Printer *printers.PrettyPrint
}

type schoolJSON struct {
	School      string `json:"school"`
	Grade       int    `json:"grade"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	HasEndData  bool   `json:"hasEndData"`
}

func (n *Get) Do(ctx context.Context) error {
	if n.App == nil {
		return errNoService
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}

	if n.Grade <= 0 {
		grades, err := n.App.Grades(ctx)
		if err != nil {
			return err
		}
		if n.JSON {
			return pp.JSON(map[string]any{"grades": grades})
		}
		pp.Grades(grades)
		return nil
	}

	entries, err := n.App.Schools(ctx, n.Grade)
	if err != nil {
		return err
	}
	// without end data every school is shown untagged
	hasEnd, err := n.App.GradeSchools(ctx, n.Grade)
	if err != nil {
		n.App.Log.Warn("grade schools unavailable", "grade", n.Grade, "error", err)
	}

	if n.JSON {
		out := make([]schoolJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, schoolJSON{School: e.School, Grade: n.Grade, LastUpdated: e.LastUpdated(), HasEndData: hasEnd[e.School]})
		}
		return pp.JSON(map[string]any{"grade": n.Grade, "schools": out})
	}
	pp.Schools(entries, hasEnd)
	return nil
}
