// Package bundle provides the runner that merges exam-prep PDFs from the
// command line.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/printers"
)

// ErrFailed is returned when at least one merge did not produce a file.
var ErrFailed = errors.New("merge failed")

const defaultParallel = 4

// Bundle merges every category of Categories for every school of Schools.
// Jobs run concurrently; results print in request order.
type Bundle struct {
	App        *app.Service
	Grade      int
	Schools    []string
	Categories []merge.Category
	All        bool
	Parallel   int
	JSON       bool

	Printer *printers.PrettyPrint
}

type outcome struct {
	req  merge.Request
	res  merge.Result
	path string
	err  error
}

type jobJSON struct {
	Label    string `json:"label"`
	State    string `json:"state"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Requests expands the school and category lists into validated requests,
// one per slot.
func (n *Bundle) Requests() ([]merge.Request, error) {
	if n.Grade <= 0 {
		return nil, errors.New("grade required")
	}
	var reqs []merge.Request
	seen := map[merge.Slot]bool{}
	for _, school := range n.Schools {
		school = strings.TrimSpace(school)
		if school == "" {
			continue
		}
		for _, cat := range n.Categories {
			req := merge.NewRequest(n.Grade, school, cat, n.All)
			if err := req.Validate(); err != nil {
				return nil, err
			}
			if seen[req.Slot()] {
				continue
			}
			seen[req.Slot()] = true
			reqs = append(reqs, req)
		}
	}
	if len(reqs) == 0 {
		return nil, errors.New("at least one school and category required")
	}
	return reqs, nil
}

func (n *Bundle) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not merge, no service")
	}
	reqs, err := n.Requests()
	if err != nil {
		return err
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}

	limit := n.Parallel
	if limit <= 0 {
		limit = defaultParallel
	}
	outcomes := make([]outcome, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			res, path, err := n.App.Merge(gctx, req)
			outcomes[i] = outcome{req: req, res: res, path: path, err: err}
			// a failed job is reported, not fatal to its siblings
			if err != nil && res.Job.State != merge.StateFailed {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	jobs := make([]jobJSON, 0, len(outcomes))
	for _, o := range outcomes {
		if o.res.Job.State != merge.StateSuccess {
			failed++
		}
		if n.JSON {
			_, body, _ := merge.Outcome(o.res.Job)
			j := jobJSON{Label: o.req.Label(), State: o.res.Job.State.String(), Message: body, Path: o.path}
			if o.res.Download != nil {
				j.Pages = o.res.Download.Pages
				j.Filename = o.res.Download.Filename
			}
			jobs = append(jobs, j)
			continue
		}
		pp.Job(o.res, o.path)
	}
	if n.JSON {
		return pp.JSON(map[string]any{"jobs": jobs, "failed": failed})
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFailed, failed, len(outcomes))
	}
	return nil
}
