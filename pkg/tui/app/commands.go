package teaui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/catalog"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/selection"
	"tableflip.dev/exammerge/pkg/store"
	"tableflip.dev/exammerge/pkg/tui/events"
)

const componentID events.ComponentID = "exammerge"

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

type downloadsCountedMsg struct {
	count int
	err   error
}

func (m downloadsCountedMsg) Describe() string {
	return fmt.Sprintf(`count:%d err:%v`, m.count, m.err)
}

func loadCatalogCmd(ctx context.Context, svc *app.Service, origin events.Origin, seq int) tea.Cmd {
	return func() tea.Msg {
		entries, err := svc.FetchCatalog(ctx)
		if err != nil && !errors.Is(err, catalog.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
		}
		return events.CatalogLoadedMsg{
			Component: componentID,
			Origin:    origin,
			Seq:       seq,
			Entries:   entries,
			Err:       err,
		}
	}
}

func loadGradeSchoolsCmd(ctx context.Context, svc *app.Service, grade, seq int) tea.Cmd {
	return func() tea.Msg {
		tagged, err := svc.GradeSchools(ctx, grade)
		return events.GradeSchoolsLoadedMsg{
			Component: componentID,
			Grade:     grade,
			Seq:       seq,
			Schools:   tagged,
			Err:       err,
		}
	}
}

func loadPreviewCmd(ctx context.Context, svc *app.Service, key selection.Key, seq int) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.PreviewUnits(ctx, key.Grade, key.School)
		return events.PreviewLoadedMsg{
			Component: componentID,
			Key:       key,
			Seq:       seq,
			Result:    res,
			Err:       err,
		}
	}
}

func reloadCmd(ctx context.Context, svc *app.Service, seq int) tea.Cmd {
	return func() tea.Msg {
		if err := svc.ReloadServer(ctx); err != nil {
			return events.ReloadDoneMsg{Component: componentID, Seq: seq, Err: err}
		}
		entries, err := svc.FetchCatalog(ctx)
		if err != nil {
			err = fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
		}
		return events.ReloadDoneMsg{Component: componentID, Seq: seq, Entries: entries, Err: err}
	}
}

// waitJobCmd reads the next snapshot of h. Once the stream closes the
// download is saved and the terminal outcome is reported.
func waitJobCmd(svc *app.Service, h *merge.Handle) tea.Cmd {
	return func() tea.Msg {
		if j, ok := <-h.Updates(); ok {
			return events.JobUpdateMsg{Component: componentID, Job: j, Handle: h}
		}
		res := h.Result()
		if res.Job.State != merge.StateSuccess {
			return events.JobFinishedMsg{Component: componentID, Result: res}
		}
		path, err := svc.Save(res.Download)
		if err != nil {
			res.Job.State = merge.StateFailed
			res.Job.Err = fmt.Errorf("%w: %v", merge.ErrMergeGeneration, err)
			res.Download = nil
		}
		return events.JobFinishedMsg{Component: componentID, Result: res, Path: path}
	}
}

func startWatchCmd(parent context.Context, svc *app.Service) tea.Cmd {
	if svc == nil || svc.Downloads == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := svc.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

func countDownloadsCmd(ctx context.Context, svc *app.Service) tea.Cmd {
	return func() tea.Msg {
		saved, err := svc.ListDownloads(ctx)
		return downloadsCountedMsg{count: len(saved), err: err}
	}
}

func batch(cmds []tea.Cmd) tea.Cmd {
	var live []tea.Cmd
	for _, c := range cmds {
		if c != nil {
			live = append(live, c)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	default:
		return tea.Batch(live...)
	}
}
