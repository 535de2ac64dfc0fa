package app

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/exammerge/pkg/api"
	"tableflip.dev/exammerge/pkg/catalog"
	"tableflip.dev/exammerge/pkg/logging"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/preview"
	"tableflip.dev/exammerge/pkg/store"
)

// Server is everything the service needs from the merge server.
// *api.Client satisfies it.
type Server interface {
	preview.Source
	merge.Server
	Catalog(ctx context.Context) ([]api.CatalogRow, error)
	Reload(ctx context.Context) error
}

// Service provides the catalog, preview, merge and reload operations so the
// TUI and the CLI share one implementation.
type Service struct {
	Server    Server
	Catalog   *catalog.Cache
	Preview   *preview.Resolver
	Runner    *merge.Runner
	Downloads store.Downloads
	Log       *logging.Logger
}

var (
	// ErrReloadFailed means the server answered the reload with an error.
	ErrReloadFailed = errors.New("app: reload failed")

	errNoServer    = errors.New("app: no server configured")
	errNoDownloads = errors.New("app: no downloads directory configured")
)

// New wires a service from configuration.
func New(cfg *store.Config, log *logging.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if log == nil {
		log = logging.Nop()
	}
	client, err := api.New(cfg.Server, api.WithTimeout(cfg.Timeout), api.WithLogger(log.With("component", "api")))
	if err != nil {
		return nil, err
	}
	downloads, err := store.OpenDownloads(cfg.Downloads)
	if err != nil {
		return nil, err
	}
	return NewService(client, downloads, log,
		merge.WithInterval(cfg.Progress),
		merge.WithDatestamp(cfg.Datestamp),
	), nil
}

// NewService composes the components on server.
func NewService(server Server, downloads store.Downloads, log *logging.Logger, opts ...merge.Option) *Service {
	if log == nil {
		log = logging.Nop()
	}
	s := &Service{
		Server:    server,
		Downloads: downloads,
		Log:       log,
	}
	s.Catalog = catalog.New(catalog.FetcherFunc(s.FetchCatalog))
	s.Preview = preview.NewResolver(server, log.With("component", "preview"))
	s.Runner = merge.NewRunner(server, append([]merge.Option{merge.WithLogger(log.With("component", "merge"))}, opts...)...)
	return s
}

// FetchCatalog loads catalog rows without touching the cache. Callers that
// may race other loads apply the result with Catalog.Replace.
func (s *Service) FetchCatalog(ctx context.Context) ([]catalog.Entry, error) {
	if s.Server == nil {
		return nil, errNoServer
	}
	rows, err := s.Server.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]catalog.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, catalog.Entry{Grade: row.Grade, School: row.School, Timestamp: row.Timestamp})
	}
	return entries, nil
}

// Refresh reloads the catalog snapshot.
func (s *Service) Refresh(ctx context.Context) ([]catalog.Entry, error) {
	entries, err := s.Catalog.Refresh(ctx)
	if err != nil {
		s.Log.Warn("catalog refresh failed", "error", err)
		return nil, err
	}
	s.Log.Info("catalog refreshed", "rows", len(entries))
	return entries, nil
}

// Ensure loads the catalog once.
func (s *Service) Ensure(ctx context.Context) error {
	if s.Catalog.Loaded() {
		return nil
	}
	_, err := s.Refresh(ctx)
	return err
}

// Grades lists catalog grades.
func (s *Service) Grades(ctx context.Context) ([]int, error) {
	if err := s.Ensure(ctx); err != nil {
		return nil, err
	}
	return s.Catalog.Grades(), nil
}

// Schools lists the schools of grade, or every school when grade is 0.
func (s *Service) Schools(ctx context.Context, grade int) ([]catalog.Entry, error) {
	if err := s.Ensure(ctx); err != nil {
		return nil, err
	}
	names := s.Catalog.Schools()
	if grade > 0 {
		names = s.Catalog.SchoolsForGrade(grade)
	}
	out := make([]catalog.Entry, 0, len(names))
	for _, name := range names {
		e, ok := s.Catalog.Find(grade, name)
		if !ok {
			e = catalog.Entry{Grade: grade, School: name}
		}
		out = append(out, e)
	}
	return out, nil
}

// GradeSchools lists the schools with end data for grade. Failure is
// reported to the caller, which treats every school as untagged.
func (s *Service) GradeSchools(ctx context.Context, grade int) (map[string]bool, error) {
	names, err := s.Preview.GradeSchools(ctx, grade)
	if err != nil {
		return map[string]bool{}, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

// PreviewUnits resolves the unit table of grade/school, stamped with the
// catalog's last-updated value.
func (s *Service) PreviewUnits(ctx context.Context, grade int, school string) (preview.Result, error) {
	res, err := s.Preview.ResolveUnits(ctx, grade, school)
	if err != nil {
		return preview.Result{}, err
	}
	if e, ok := s.Catalog.Find(grade, school); ok {
		res.LastUpdated = e.LastUpdated()
	}
	return res, nil
}

// UnitCodes lists labelled unit codes via the simple units endpoint.
func (s *Service) UnitCodes(ctx context.Context, grade int, school string) ([]preview.Labeled, error) {
	return s.Preview.ResolveUnitCodes(ctx, grade, school)
}

// StartMerge begins a merge job. The caller observes it through the handle
// and saves the download.
func (s *Service) StartMerge(ctx context.Context, req merge.Request) *merge.Handle {
	return s.Runner.Start(ctx, req)
}

// Save writes a successful download into the downloads directory.
func (s *Service) Save(d *merge.Download) (string, error) {
	if s.Downloads == nil {
		return "", errNoDownloads
	}
	if d == nil {
		return "", errors.New("app: nothing to save")
	}
	path, err := s.Downloads.Save(d.Filename, d.Body)
	if err != nil {
		s.Log.Error("save download failed", "file", d.Filename, "error", err)
		return "", err
	}
	s.Log.Info("download saved", "path", path, "pages", d.Pages)
	return path, nil
}

// Merge runs req to completion and saves the result. A failed job returns
// its classified error.
func (s *Service) Merge(ctx context.Context, req merge.Request) (merge.Result, string, error) {
	res, err := s.StartMerge(ctx, req).Wait(ctx)
	if err != nil {
		return merge.Result{}, "", err
	}
	if res.Job.State != merge.StateSuccess {
		return res, "", res.Job.Err
	}
	path, err := s.Save(res.Download)
	if err != nil {
		// the server merged; writing the file did not
		res.Job.State = merge.StateFailed
		res.Job.Err = fmt.Errorf("%w: %v", merge.ErrMergeGeneration, err)
		return res, "", res.Job.Err
	}
	return res, path, nil
}

// Reload asks the server to re-ingest and then refreshes the catalog.
func (s *Service) Reload(ctx context.Context) ([]catalog.Entry, error) {
	if err := s.ReloadServer(ctx); err != nil {
		return nil, err
	}
	return s.Refresh(ctx)
}

// ReloadServer asks the server to re-ingest its source data. An HTTP error
// answer matches ErrReloadFailed.
func (s *Service) ReloadServer(ctx context.Context) error {
	if s.Server == nil {
		return errNoServer
	}
	if err := s.Server.Reload(ctx); err != nil {
		s.Log.Warn("server reload failed", "error", err)
		var se *api.StatusError
		if errors.As(err, &se) {
			return fmt.Errorf("%w: %w", ErrReloadFailed, err)
		}
		return err
	}
	s.Log.Info("server reloaded")
	return nil
}

// ListDownloads returns saved bundles, newest first.
func (s *Service) ListDownloads(ctx context.Context) ([]store.Saved, error) {
	if s.Downloads == nil {
		return nil, errNoDownloads
	}
	return s.Downloads.List(ctx), nil
}

// Watch subscribes to downloads directory changes.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Downloads == nil {
		return nil, errNoDownloads
	}
	return s.Downloads.Watch(ctx)
}

const (
	reloadTitle      = "시험범위 업데이트"
	reloadSuccess    = "시험범위 데이터가 최신 버전으로 업데이트되었습니다."
	reloadFailed     = "업데이트 중 오류가 발생했습니다."
	reloadUnexpected = "업데이트 중 예기치 않은 오류가 발생했습니다."
)

// ReloadOutcome returns the notification for a Reload result.
func ReloadOutcome(err error) (title, body string) {
	switch {
	case err == nil:
		return reloadTitle, reloadSuccess
	case errors.Is(err, ErrReloadFailed), errors.Is(err, catalog.ErrUnavailable):
		return reloadTitle, reloadFailed
	default:
		return reloadTitle, reloadUnexpected
	}
}
