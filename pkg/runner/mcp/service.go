// Package mcp exposes the exam-merge operations over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/merge"
)

// Service adapts the application service into transport-friendly results.
type Service struct {
	App *app.Service
}

// ErrNoService is returned when the MCP service was built without an app.
var ErrNoService = errors.New("mcp: application service required")

// NewService returns a Service over svc.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

// SchoolSummary describes one school of a grade.
type SchoolSummary struct {
	Name        string `json:"name"`
	Grade       int    `json:"grade"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	HasEndData  bool   `json:"hasEndData"`
}

// UnitDTO is one row of a unit preview.
type UnitDTO struct {
	Code    string `json:"code"`
	Title   string `json:"title,omitempty"`
	Display string `json:"display"`
	HasFile bool   `json:"hasFile"`
}

// PreviewDTO is a unit preview with its notice.
type PreviewDTO struct {
	Grade        int       `json:"grade"`
	School       string    `json:"school"`
	LastUpdated  string    `json:"lastUpdated,omitempty"`
	Units        []UnitDTO `json:"units"`
	MissingCount int       `json:"missingCount"`
	Notice       string    `json:"notice"`
}

// MergeDTO reports a finished merge job.
type MergeDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	State    string `json:"state"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
	Path     string `json:"path,omitempty"`
	Pages    int    `json:"pages,omitempty"`
}

// ReloadDTO reports a server reload.
type ReloadDTO struct {
	OK      bool   `json:"ok"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Rows    int    `json:"rows"`
}

// DownloadDTO describes a saved bundle.
type DownloadDTO struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

func (s *Service) app() (*app.Service, error) {
	if s == nil || s.App == nil {
		return nil, ErrNoService
	}
	return s.App, nil
}

// Grades lists the catalog grades.
func (s *Service) Grades(ctx context.Context) ([]int, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	return a.Grades(ctx)
}

// Schools lists the schools of grade. End-data tagging is best effort.
func (s *Service) Schools(ctx context.Context, grade int) ([]SchoolSummary, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	if grade <= 0 {
		return nil, fmt.Errorf("grade must be positive, got %d", grade)
	}
	entries, err := a.Schools(ctx, grade)
	if err != nil {
		return nil, err
	}
	hasEnd, err := a.GradeSchools(ctx, grade)
	if err != nil {
		a.Log.Warn("grade schools unavailable", "grade", grade, "error", err)
	}
	out := make([]SchoolSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, SchoolSummary{
			Name:        e.School,
			Grade:       grade,
			LastUpdated: e.LastUpdated(),
			HasEndData:  hasEnd[e.School],
		})
	}
	return out, nil
}

// Preview resolves the unit table of grade/school.
func (s *Service) Preview(ctx context.Context, grade int, school string) (PreviewDTO, error) {
	a, err := s.app()
	if err != nil {
		return PreviewDTO{}, err
	}
	school = strings.TrimSpace(school)
	if grade <= 0 || school == "" {
		return PreviewDTO{}, errors.New("grade and school are required")
	}
	if err := a.Ensure(ctx); err != nil {
		a.Log.Warn("catalog unavailable for preview", "error", err)
	}
	res, err := a.PreviewUnits(ctx, grade, school)
	if err != nil {
		return PreviewDTO{}, err
	}
	dto := PreviewDTO{
		Grade:        grade,
		School:       school,
		LastUpdated:  res.LastUpdated,
		Units:        make([]UnitDTO, 0, len(res.Units)),
		MissingCount: res.MissingCount,
		Notice:       res.Notice(),
	}
	for _, u := range res.Units {
		unit := UnitDTO{Code: u.Code, Display: u.DisplayTitle(), HasFile: u.HasFile}
		if u.Title != nil {
			unit.Title = *u.Title
		}
		dto.Units = append(dto.Units, unit)
	}
	return dto, nil
}

// UnitCodes lists labelled unit codes.
func (s *Service) UnitCodes(ctx context.Context, grade int, school string) ([]UnitDTO, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	labeled, err := a.UnitCodes(ctx, grade, school)
	if err != nil {
		return nil, err
	}
	out := make([]UnitDTO, 0, len(labeled))
	for _, l := range labeled {
		out = append(out, UnitDTO{Code: l.Code, Title: l.Title, Display: l.Label(), HasFile: true})
	}
	return out, nil
}

// Merge runs one merge to completion and saves the bundle. A failed job is
// reported in the DTO rather than as an error.
func (s *Service) Merge(ctx context.Context, grade int, school, category string, all bool) (MergeDTO, error) {
	a, err := s.app()
	if err != nil {
		return MergeDTO{}, err
	}
	cat, err := merge.ParseCategory(category)
	if err != nil {
		return MergeDTO{}, err
	}
	req := merge.NewRequest(grade, strings.TrimSpace(school), cat, all)
	if err := req.Validate(); err != nil {
		return MergeDTO{}, err
	}
	res, path, err := a.Merge(ctx, req)
	if err != nil && res.Job.State != merge.StateFailed {
		return MergeDTO{}, err
	}
	title, body, _ := merge.Outcome(res.Job)
	dto := MergeDTO{
		ID:      res.Job.ID.String(),
		Label:   req.Label(),
		State:   res.Job.State.String(),
		Title:   title,
		Message: body,
		Path:    path,
	}
	if res.Download != nil {
		dto.Filename = res.Download.Filename
		dto.Pages = res.Download.Pages
	}
	return dto, nil
}

// Reload asks the server to re-ingest and refreshes the catalog.
func (s *Service) Reload(ctx context.Context) (ReloadDTO, error) {
	a, err := s.app()
	if err != nil {
		return ReloadDTO{}, err
	}
	entries, err := a.Reload(ctx)
	title, body := app.ReloadOutcome(err)
	return ReloadDTO{OK: err == nil, Title: title, Message: body, Rows: len(entries)}, nil
}

// Downloads lists saved bundles, newest first.
func (s *Service) Downloads(ctx context.Context) ([]DownloadDTO, error) {
	a, err := s.app()
	if err != nil {
		return nil, err
	}
	saved, err := a.ListDownloads(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DownloadDTO, 0, len(saved))
	for _, d := range saved {
		out = append(out, DownloadDTO{Name: d.Name, Size: d.Size, Modified: d.ModTime.Format("2006-01-02T15:04:05Z07:00")})
	}
	return out, nil
}
