// Package preview resolves the unit list of a grade/school and classifies each
// unit by whether merge material exists for it.
package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/exammerge/pkg/api"
	"tableflip.dev/exammerge/pkg/logging"
	"tableflip.dev/exammerge/pkg/selection"
)

// ErrFailed is returned for any preview that cannot be shown in full.
var ErrFailed = errors.New("preview: failed")

const (
	untitledLabel = "(제목 없음)"
	missingSuffix = " (서술형/최다빈출 파일 없음)"

	excludedNotice = "※ (%d)개의 단원은 현재 서술형/최다빈출 파일이 없어 PDF 생성 시 자동으로 제외됩니다."
	allReadyNotice = "모든 단원에 대해 서술형/최다빈출 자료가 준비되어 있습니다."
)

// Source is the subset of the server API the resolver needs.
type Source interface {
	PreviewUnits(ctx context.Context, grade int, school string) (api.PreviewResponse, error)
	Units(ctx context.Context, grade int, school string) ([]string, error)
	UnitNames(ctx context.Context, grade int, codes []string) (map[string]string, error)
	GradeSchools(ctx context.Context, grade int) ([]string, error)
}

// Unit is a curriculum unit within a grade/school's exam scope.
type Unit struct {
	Code    string
	Title   *string
	HasFile bool
}

// DisplayTitle is the title column text. Missing-material units are flagged
// rather than hidden.
func (u Unit) DisplayTitle() string {
	title := untitledLabel
	if u.Title != nil && strings.TrimSpace(*u.Title) != "" {
		title = *u.Title
	}
	if !u.HasFile {
		return title + missingSuffix
	}
	return title
}

// NoticeKind distinguishes the two mutually exclusive notices.
type NoticeKind int

const (
	NoticeAllReady NoticeKind = iota
	NoticeExcluded
)

// Result is one complete preview. LastUpdated is filled from the catalog by
// callers that have one.
type Result struct {
	Key          selection.Key
	Units        []Unit
	MissingCount int
	LastUpdated  string
}

// NoticeKind reports which notice applies.
func (r Result) NoticeKind() NoticeKind {
	if r.MissingCount > 0 {
		return NoticeExcluded
	}
	return NoticeAllReady
}

// Notice renders the exclusion warning or the all-ready confirmation.
func (r Result) Notice() string {
	if r.NoticeKind() == NoticeExcluded {
		return fmt.Sprintf(excludedNotice, r.MissingCount)
	}
	return allReadyNotice
}

// Labeled is a unit code with its resolved title, if any.
type Labeled struct {
	Code  string
	Title string
}

// Label returns the title or, when absent, the bare code.
func (l Labeled) Label() string {
	if l.Title == "" {
		return l.Code
	}
	return l.Title
}

// Resolver fetches previews.
type Resolver struct {
	source Source
	log    *logging.Logger
}

// NewResolver builds a resolver on source.
func NewResolver(source Source, log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{source: source, log: log}
}

// ResolveUnits loads the units of grade/school. Titles the server left null
// are back-filled from unit_names on a best-effort basis.
func (r *Resolver) ResolveUnits(ctx context.Context, grade int, school string) (Result, error) {
	key := selection.Key{Grade: grade, School: school}
	resp, err := r.source.PreviewUnits(ctx, grade, school)
	if err != nil {
		r.log.Warn("preview failed", "key", key.String(), "error", err)
		return Result{}, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if (resp.Grade != 0 && resp.Grade != grade) || (resp.School != "" && resp.School != school) {
		r.log.Warn("preview answered for another selection", "key", key.String(), "grade", resp.Grade, "school", resp.School)
		return Result{}, fmt.Errorf("%w: response for %d/%s", ErrFailed, resp.Grade, resp.School)
	}

	res := Result{Key: key, Units: make([]Unit, 0, len(resp.Units))}
	var untitled []string
	for _, row := range resp.Units {
		if strings.TrimSpace(row.Code) == "" {
			return Result{}, fmt.Errorf("%w: unit without code", ErrFailed)
		}
		u := Unit{Code: row.Code, HasFile: row.HasFile}
		if row.Title != nil {
			t := *row.Title
			u.Title = &t
		} else {
			untitled = append(untitled, row.Code)
		}
		if !u.HasFile {
			res.MissingCount++
		}
		res.Units = append(res.Units, u)
	}

	if len(untitled) > 0 {
		names, err := r.ResolveUnitNames(ctx, grade, untitled)
		if err != nil {
			r.log.Info("unit names lookup skipped", "key", key.String(), "error", err)
		}
		for i := range res.Units {
			if res.Units[i].Title != nil {
				continue
			}
			if name, ok := names[res.Units[i].Code]; ok && name != "" {
				n := name
				res.Units[i].Title = &n
			}
		}
	}

	r.log.Debug("preview resolved", "key", key.String(), "units", len(res.Units), "missing", res.MissingCount)
	return res, nil
}

// ResolveUnitNames maps codes to titles. Codes the server does not know are
// absent from the result.
func (r *Resolver) ResolveUnitNames(ctx context.Context, grade int, codes []string) (map[string]string, error) {
	if len(codes) == 0 {
		return map[string]string{}, nil
	}
	names, err := r.source.UnitNames(ctx, grade, codes)
	if err != nil {
		return map[string]string{}, fmt.Errorf("%w: unit names: %v", ErrFailed, err)
	}
	return names, nil
}

// ResolveUnitCodes lists units via the simple units endpoint, labelled with
// unit_names where available.
func (r *Resolver) ResolveUnitCodes(ctx context.Context, grade int, school string) ([]Labeled, error) {
	codes, err := r.source.Units(ctx, grade, school)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	names, err := r.ResolveUnitNames(ctx, grade, codes)
	if err != nil {
		r.log.Info("unit names lookup skipped", "grade", grade, "error", err)
	}
	out := make([]Labeled, 0, len(codes))
	for _, code := range codes {
		out = append(out, Labeled{Code: code, Title: names[code]})
	}
	return out, nil
}

// GradeSchools lists schools that have end data for grade.
func (r *Resolver) GradeSchools(ctx context.Context, grade int) ([]string, error) {
	schools, err := r.source.GradeSchools(ctx, grade)
	if err != nil {
		return nil, fmt.Errorf("%w: grade schools: %v", ErrFailed, err)
	}
	return schools, nil
}
