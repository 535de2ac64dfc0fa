package preview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/exammerge/pkg/api"
	"tableflip.dev/exammerge/pkg/selection"
)

type fakeSource struct {
	preview    api.PreviewResponse
	previewErr error
	units      []string
	names      map[string]string
	namesErr   error
	namesCalls [][]string
}

func (f *fakeSource) PreviewUnits(_ context.Context, grade int, school string) (api.PreviewResponse, error) {
	if f.previewErr != nil {
		return api.PreviewResponse{}, f.previewErr
	}
	return f.preview, nil
}

func (f *fakeSource) Units(context.Context, int, string) ([]string, error) {
	return f.units, nil
}

func (f *fakeSource) UnitNames(_ context.Context, _ int, codes []string) (map[string]string, error) {
	f.namesCalls = append(f.namesCalls, codes)
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	return f.names, nil
}

func (f *fakeSource) GradeSchools(context.Context, int) ([]string, error) {
	return []string{"가나고"}, nil
}

func str(s string) *string { return &s }

func TestResolveUnitsCountsMissing(t *testing.T) {
	src := &fakeSource{preview: api.PreviewResponse{
		Grade:  1,
		School: "A",
		Units: []api.UnitRow{
			{Code: "U1", Title: str("One"), HasFile: true},
			{Code: "U2", Title: str("Two"), HasFile: false},
		},
	}}
	res, err := NewResolver(src, nil).ResolveUnits(context.Background(), 1, "A")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.MissingCount != 1 {
		t.Fatalf("missing = %d, want 1", res.MissingCount)
	}
	if res.NoticeKind() != NoticeExcluded {
		t.Fatalf("expected exclusion notice")
	}
	if !strings.Contains(res.Notice(), "(1)개의 단원") {
		t.Fatalf("unexpected notice %q", res.Notice())
	}
	if res.Key != (selection.Key{Grade: 1, School: "A"}) {
		t.Fatalf("key = %v", res.Key)
	}
	if got := res.Units[1].DisplayTitle(); got != "Two (서술형/최다빈출 파일 없음)" {
		t.Fatalf("missing unit title = %q", got)
	}
	if len(src.namesCalls) != 0 {
		t.Fatalf("names lookup not expected when titles are present")
	}
}

func TestResolveUnitsAllReady(t *testing.T) {
	src := &fakeSource{preview: api.PreviewResponse{Units: []api.UnitRow{
		{Code: "U1", Title: str("One"), HasFile: true},
	}}}
	res, err := NewResolver(src, nil).ResolveUnits(context.Background(), 1, "A")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.NoticeKind() != NoticeAllReady || res.Notice() != allReadyNotice {
		t.Fatalf("expected all-ready notice, got %q", res.Notice())
	}
}

func TestResolveUnitsBackfillsTitles(t *testing.T) {
	src := &fakeSource{
		preview: api.PreviewResponse{Units: []api.UnitRow{
			{Code: "U1", HasFile: true},
			{Code: "U2", HasFile: true},
		}},
		names: map[string]string{"U1": "Functions"},
	}
	res, err := NewResolver(src, nil).ResolveUnits(context.Background(), 2, "B")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(src.namesCalls) != 1 || len(src.namesCalls[0]) != 2 {
		t.Fatalf("expected one names lookup for both codes, got %v", src.namesCalls)
	}
	if got := res.Units[0].DisplayTitle(); got != "Functions" {
		t.Fatalf("title = %q", got)
	}
	if got := res.Units[1].DisplayTitle(); got != untitledLabel {
		t.Fatalf("untitled = %q", got)
	}
}

func TestResolveUnitsNamesFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{
		preview:  api.PreviewResponse{Units: []api.UnitRow{{Code: "U1", HasFile: true}}},
		namesErr: errors.New("boom"),
	}
	res, err := NewResolver(src, nil).ResolveUnits(context.Background(), 2, "B")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Units[0].Title != nil {
		t.Fatalf("expected title to stay empty")
	}
}

func TestResolveUnitsFailures(t *testing.T) {
	tests := map[string]*fakeSource{
		"transport": {previewErr: &api.StatusError{Code: 500}},
		"wrong selection": {preview: api.PreviewResponse{Grade: 3, School: "A"}},
		"unit without code": {preview: api.PreviewResponse{Units: []api.UnitRow{{Code: " "}}}},
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewResolver(src, nil).ResolveUnits(context.Background(), 1, "A")
			if !errors.Is(err, ErrFailed) {
				t.Fatalf("expected ErrFailed, got %v", err)
			}
		})
	}
}

func TestResolveUnitCodesFallsBackToCode(t *testing.T) {
	src := &fakeSource{
		units: []string{"U1", "U2"},
		names: map[string]string{"U2": "Vectors"},
	}
	got, err := NewResolver(src, nil).ResolveUnitCodes(context.Background(), 1, "A")
	if err != nil {
		t.Fatalf("codes: %v", err)
	}
	if got[0].Label() != "U1" || got[1].Label() != "Vectors" {
		t.Fatalf("labels = %q, %q", got[0].Label(), got[1].Label())
	}
}
