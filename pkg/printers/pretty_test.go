package printers

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/exammerge/pkg/catalog"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/preview"
	"tableflip.dev/exammerge/pkg/selection"
	"tableflip.dev/exammerge/pkg/store"
)

func newPrinter(t *testing.T) (*PrettyPrint, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	var buf bytes.Buffer
	return &PrettyPrint{Out: &buf}, &buf
}

func TestSchoolsTagsHasEnd(t *testing.T) {
	pp, buf := newPrinter(t)
	ts := "2025-03-01"
	pp.Schools([]catalog.Entry{
		{Grade: 1, School: "가람고", Timestamp: &ts},
		{Grade: 1, School: "나래고"},
	}, map[string]bool{"가람고": true})

	out := buf.String()
	if !strings.Contains(out, "학교 - 2개") {
		t.Fatalf("missing count:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "나래고") && strings.Contains(line, "●") {
			t.Fatalf("untagged school tagged: %q", line)
		}
		if strings.Contains(line, "가람고") && !strings.Contains(line, "●") {
			t.Fatalf("tagged school missing tag: %q", line)
		}
	}
}

func TestUnitsPrintsMissingAndNotice(t *testing.T) {
	pp, buf := newPrinter(t)
	title := "함수"
	pp.Units(preview.Result{
		Key: selection.Key{Grade: 2, School: "가람고"},
		Units: []preview.Unit{
			{Code: "U1", Title: &title, HasFile: true},
			{Code: "U2", HasFile: false},
		},
		MissingCount: 1,
	})
	out := buf.String()
	for _, want := range []string{"가람고 2학년", "U1", "함수", "(제목 없음) (서술형/최다빈출 파일 없음)", "(1)개의"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestJobOutcomeLines(t *testing.T) {
	pp, buf := newPrinter(t)
	req := merge.Request{Grade: 1, School: "가람고", Category: merge.Descriptive}
	pp.Job(merge.Result{
		Job:      merge.Job{Request: req, State: merge.StateSuccess},
		Download: &merge.Download{Filename: "a.pdf", Pages: 3},
	}, "/tmp/a.pdf")
	pp.Job(merge.Result{
		Job: merge.Job{Request: req, State: merge.StateFailed, Err: errors.Join(merge.ErrMaterialNotFound)},
	}, "")

	out := buf.String()
	for _, want := range []string{"✓ 가람고 1학년 서술형", "/tmp/a.pdf (3쪽)", "✗ 가람고 1학년 서술형", "찾을 수 없습니다"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestCountByDay(t *testing.T) {
	month := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	saved := []store.Saved{
		{Name: "a.pdf", ModTime: time.Date(2025, 3, 7, 9, 0, 0, 0, time.Local)},
		{Name: "b.pdf", ModTime: time.Date(2025, 3, 7, 18, 0, 0, 0, time.Local)},
		{Name: "c.pdf", ModTime: time.Date(2025, 4, 7, 9, 0, 0, 0, time.Local)},
	}
	count := CountByDay(month, saved)
	if len(count) != 31 || count[6] != 2 {
		t.Fatalf("count = %v", count)
	}
}

func TestHumanSize(t *testing.T) {
	tests := map[int64]string{512: "512B", 2048: "2.0KB", 3 * 1024 * 1024: "3.0MB"}
	for in, want := range tests {
		if got := humanSize(in); got != want {
			t.Fatalf("humanSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestJSONIndents(t *testing.T) {
	pp, buf := newPrinter(t)
	if err := pp.JSON(map[string]int{"count": 2}); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got := buf.String(); got != "{\n  \"count\": 2\n}\n" {
		t.Fatalf("json = %q", got)
	}
}
