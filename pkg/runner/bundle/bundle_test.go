package bundle

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/exammerge/pkg/app/apptest"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/printers"
)

func quiet(t *testing.T) (*printers.PrettyPrint, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	var buf bytes.Buffer
	return &printers.PrettyPrint{Out: &buf}, &buf
}

func TestRequestsExpandSchoolsAndCategories(t *testing.T) {
	b := Bundle{
		Grade:      1,
		Schools:    []string{"가람고", " ", "나래고"},
		Categories: []merge.Category{merge.Descriptive, merge.FinalMock},
		All:        true,
	}
	reqs, err := b.Requests()
	if err != nil {
		t.Fatalf("requests: %v", err)
	}
	if len(reqs) != 4 {
		t.Fatalf("len = %d, want 4", len(reqs))
	}
	if reqs[0].Kind != merge.KindAll || reqs[1].Kind != merge.KindFinal {
		t.Fatalf("kinds = %s, %s", reqs[0].Kind, reqs[1].Kind)
	}
	if reqs[2].School != "나래고" {
		t.Fatalf("school = %q", reqs[2].School)
	}
}

func TestRequestsNeedGradeAndSchool(t *testing.T) {
	if _, err := (&Bundle{Schools: []string{"가람고"}, Categories: merge.Categories}).Requests(); err == nil {
		t.Fatalf("expected error without grade")
	}
	if _, err := (&Bundle{Grade: 1, Categories: merge.Categories}).Requests(); err == nil {
		t.Fatalf("expected error without school")
	}
}

func TestDoSavesEveryBundle(t *testing.T) {
	f := &apptest.Server{Catalog: []apptest.Row{{Grade: 1, School: "가람고"}, {Grade: 1, School: "나래고"}}}
	svc, dir := apptest.NewService(t, f)
	pp, buf := quiet(t)

	b := Bundle{
		App:        svc,
		Grade:      1,
		Schools:    []string{"가람고", "나래고"},
		Categories: []merge.Category{merge.Descriptive, merge.MostFrequent},
		Parallel:   2,
		Printer:    pp,
	}
	if err := b.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	if f.Merges() != 4 {
		t.Fatalf("merges = %d, want 4", f.Merges())
	}
	for _, name := range []string{"가람고_1학년_서술형.pdf", "나래고_1학년_최다빈출.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	out := buf.String()
	first := strings.Index(out, "가람고 1학년 서술형")
	last := strings.Index(out, "나래고 1학년 최다빈출")
	if first < 0 || last < 0 || first > last {
		t.Fatalf("results out of order:\n%s", out)
	}
}

func TestDoReportsFailuresWithoutStoppingSiblings(t *testing.T) {
	f := &apptest.Server{Missing: map[string]bool{"나래고": true}}
	svc, _ := apptest.NewService(t, f)
	pp, buf := quiet(t)

	b := Bundle{
		App:        svc,
		Grade:      2,
		Schools:    []string{"가람고", "나래고"},
		Categories: []merge.Category{merge.Descriptive},
		Printer:    pp,
	}
	err := b.Do(context.Background())
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("err = %v, want ErrFailed", err)
	}
	out := buf.String()
	if !strings.Contains(out, "✓ 가람고 2학년 서술형") || !strings.Contains(out, "✗ 나래고 2학년 서술형") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRepeatedSchoolMergesOnce(t *testing.T) {
	f := &apptest.Server{Catalog: []apptest.Row{{Grade: 1, School: "가람고"}}}
	svc, dir := apptest.NewService(t, f)
	pp, _ := quiet(t)

	b := Bundle{
		App:        svc,
		Grade:      1,
		Schools:    []string{"가람고", "가람고", " 가람고 "},
		Categories: []merge.Category{merge.Descriptive},
		Printer:    pp,
	}
	reqs, err := b.Requests()
	if err != nil {
		t.Fatalf("requests: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("len = %d, want 1", len(reqs))
	}
	if err := b.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	if f.Merges() != 1 {
		t.Fatalf("merges = %d, want 1", f.Merges())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var saved []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".pdf") {
			saved = append(saved, e.Name())
		}
	}
	if len(saved) != 1 || saved[0] != "가람고_1학년_서술형.pdf" {
		t.Fatalf("saved = %v", saved)
	}
}
