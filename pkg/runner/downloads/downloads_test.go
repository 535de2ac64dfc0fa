package downloads

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/app/apptest"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/printers"
)

func seeded(t *testing.T) (*app.Service, *printers.PrettyPrint, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	svc, _ := apptest.NewService(t, &apptest.Server{})
	for _, name := range []string{"가람고_1학년_서술형.pdf", "notes.pdf"} {
		if _, err := svc.Save(&merge.Download{Filename: name, Body: []byte("%PDF-fake")}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	var buf bytes.Buffer
	return svc, &printers.PrettyPrint{Out: &buf}, &buf
}

func TestListsSaved(t *testing.T) {
	svc, pp, buf := seeded(t)
	d := Downloads{App: svc, Printer: pp}
	if err := d.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "다운로드 - 2개") || !strings.Contains(out, "notes.pdf") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestReportGroupsBySchool(t *testing.T) {
	svc, pp, buf := seeded(t)
	d := Downloads{App: svc, Last: "1d", Printer: pp}
	if err := d.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"가람고", "1학년 서술형", "기타", "notes.pdf"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestReportRejectsWindow(t *testing.T) {
	svc, pp, _ := seeded(t)
	d := Downloads{App: svc, Last: "soon", Printer: pp}
	if err := d.Do(context.Background()); err == nil {
		t.Fatalf("expected error for bad window")
	}
}

func TestJSONList(t *testing.T) {
	svc, pp, buf := seeded(t)
	d := Downloads{App: svc, JSON: true, Printer: pp}
	if err := d.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	var payload struct {
		Downloads []savedJSON `json:"downloads"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if len(payload.Downloads) != 2 {
		t.Fatalf("downloads = %+v", payload.Downloads)
	}
}

func TestCalendarHighlightsToday(t *testing.T) {
	svc, pp, buf := seeded(t)
	d := Downloads{App: svc, Calendar: true, Printer: pp, Now: time.Now}
	if err := d.Do(context.Background()); err != nil {
		t.Fatalf("do: %v", err)
	}
	now := time.Now()
	if !strings.Contains(buf.String(), now.Format("2006")+"년") {
		t.Fatalf("missing calendar title:\n%s", buf.String())
	}
}
