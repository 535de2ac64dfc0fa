package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/catalog"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/preview"
	"tableflip.dev/exammerge/pkg/store"
)

// PrettyPrint renders command results for a terminal.
type PrettyPrint struct {
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

// JSON writes v as indented JSON, for --json output.
func (pp *PrettyPrint) JSON(v any) error {
	enc := json.NewEncoder(pp.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Line prints s followed by a newline.
func (pp *PrettyPrint) Line(s string) {
	_, _ = fmt.Fprintln(pp.out(), s)
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

// TitleWithCount prints title followed by a faint "- n noun".
func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d%s\n", count, noun)
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Grades lists catalog grades as "{g}학년".
func (pp *PrettyPrint) Grades(grades []int) {
	pp.TitleWithCount("학년", len(grades), "개")
	if len(grades) == 0 {
		pp.none()
		return
	}
	for _, g := range grades {
		_, _ = fmt.Fprintf(pp.out(), "  %d학년\n", g)
	}
	pp.NewLine()
}

// Schools lists schools with their last-updated timestamp. Schools in
// hasEnd are tagged.
func (pp *PrettyPrint) Schools(entries []catalog.Entry, hasEnd map[string]bool) {
	pp.TitleWithCount("학교", len(entries), "개")
	if len(entries) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	tag := color.New(color.FgGreen)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("학교"), bold.Sprint("최신 업데이트"), "")
	for _, e := range entries {
		updated := e.LastUpdated()
		if updated == "" {
			updated = faint.Sprint("-")
		}
		mark := ""
		if hasEnd[e.School] {
			mark = tag.Sprint("●")
		}
		tbl.AddRow(e.School, updated, mark)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Units prints the preview table followed by its notice.
func (pp *PrettyPrint) Units(res preview.Result) {
	pp.Title(fmt.Sprintf("%s %d학년", res.Key.School, res.Key.Grade))
	if res.LastUpdated != "" {
		_, _ = color.New(color.Faint, color.Italic).Fprintf(pp.out(), "최신 업데이트: %s\n", res.LastUpdated)
	}
	if len(res.Units) == 0 {
		pp.none()
	} else {
		bold := color.New(color.Bold)
		missing := color.New(color.FgRed)

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.Wrap = true
		tbl.AddRow(bold.Sprint("단원"), bold.Sprint("제목"))
		for _, u := range res.Units {
			title := u.DisplayTitle()
			if !u.HasFile {
				title = missing.Sprint(title)
			}
			tbl.AddRow(u.Code, title)
		}
		_, _ = fmt.Fprintln(pp.out(), tbl)
	}
	pp.Notice(res)
}

// Notice prints the exclusion warning or the all-ready confirmation.
func (pp *PrettyPrint) Notice(res preview.Result) {
	c := color.New(color.FgGreen)
	if res.NoticeKind() == preview.NoticeExcluded {
		c = color.New(color.FgYellow)
	}
	_, _ = c.Fprintln(pp.out(), res.Notice())
	pp.NewLine()
}

// UnitCodes prints the simple unit list.
func (pp *PrettyPrint) UnitCodes(units []preview.Labeled) {
	pp.TitleWithCount("단원", len(units), "개")
	if len(units) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, u := range units {
		tbl.AddRow(u.Code, u.Label())
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Job prints the outcome of one merge job.
func (pp *PrettyPrint) Job(res merge.Result, path string) {
	title, body, ok := merge.Outcome(res.Job)
	if !ok {
		return
	}
	mark := color.New(color.FgGreen, color.Bold).Sprint("✓")
	if res.Job.State == merge.StateFailed {
		mark = color.New(color.FgRed, color.Bold).Sprint("✗")
	}
	_, _ = fmt.Fprintf(pp.out(), "%s %s\n", mark, color.New(color.Bold).Sprint(title))
	_, _ = fmt.Fprintf(pp.out(), "  %s\n", body)
	if path != "" {
		faint := color.New(color.Faint)
		pages := ""
		if res.Download != nil && res.Download.Pages > 0 {
			pages = " (" + strconv.Itoa(res.Download.Pages) + "쪽)"
		}
		_, _ = faint.Fprintf(pp.out(), "  %s%s\n", path, pages)
	}
}

// Downloads lists saved bundles, newest first.
func (pp *PrettyPrint) Downloads(saved []store.Saved) {
	pp.TitleWithCount("다운로드", len(saved), "개")
	if len(saved) == 0 {
		pp.none()
		return
	}
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, s := range saved {
		tbl.AddRow(faint.Sprint(s.ModTime.Local().Format("2006-01-02 15:04")), humanSize(s.Size), s.Name)
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Report prints saved bundles grouped by school.
func (pp *PrettyPrint) Report(result app.ReportResult, label string) {
	since := result.Since.Local().Format("2006-01-02 15:04")
	until := result.Until.Local().Format("2006-01-02 15:04")
	pp.Title(fmt.Sprintf("다운로드 리포트 · 최근 %s (%s → %s)", label, since, until))
	if result.Total == 0 {
		pp.none()
		return
	}
	faint := color.New(color.Faint)
	for _, section := range result.Sections {
		_, _ = color.New(color.Bold).Fprintf(pp.out(), "\n%s\n", section.School)
		for _, item := range section.Items {
			date := ""
			if !item.Date.IsZero() {
				date = faint.Sprint("  " + item.Date.Format("2006-01-02"))
			}
			_, _ = fmt.Fprintf(pp.out(), "  %d학년 %s%s\n", item.Grade, item.Category, date)
		}
	}
	if len(result.Other) > 0 {
		_, _ = color.New(color.Bold).Fprintln(pp.out(), "\n기타")
		for _, s := range result.Other {
			_, _ = fmt.Fprintf(pp.out(), "  %s\n", s.Name)
		}
	}
	pp.NewLine()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGT"[exp])
}
