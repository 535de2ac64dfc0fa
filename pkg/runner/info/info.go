// Package info provides the runner that describes the resolved configuration.
package info

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/printers"
	"tableflip.dev/exammerge/pkg/store"
)

const envConfigPath = "EXAMMERGE_CONFIG_PATH"

// Info prints where configuration came from, where bundles are saved and
// whether the server answers.
type Info struct {
	Config *store.Config
	App    *app.Service
	JSON   bool

	Printer *printers.PrettyPrint
}

func (n *Info) Do(ctx context.Context) error {
	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}

	override := os.Getenv(envConfigPath)
	reachable := false
	rows := 0
	var reachErr error
	saved := 0
	if n.App != nil {
		entries, err := n.App.Refresh(ctx)
		reachErr = err
		reachable = err == nil
		rows = len(entries)
		if list, err := n.App.ListDownloads(ctx); err == nil {
			saved = len(list)
		}
	}

	if n.JSON {
		out := map[string]any{
			"configPath": override,
			"configFile": n.Config.File,
			"config":     n.Config,
			"reachable":  reachable,
			"rows":       rows,
			"downloads":  saved,
		}
		if reachErr != nil {
			out["error"] = reachErr.Error()
		}
		return pp.JSON(out)
	}

	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	if override != "" {
		tbl.AddRow(envConfigPath, override)
	} else {
		tbl.AddRow(envConfigPath, faint.Sprint("not set"))
	}
	file := n.Config.File
	if file == "" {
		file = faint.Sprint("defaults")
	}
	tbl.AddRow("config", file)
	tbl.AddRow("server", n.Config.Server)
	tbl.AddRow("downloads", n.Config.DownloadsPath())
	tbl.AddRow("mode", n.Config.Mode)
	tbl.AddRow("timeout", n.Config.Timeout.String())
	if n.Config.Log != "" {
		tbl.AddRow("log", n.Config.Log)
	}

	pp.Title("exammerge")
	pp.Line(tbl.String())
	pp.NewLine()

	if n.App == nil {
		return nil
	}
	if reachable {
		pp.Line(color.New(color.FgGreen).Sprintf("서버 연결됨 · 시험범위 %d행", rows))
	} else {
		pp.Line(color.New(color.FgRed).Sprintf("서버에 연결할 수 없습니다: %v", reachErr))
	}
	pp.Line(faint.Sprintf("저장된 PDF %d개", saved))
	pp.NewLine()
	return nil
}
