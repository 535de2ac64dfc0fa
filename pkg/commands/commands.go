package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/commands/options"
	"tableflip.dev/exammerge/pkg/logging"
	"tableflip.dev/exammerge/pkg/printers"
	"tableflip.dev/exammerge/pkg/store"
)

var (
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "exammerge",
		Short: base.Wrap80("Browse exam scopes and merge exam-prep PDFs from the terminal."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddOutputArg(cmd, output)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addGrades(topLevel)
	addSchools(topLevel)
	addPreview(topLevel)
	addUnits(topLevel)
	addMerge(topLevel)
	addFinal(topLevel)
	addReload(topLevel)
	addDownloads(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addCompletions(topLevel)
	addVersion(topLevel)
}

// session is the loaded configuration with the service built on it.
type session struct {
	cfg *store.Config
	log *logging.Logger
	svc *app.Service
}

func (s *session) Close() {
	s.log.Sync()
}

func openSession() (*session, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	svc, err := app.New(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return &session{cfg: cfg, log: log, svc: svc}, nil
}

func printer(cmd *cobra.Command) *printers.PrettyPrint {
	return &printers.PrettyPrint{Out: cmd.OutOrStdout()}
}
