package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/commands/options"
	"tableflip.dev/exammerge/pkg/runner/downloads"
)

func addDownloads(topLevel *cobra.Command) {
	do := &options.DownloadsOptions{}
	on := &options.OnOptions{}

	cmd := &cobra.Command{
		Use:     "downloads",
		Aliases: []string{"dl"},
		Short:   "List merged PDFs saved in the downloads directory.",
		Example: `
exammerge downloads
exammerge downloads --last 1w
exammerge downloads --calendar --on 2025-3
exammerge downloads --watch
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			when, err := on.GetOn(time.Now())
			if err != nil {
				return output.HandleError(err)
			}
			s, err := openSession()
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			d := downloads.Downloads{
				App:      s.svc,
				Last:     do.Last,
				Calendar: do.Calendar,
				On:       when,
				Watch:    do.Watch,
				JSON:     output.JSON,
				Printer:  printer(cmd),
			}
			return output.HandleError(d.Do(cmd.Context()))
		},
	}

	options.AddDownloadsArgs(cmd, do)
	options.AddOnArgs(cmd, on)

	topLevel.AddCommand(cmd)
}
