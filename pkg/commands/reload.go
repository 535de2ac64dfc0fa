package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/runner/reload"
)

func addReload(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Ask the server to re-read its exam-scope data, then refresh the catalog.",
		Example: `
exammerge reload
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession()
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			r := reload.Reload{App: s.svc, JSON: output.JSON, Printer: printer(cmd)}
			return output.HandleError(r.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
