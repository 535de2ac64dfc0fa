package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration, the server and where bundles are saved.",
		Example: `
exammerge info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession()
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			i := info.Info{
				Config:  s.cfg,
				App:     s.svc,
				JSON:    output.JSON,
				Printer: printer(cmd),
			}
			err = i.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
