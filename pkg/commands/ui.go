package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the interactive merge client",
		Example: `
exammerge ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()
			i := ui.UI{App: s.svc, Config: s.cfg}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
