package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/commands/options"
	"tableflip.dev/exammerge/pkg/runner/preview"
)

func addPreview(topLevel *cobra.Command) {
	addPreviewCommand(topLevel, "preview",
		"Show the exam-scope units of a school and which lack merge material.", false)
}

func addUnits(topLevel *cobra.Command) {
	addPreviewCommand(topLevel, "units",
		"List the unit codes of a school with their titles.", true)
}

func addPreviewCommand(topLevel *cobra.Command, use, short string, codes bool) {
	so := &options.ScopeOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Example: `
exammerge ` + use + ` --grade 2 --school 가람고
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if err := so.Validate(); err != nil {
				return output.HandleError(err)
			}
			school, err := so.School()
			if err != nil {
				return output.HandleError(err)
			}
			s, err := openSession()
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			p := preview.Preview{
				App:     s.svc,
				Grade:   so.Grade,
				School:  school,
				Codes:   codes,
				JSON:    output.JSON,
				Printer: printer(cmd),
			}
			return output.HandleError(p.Do(cmd.Context()))
		},
	}

	options.AddGradeArg(cmd, so)
	options.AddSchoolArgs(cmd, so, false)
	registerScopeCompletions(cmd, so)

	topLevel.AddCommand(cmd)
}
