package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/commands/options"
	"tableflip.dev/exammerge/pkg/runner/get"
)

func addGrades(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "grades",
		Short: "List the grades that have exam-scope data.",
		Example: `
exammerge grades
exammerge grades --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := openSession()
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			g := get.Get{App: s.svc, JSON: output.JSON, Printer: printer(cmd)}
			return output.HandleError(g.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}

func addSchools(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}

	cmd := &cobra.Command{
		Use:   "schools",
		Short: "List the schools of a grade. Schools with end-of-term data are tagged ●.",
		Example: `
exammerge schools --grade 1
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if err := so.Validate(); err != nil {
				return output.HandleError(err)
			}
			s, err := openSession()
			if err != nil {
				return output.HandleError(err)
			}
			defer s.Close()
			g := get.Get{App: s.svc, Grade: so.Grade, JSON: output.JSON, Printer: printer(cmd)}
			return output.HandleError(g.Do(cmd.Context()))
		},
	}

	options.AddGradeArg(cmd, so)
	_ = cmd.RegisterFlagCompletionFunc("grade", gradeCompletions)

	topLevel.AddCommand(cmd)
}
