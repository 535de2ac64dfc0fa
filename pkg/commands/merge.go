package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/commands/options"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/runner/bundle"
)

func addMerge(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}
	co := &options.CategoryOptions{}
	parallel := 4

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge exam-prep material into PDFs saved in the downloads directory.",
		Long: `Merge requests one PDF per school and category. Several schools and
categories run concurrently; a school with no material is reported and the
rest still complete.`,
		Example: `
exammerge merge --grade 1 --school 가람고
exammerge merge -g 2 -s 가람고,나래고 -c descriptive,most-frequent
exammerge merge -g 1 -s 가람고 -c most-frequent --all
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if err := so.Validate(); err != nil {
				return output.HandleError(err)
			}
			cats, err := co.Parse()
			if err != nil {
				return output.HandleError(err)
			}
			return runBundle(cmd, so, cats, co.All, parallel)
		},
	}

	options.AddGradeArg(cmd, so)
	options.AddSchoolArgs(cmd, so, true)
	options.AddCategoryArgs(cmd, co)
	cmd.Flags().IntVar(&parallel, "parallel", parallel, "Number of merges to run at once.")
	registerScopeCompletions(cmd, so)
	_ = cmd.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return options.CategoryNames(), cobra.ShellCompDirectiveNoFileComp
	})

	topLevel.AddCommand(cmd)
}

func addFinal(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}

	cmd := &cobra.Command{
		Use:   "final",
		Short: "Download the Final모의고사 bundle for a school.",
		Example: `
exammerge final --grade 1 --school 가람고
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if err := so.Validate(); err != nil {
				return output.HandleError(err)
			}
			return runBundle(cmd, so, []merge.Category{merge.FinalMock}, false, 0)
		},
	}

	options.AddGradeArg(cmd, so)
	options.AddSchoolArgs(cmd, so, true)
	registerScopeCompletions(cmd, so)

	topLevel.AddCommand(cmd)
}

func runBundle(cmd *cobra.Command, so *options.ScopeOptions, cats []merge.Category, all bool, parallel int) error {
	s, err := openSession()
	if err != nil {
		return output.HandleError(err)
	}
	defer s.Close()
	b := bundle.Bundle{
		App:        s.svc,
		Grade:      so.Grade,
		Schools:    so.Names(),
		Categories: cats,
		All:        all,
		Parallel:   parallel,
		JSON:       output.JSON,
		Printer:    printer(cmd),
	}
	return output.HandleError(b.Do(cmd.Context()))
}
