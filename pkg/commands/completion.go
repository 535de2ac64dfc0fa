package commands

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/commands/options"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(exammerge completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(exammerge completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

func registerScopeCompletions(cmd *cobra.Command, so *options.ScopeOptions) {
	_ = cmd.RegisterFlagCompletionFunc("grade", gradeCompletions)
	_ = cmd.RegisterFlagCompletionFunc("school", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return schoolCompletions(so.Grade, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

func gradeCompletions(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	s, err := openSession()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer s.Close()
	grades, err := s.svc.Grades(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	out := make([]string, 0, len(grades))
	for _, g := range grades {
		out = append(out, strconv.Itoa(g))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func schoolCompletions(grade int, toComplete string) []string {
	s, err := openSession()
	if err != nil {
		return nil
	}
	defer s.Close()
	entries, err := s.svc.Schools(context.Background(), grade)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.School, toComplete) {
			out = append(out, e.School)
		}
	}
	return out
}
