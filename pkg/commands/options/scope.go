// Package options defines shared flag helpers for CLI commands.
package options

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

// ScopeOptions selects a grade and one or more schools.
type ScopeOptions struct {
	Grade   int
	Schools []string
}

// AddGradeArg registers --grade.
func AddGradeArg(cmd *cobra.Command, o *ScopeOptions) {
	cmd.Flags().IntVarP(&o.Grade, "grade", "g", 0,
		"Grade, for example 1 for 1학년.")
}

// AddSchoolArgs registers --school. It may be repeated when multi is set.
func AddSchoolArgs(cmd *cobra.Command, o *ScopeOptions, multi bool) {
	usage := "School name."
	if multi {
		usage = "School name. Repeat or comma-separate to merge several schools."
	}
	cmd.Flags().StringSliceVarP(&o.Schools, "school", "s", nil, usage)
}

// School returns the single selected school.
func (o *ScopeOptions) School() (string, error) {
	names := o.Names()
	switch len(names) {
	case 0:
		return "", errors.New("--school is required")
	case 1:
		return names[0], nil
	default:
		return "", errors.New("only one --school may be given")
	}
}

// Names returns the trimmed, non-empty school names.
func (o *ScopeOptions) Names() []string {
	out := make([]string, 0, len(o.Schools))
	for _, s := range o.Schools {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks a grade was given.
func (o *ScopeOptions) Validate() error {
	if o.Grade <= 0 {
		return errors.New("--grade is required")
	}
	return nil
}
