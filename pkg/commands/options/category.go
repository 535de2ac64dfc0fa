package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/exammerge/pkg/merge"
)

// CategoryOptions selects the material categories to merge.
type CategoryOptions struct {
	Categories []string
	All        bool
}

// AddCategoryArgs registers --category and --all.
func AddCategoryArgs(cmd *cobra.Command, o *CategoryOptions) {
	cmd.Flags().StringSliceVarP(&o.Categories, "category", "c", []string{"descriptive"},
		`Category to merge: descriptive (서술형), most-frequent (최다빈출) or final (Final모의고사).`)
	cmd.Flags().BoolVar(&o.All, "all", false,
		"Merge every unit of the school instead of the exam scope.")
}

// Parse resolves the category names.
func (o *CategoryOptions) Parse() ([]merge.Category, error) {
	out := make([]merge.Category, 0, len(o.Categories))
	seen := map[merge.Category]bool{}
	for _, name := range o.Categories {
		c, err := merge.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// CategoryNames lists the accepted --category values for completion.
func CategoryNames() []string {
	out := make([]string, 0, len(merge.Categories))
	for _, c := range merge.Categories {
		out = append(out, c.Alias())
	}
	return out
}
