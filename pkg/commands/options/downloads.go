package options

import (
	"github.com/spf13/cobra"
)

// DownloadsOptions
type DownloadsOptions struct {
	Last     string
	Calendar bool
	Watch    bool
}

func AddDownloadsArgs(cmd *cobra.Command, o *DownloadsOptions) {
	cmd.Flags().StringVar(&o.Last, "last", "",
		`Group bundles saved in this window by school, example: --last=3d or --last=1주.`)
	cmd.Flags().BoolVar(&o.Calendar, "calendar", false,
		"Show a calendar of the days bundles were saved.")
	cmd.Flags().BoolVarP(&o.Watch, "watch", "w", false,
		"Keep running and print changes to the downloads directory.")
}
