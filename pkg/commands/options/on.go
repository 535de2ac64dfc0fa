package options

import (
	"time"

	"github.com/spf13/cobra"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOMonth = "2006-1"
	layoutISOShort = "1/2"
)

// OnOptions
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Month to show, example: --on="2025-3", --on="2025-3-14" or --on="3/14".`)
}

// GetOn returns the parsed date, or the zero time when --on was not given.
func (o *OnOptions) GetOn(now time.Time) (time.Time, error) {
	if o.OnString == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{layoutISO, layoutISOMonth} {
		if t, err := time.ParseInLocation(layout, o.OnString, time.Local); err == nil {
			return t, nil
		}
	}
	t, err := time.ParseInLocation(layoutISOShort, o.OnString, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	// Let the year be the same.
	return t.AddDate(now.Year(), 0, 0), nil
}
