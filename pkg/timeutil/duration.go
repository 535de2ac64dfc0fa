// Package timeutil parses the look-back windows accepted by the downloads
// report.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is used when no window is given.
const DefaultWindow = "1w"

const (
	day  = 24 * time.Hour
	week = 7 * day
)

type windowUnit struct {
	label   string
	value   time.Duration
	aliases []string
}

// units are ordered largest first; FormatWindow relies on it.
var units = []windowUnit{
	{label: "w", value: week, aliases: []string{"w", "wk", "wks", "week", "weeks", "주"}},
	{label: "d", value: day, aliases: []string{"d", "day", "days", "일"}},
	{label: "h", value: time.Hour, aliases: []string{"h", "hr", "hrs", "hour", "hours", "시간"}},
	{label: "m", value: time.Minute, aliases: []string{"m", "min", "mins", "minute", "minutes", "분"}},
	{label: "s", value: time.Second, aliases: []string{"s", "sec", "secs", "second", "seconds", "초"}},
}

var (
	windowPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+|\p{Hangul}+)`)
	unitByAlias   = func() map[string]time.Duration {
		m := map[string]time.Duration{}
		for _, u := range units {
			for _, a := range u.aliases {
				m[a] = u.value
			}
		}
		return m
	}()
)

// ParseWindow parses windows such as "3d", "1w2d", "2주" or "1일12시간" and
// returns the duration with its compact label.
func ParseWindow(input string) (time.Duration, string, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultWindow
	}

	var total time.Duration
	for remaining != "" {
		matches := windowPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("invalid window segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", matches[1], err)
		}
		base, ok := unitByAlias[matches[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q", matches[2])
		}
		total += time.Duration(value) * base
		remaining = strings.TrimSpace(remaining[len(matches[0]):])
	}
	if total <= 0 {
		return 0, "", fmt.Errorf("window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders d with w/d/h/m/s tokens.
func FormatWindow(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	var b strings.Builder
	for _, u := range units {
		if d < u.value {
			continue
		}
		n := d / u.value
		d -= n * u.value
		fmt.Fprintf(&b, "%d%s", n, u.label)
	}
	return b.String()
}

// Bounds returns the [since, until] range for window ending at now.
func Bounds(now time.Time, window time.Duration) (time.Time, time.Time) {
	return now.Add(-window), now
}
