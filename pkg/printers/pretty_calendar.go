package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/exammerge/pkg/store"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints the month of then, highlighting days on which bundles
// were saved.
func (pp *PrettyPrint) Calendar(then time.Time, saved []store.Saved) {
	pp.PrintMonthCount(then, CountByDay(then, saved))
}

// CountByDay buckets saved bundles into the days of then's month.
func CountByDay(then time.Time, saved []store.Saved) []int {
	count := make([]int, DaysIn(then))
	y, m, _ := then.Local().Date()
	for _, s := range saved {
		sy, sm, sd := s.ModTime.Local().Date()
		if sy == y && sm == m {
			count[sd-1]++
		}
	}
	return count
}

func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int) {
	out := pp.out()
	d := StartDay(then)

	tf := color.New(color.Italic)
	title := fmt.Sprintf("%d년 %d월", then.Year(), int(then.Month()))
	mid := (width - len([]rune(title))*2) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = tf.Fprintf(out, "%s%s\n", strings.Repeat(" ", mid), title)

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(out, "   ")
	}

	l1 := color.New(color.Faint)
	l2 := color.New(color.Bold, color.FgHiGreen)

	for i := 0; i < DaysIn(then); i++ {
		if i < len(count) && count[i] > 0 {
			_, _ = l2.Fprintf(out, "%2d ", i+1)
		} else {
			_, _ = l1.Fprintf(out, "%2d ", i+1)
		}
		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(out, "\n")
		}
	}
	_, _ = fmt.Fprint(out, "\n\n")
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
