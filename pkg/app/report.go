package app

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"tableflip.dev/exammerge/pkg/store"
)

// ReportItem is one saved bundle with the fields recovered from its name.
type ReportItem struct {
	Saved    store.Saved
	Grade    int
	Category string
	Date     time.Time
}

// ReportSection groups saved bundles by school.
type ReportSection struct {
	School string
	Items  []ReportItem
}

// ReportResult summarizes the downloads directory for a time window.
type ReportResult struct {
	Since    time.Time
	Until    time.Time
	Sections []ReportSection
	Other    []store.Saved
	Total    int
}

// Report groups bundles saved between the provided bounds by school. Files
// whose names do not follow the bundle naming are listed under Other.
func (s *Service) Report(ctx context.Context, since, until time.Time) (ReportResult, error) {
	if since.After(until) {
		since, until = until, since
	}
	all, err := s.ListDownloads(ctx)
	if err != nil {
		return ReportResult{}, err
	}

	result := ReportResult{Since: since, Until: until}
	grouped := make(map[string][]ReportItem)
	for _, saved := range all {
		if saved.ModTime.Before(since) || saved.ModTime.After(until) {
			continue
		}
		result.Total++
		item, school, ok := parseBundleName(saved)
		if !ok {
			result.Other = append(result.Other, saved)
			continue
		}
		grouped[school] = append(grouped[school], item)
	}

	schools := make([]string, 0, len(grouped))
	for school := range grouped {
		schools = append(schools, school)
	}
	sort.Slice(schools, func(i, j int) bool {
		return s.Catalog.Compare(schools[i], schools[j]) < 0
	})
	for _, school := range schools {
		items := grouped[school]
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Grade != items[j].Grade {
				return items[i].Grade < items[j].Grade
			}
			return items[i].Saved.ModTime.After(items[j].Saved.ModTime)
		})
		result.Sections = append(result.Sections, ReportSection{School: school, Items: items})
	}
	return result, nil
}

// parseBundleName reads "{school}_{grade}학년_{category}[_{YYYYMMDD}][-N].pdf".
// The school may itself contain underscores, so the grade part is located
// from the left.
func parseBundleName(saved store.Saved) (ReportItem, string, bool) {
	stem := strings.TrimSuffix(saved.Name, filepath.Ext(saved.Name))
	parts := strings.Split(stem, "_")
	gradeAt := -1
	grade := 0
	for i, p := range parts {
		if i == 0 || !strings.HasSuffix(p, "학년") {
			continue
		}
		g, err := strconv.Atoi(strings.TrimSuffix(p, "학년"))
		if err == nil && g > 0 {
			gradeAt, grade = i, g
			break
		}
	}
	if gradeAt < 0 || gradeAt == len(parts)-1 {
		return ReportItem{}, "", false
	}

	rest := parts[gradeAt+1:]
	item := ReportItem{Saved: saved, Grade: grade}
	last := rest[len(rest)-1]
	if dash := strings.LastIndex(last, "-"); dash > 0 {
		if _, err := strconv.Atoi(last[dash+1:]); err == nil {
			last = last[:dash]
		}
	}
	if len(rest) > 1 {
		if d, err := time.ParseInLocation("20060102", last, time.Local); err == nil {
			item.Date = d
			rest = rest[:len(rest)-1]
		} else {
			rest[len(rest)-1] = last
		}
	} else {
		rest[0] = last
	}
	item.Category = strings.Join(rest, "_")
	return item, strings.Join(parts[:gradeAt], "_"), true
}
