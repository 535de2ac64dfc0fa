package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func ts(s string) *string { return &s }

func staticFetcher(entries ...Entry) Fetcher {
	return FetcherFunc(func(context.Context) ([]Entry, error) {
		return entries, nil
	})
}

func TestGradesSortedAndDeduplicated(t *testing.T) {
	c := New(staticFetcher(
		Entry{Grade: 3, School: "다고등"},
		Entry{Grade: 1, School: "가나고"},
		Entry{Grade: 2, School: "나고등"},
		Entry{Grade: 1, School: "나고등"},
		Entry{Grade: 3, School: "가나고"},
	))
	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got, want := c.Grades(), []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("grades = %v, want %v", got, want)
	}
}

func TestSchoolsForGradeCollated(t *testing.T) {
	c := New(nil)
	c.Replace([]Entry{
		{Grade: 1, School: "다고등"},
		{Grade: 1, School: "가나고"},
		{Grade: 2, School: "라고등"},
		{Grade: 1, School: "나고등"},
		{Grade: 1, School: "가나고"},
	})
	got := c.SchoolsForGrade(1)
	want := []string{"가나고", "나고등", "다고등"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("schools = %v, want %v", got, want)
	}
	if got := c.SchoolsForGrade(4); len(got) != 0 {
		t.Fatalf("expected no schools for unknown grade, got %v", got)
	}
}

func TestSchoolsUseCollationNotByteOrder(t *testing.T) {
	c := New(nil)
	c.Replace([]Entry{
		{Grade: 1, School: "banana"},
		{Grade: 1, School: "Apple"},
		{Grade: 2, School: "cherry"},
	})
	got := c.Schools()
	want := []string{"Apple", "banana", "cherry"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("schools = %v, want %v", got, want)
	}
	if c.Compare("Apple", "banana") >= 0 {
		t.Fatalf("expected Apple before banana")
	}
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	fail := false
	c := New(FetcherFunc(func(context.Context) ([]Entry, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return []Entry{{Grade: 1, School: "가나고", Timestamp: ts("2025-04-01")}}, nil
	}))

	if _, err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	fail = true
	_, err := c.Refresh(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	snap := c.Snapshot()
	if len(snap) != 1 || snap[0].School != "가나고" {
		t.Fatalf("expected stale snapshot retained, got %+v", snap)
	}
	if !c.Loaded() {
		t.Fatalf("expected cache to remain loaded")
	}
}

func TestFindEntry(t *testing.T) {
	c := New(nil)
	c.Replace([]Entry{
		{Grade: 1, School: "가나고", Timestamp: ts("2025-04-01 10:00")},
		{Grade: 2, School: "가나고"},
	})

	e, ok := c.Find(1, "가나고")
	if !ok || e.LastUpdated() != "2025-04-01 10:00" {
		t.Fatalf("unexpected entry %+v ok=%t", e, ok)
	}
	e, ok = c.Find(2, "가나고")
	if !ok || e.LastUpdated() != "" {
		t.Fatalf("expected empty timestamp, got %q", e.LastUpdated())
	}
	if _, ok := c.Find(3, "가나고"); ok {
		t.Fatalf("expected missing entry")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := New(nil)
	c.Replace([]Entry{{Grade: 1, School: "가나고", Timestamp: ts("a")}})
	snap := c.Snapshot()
	*snap[0].Timestamp = "mutated"
	snap[0].School = "mutated"
	again := c.Snapshot()
	if again[0].School != "가나고" || again[0].LastUpdated() != "a" {
		t.Fatalf("snapshot mutation leaked into cache: %+v", again[0])
	}
}
