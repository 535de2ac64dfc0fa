package options

import (
	"testing"
	"time"

	"tableflip.dev/exammerge/pkg/merge"
)

func TestScopeSchool(t *testing.T) {
	o := ScopeOptions{Grade: 1, Schools: []string{" 가람고 ", ""}}
	got, err := o.School()
	if err != nil || got != "가람고" {
		t.Fatalf("School() = %q, %v", got, err)
	}

	o.Schools = []string{"가람고", "나래고"}
	if _, err := o.School(); err == nil {
		t.Fatalf("expected error for two schools")
	}
	o.Schools = nil
	if _, err := o.School(); err == nil {
		t.Fatalf("expected error for no school")
	}
}

func TestScopeValidate(t *testing.T) {
	if err := (&ScopeOptions{}).Validate(); err == nil {
		t.Fatalf("expected error without grade")
	}
	if err := (&ScopeOptions{Grade: 3}).Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestCategoryParseDedupes(t *testing.T) {
	o := CategoryOptions{Categories: []string{"descriptive", "서술형", "final"}}
	got, err := o.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0] != merge.Descriptive || got[1] != merge.FinalMock {
		t.Fatalf("parse = %v", got)
	}

	o.Categories = []string{"essay"}
	if _, err := o.Parse(); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestGetOnLayouts(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	tests := map[string]time.Time{
		"":          {},
		"2025-3":    time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local),
		"2025-3-14": time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local),
		"3/14":      time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local),
	}
	for in, want := range tests {
		o := OnOptions{OnString: in}
		got, err := o.GetOn(now)
		if err != nil {
			t.Fatalf("GetOn(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("GetOn(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := (&OnOptions{OnString: "March"}).GetOn(now); err == nil {
		t.Fatalf("expected error for unparseable date")
	}
}
