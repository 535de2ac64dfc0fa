package timeutil

import (
	"testing"
	"time"
)

func TestParseWindowDefault(t *testing.T) {
	dur, label, err := ParseWindow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dur != week || label != "1w" {
		t.Fatalf("got %v %q", dur, label)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in    string
		want  time.Duration
		label string
	}{
		{in: "1w2d6h30m", want: week + 2*day + 6*time.Hour + 30*time.Minute, label: "1w2d6h30m"},
		{in: "2주", want: 2 * week, label: "2w"},
		{in: "1일 12시간", want: day + 12*time.Hour, label: "1d12h"},
		{in: "90m", want: 90 * time.Minute, label: "1h30m"},
	}
	for _, tt := range tests {
		dur, label, err := ParseWindow(tt.in)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if dur != tt.want || label != tt.label {
			t.Fatalf("%q: got %v %q, want %v %q", tt.in, dur, label, tt.want, tt.label)
		}
	}
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3x", "0d"} {
		if _, _, err := ParseWindow(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestBounds(t *testing.T) {
	now := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	since, until := Bounds(now, 2*day)
	if !until.Equal(now) || !since.Equal(now.Add(-48*time.Hour)) {
		t.Fatalf("bounds = %v %v", since, until)
	}
}
