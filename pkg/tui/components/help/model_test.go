package help

import (
	"strings"
	"testing"
)

func TestRendersKeyReference(t *testing.T) {
	m := New(70, 80)
	if err := m.Err(); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := m.View()
	for _, want := range []string{"서술형", "Final모의고사"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in help:\n%s", want, out)
		}
	}
}

func TestSetSizeClampsToMinimum(t *testing.T) {
	m := New(4, 2)
	if m.width != 32 || m.height != 8 {
		t.Fatalf("size = %dx%d, want 32x8", m.width, m.height)
	}
}

func TestStripANSI(t *testing.T) {
	if got := stripANSI("\x1b[1m굵게\x1b[0m"); got != "굵게" {
		t.Fatalf("stripANSI = %q", got)
	}
}
