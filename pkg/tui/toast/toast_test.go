package toast

import (
	"testing"
	"time"
)

func TestNewToastCancelsOlderClear(t *testing.T) {
	m := New(time.Second)
	if cmd := m.Show(Toast{Title: "a", Body: "first"}); cmd == nil {
		t.Fatalf("expected clear command")
	}
	first := m.Seq()
	m.Show(Toast{Title: "b", Body: "second"})

	if m.Update(ClearMsg{Seq: first}) {
		t.Fatalf("clear for the replaced toast dismissed the new one")
	}
	cur, ok := m.Current()
	if !ok || cur.Body != "second" {
		t.Fatalf("current = %+v, %t", cur, ok)
	}

	if !m.Update(ClearMsg{Seq: m.Seq()}) {
		t.Fatalf("expected newest clear to dismiss")
	}
	if _, ok := m.Current(); ok {
		t.Fatalf("toast still visible")
	}
	if m.Update(ClearMsg{Seq: m.Seq()}) {
		t.Fatalf("second clear should be a no-op")
	}
}

func TestClearCommandCarriesSeq(t *testing.T) {
	m := New(time.Millisecond)
	cmd := m.Show(Toast{Body: "x"})
	msg := cmd()
	cm, ok := msg.(ClearMsg)
	if !ok || cm.Seq != m.Seq() {
		t.Fatalf("unexpected msg %#v", msg)
	}
}
