package store

import (
	"context"
	"testing"
	"time"
)

func TestDownloadsWatchEmitsSaves(t *testing.T) {
	base := t.TempDir()
	d, err := OpenDownloads(base)
	if err != nil {
		t.Fatalf("open downloads: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := d.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)

	if _, err := d.Save("가나고_1학년_서술형.pdf", []byte("%PDF-1.4")); err != nil {
		t.Fatalf("save: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventRescan {
				return
			}
			if evt.Type == EventSaved {
				if evt.Name != "가나고_1학년_서술형.pdf" {
					t.Fatalf("expected saved file name, got %q", evt.Name)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for save event")
		}
	}
}
