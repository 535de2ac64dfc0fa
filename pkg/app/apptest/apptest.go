// Package apptest provides an in-process fake of the exam-prep merge server
// and a Service wired to it.
package apptest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tableflip.dev/exammerge/pkg/api"
	"tableflip.dev/exammerge/pkg/app"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/store"
)

// Row is one catalog row served from /api/end_data.
type Row struct {
	Grade     int     `json:"grade"`
	School    string  `json:"school"`
	Timestamp *string `json:"timestamp"`
}

// Server is a fake merge server. Zero values serve an empty catalog.
type Server struct {
	mu sync.Mutex

	Catalog []Row
	// EndData lists the schools returned from /api/grade_schools.
	EndData []string
	// Missing schools answer merges with 404.
	Missing map[string]bool
	// ReloadFails makes /reload answer 500.
	ReloadFails bool

	merges int
}

// Merges reports how many merge requests were served.
func (f *Server) Merges() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.merges
}

// Handler returns the HTTP routes.
func (f *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/end_data", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		rows := f.Catalog
		if rows == nil {
			rows = []Row{}
		}
		_ = json.NewEncoder(w).Encode(rows)
	})
	mux.HandleFunc("/api/preview_units", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"units": []map[string]any{
				{"code": "U1", "title": "함수", "has_file": true},
				{"code": "U2", "title": nil, "has_file": false},
			},
		})
	})
	mux.HandleFunc("/api/units", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{"U1", "U2"})
	})
	mux.HandleFunc("/api/unit_names", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"U1": "함수"})
	})
	mux.HandleFunc("/api/grade_schools", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		names := f.EndData
		if names == nil {
			names = []string{}
		}
		_ = json.NewEncoder(w).Encode(names)
	})
	merged := func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			School string `json:"school"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.merges++
		missing := f.Missing[req.School]
		f.mu.Unlock()
		if missing {
			http.Error(w, "no files", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-fake"))
	}
	mux.HandleFunc("/merge/", merged)
	mux.HandleFunc("/api/merge_all", merged)
	mux.HandleFunc("/api/merge_final", merged)
	mux.HandleFunc("/reload", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.ReloadFails {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// NewService starts f and returns a service saving into a temporary
// downloads directory, along with that directory.
func NewService(t *testing.T, f *Server) (*app.Service, string) {
	t.Helper()
	srv := httptest.NewServer(f.Handler())
	t.Cleanup(srv.Close)
	client, err := api.New(srv.URL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	dir := t.TempDir()
	downloads, err := store.OpenDownloads(dir)
	if err != nil {
		t.Fatalf("downloads: %v", err)
	}
	svc := app.NewService(client, downloads, nil,
		merge.WithPageCounter(func([]byte) (int, error) { return 3, nil }),
		merge.WithTickRate(time.Millisecond),
		merge.WithDatestamp(false),
	)
	return svc, dir
}

// Stamp returns a pointer to s, for Row timestamps.
func Stamp(s string) *string { return &s }
