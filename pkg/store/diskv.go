package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

const pdfExt = ".pdf"

// Downloads is the directory merged PDFs are saved into. Keys are file names.
type Downloads interface {
	Save(name string, body []byte) (string, error)
	List(ctx context.Context) []Saved
	Path(name string) string
	Watch(ctx context.Context) (<-chan Event, error)
}

// Saved describes a PDF in the downloads directory.
type Saved struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// OpenDownloads creates a diskv store rooted at dir.
func OpenDownloads(dir string) (Downloads, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("store: downloads path required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure downloads: %w", err)
	}
	return &downloads{d: diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    flatTransform,
		CacheSizeMax: 1024 * 1024, // 1MB
	}), basePath: dir}, nil
}

type downloads struct {
	d        *diskv.Diskv
	basePath string
}

func flatTransform(string) []string { return []string{} }

// Save writes body under name. An existing file is kept and the new one gets
// a "-N" suffix. The returned path is absolute when the base path is.
func (s *downloads) Save(name string, body []byte) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.New("store: file name required")
	}
	key := s.unique(name)
	if err := s.d.Write(key, body); err != nil {
		return "", fmt.Errorf("store: write %s: %w", key, err)
	}
	return s.Path(key), nil
}

func (s *downloads) unique(name string) string {
	if !s.d.Has(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if !s.d.Has(candidate) {
			return candidate
		}
	}
}

// Path returns the on-disk location of name.
func (s *downloads) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

// List returns saved PDFs, newest first.
func (s *downloads) List(ctx context.Context) []Saved {
	all := make([]Saved, 0)
	for key := range s.d.Keys(ctx.Done()) {
		if !strings.EqualFold(filepath.Ext(key), pdfExt) {
			continue
		}
		info, err := os.Stat(s.Path(key))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		all = append(all, Saved{Name: key, Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].ModTime.Equal(all[j].ModTime) {
			return all[i].Name < all[j].Name
		}
		return all[i].ModTime.After(all[j].ModTime)
	})
	return all
}
