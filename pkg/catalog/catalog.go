// Package catalog keeps the last fetched exam-scope catalog in memory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrUnavailable is returned when the catalog could not be fetched. The cache
// keeps serving the previous snapshot.
var ErrUnavailable = errors.New("catalog: unavailable")

// Entry is one (grade, school, last-updated) row.
type Entry struct {
	Grade     int
	School    string
	Timestamp *string
}

// LastUpdated returns the timestamp or "" when the server sent none.
func (e Entry) LastUpdated() string {
	if e.Timestamp == nil {
		return ""
	}
	return *e.Timestamp
}

// Fetcher loads the full catalog from the server.
type Fetcher interface {
	FetchCatalog(ctx context.Context) ([]Entry, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]Entry, error)

// FetchCatalog implements Fetcher.
func (f FetcherFunc) FetchCatalog(ctx context.Context) ([]Entry, error) { return f(ctx) }

// Cache holds an immutable snapshot that is replaced wholesale on Refresh.
type Cache struct {
	fetcher Fetcher

	mu      sync.RWMutex
	entries []Entry
	loaded  bool

	// collator buffers are not safe for concurrent use
	collMu   sync.Mutex
	collator *collate.Collator
}

// New returns an empty cache backed by fetcher.
func New(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher:  fetcher,
		collator: collate.New(language.Korean),
	}
}

// Refresh fetches the catalog and swaps the snapshot. On failure the previous
// snapshot is left untouched.
func (c *Cache) Refresh(ctx context.Context) ([]Entry, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher configured", ErrUnavailable)
	}
	fetched, err := c.fetcher.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	next := cloneEntries(fetched)

	c.mu.Lock()
	c.entries = next
	c.loaded = true
	c.mu.Unlock()

	return cloneEntries(next), nil
}

// Replace seeds the cache with entries without fetching.
func (c *Cache) Replace(entries []Entry) {
	next := cloneEntries(entries)
	c.mu.Lock()
	c.entries = next
	c.loaded = true
	c.mu.Unlock()
}

// Loaded reports whether at least one refresh succeeded.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Snapshot returns a copy of the current rows in server order.
func (c *Cache) Snapshot() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneEntries(c.entries)
}

// Grades returns the distinct grades in ascending order.
func (c *Cache) Grades() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[int]struct{}, len(c.entries))
	grades := make([]int, 0, len(c.entries))
	for _, e := range c.entries {
		if _, ok := seen[e.Grade]; ok {
			continue
		}
		seen[e.Grade] = struct{}{}
		grades = append(grades, e.Grade)
	}
	sort.Ints(grades)
	return grades
}

// SchoolsForGrade returns the distinct schools of grade in Korean collation order.
func (c *Cache) SchoolsForGrade(grade int) []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Grade == grade {
			names = append(names, e.School)
		}
	}
	c.mu.RUnlock()
	return c.sortUnique(names)
}

// Schools returns every known school across all grades.
func (c *Cache) Schools() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.School)
	}
	c.mu.RUnlock()
	return c.sortUnique(names)
}

// Find looks up the row for grade and school. A missing row is not an error.
func (c *Cache) Find(grade int, school string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.Grade == grade && e.School == school {
			return cloneEntry(e), true
		}
	}
	return Entry{}, false
}

// Compare orders two school names the way the cache does.
func (c *Cache) Compare(a, b string) int {
	c.collMu.Lock()
	defer c.collMu.Unlock()
	return c.collator.CompareString(a, b)
}

func (c *Cache) sortUnique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	c.collMu.Lock()
	c.collator.SortStrings(out)
	c.collMu.Unlock()
	return out
}

func cloneEntries(in []Entry) []Entry {
	if in == nil {
		return nil
	}
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e Entry) Entry {
	if e.Timestamp != nil {
		ts := *e.Timestamp
		e.Timestamp = &ts
	}
	return e
}
