package merge

import (
	"fmt"
	"strings"
)

// Category is the kind of material merged into a bundle. Values are the
// server's own names and are sent untranslated.
type Category string

const (
	Descriptive  Category = "서술형"
	MostFrequent Category = "최다빈출"
	FinalMock    Category = "Final모의고사"
)

// Categories lists every category in display order.
var Categories = []Category{Descriptive, MostFrequent, FinalMock}

// ParseCategory accepts the server name or one of the ASCII aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "서술형", "descriptive", "seosul":
		return Descriptive, nil
	case "최다빈출", "most-frequent", "frequent", "choi":
		return MostFrequent, nil
	case "final모의고사", "final":
		return FinalMock, nil
	}
	return "", fmt.Errorf("merge: unknown category %q", s)
}

// Alias is the ASCII name used by CLI flags and log fields.
func (c Category) Alias() string {
	switch c {
	case Descriptive:
		return "descriptive"
	case MostFrequent:
		return "most-frequent"
	case FinalMock:
		return "final"
	default:
		return string(c)
	}
}

// Kind selects the endpoint a job is sent to.
type Kind int

const (
	// KindScoped merges one category for the selection.
	KindScoped Kind = iota
	// KindAll merges a category across the whole school.
	KindAll
	// KindFinal requests the fixed final mock exam bundle.
	KindFinal
)

func (k Kind) String() string {
	switch k {
	case KindScoped:
		return "scoped"
	case KindAll:
		return "all"
	case KindFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Request names what to merge.
type Request struct {
	Grade    int
	School   string
	Category Category
	Kind     Kind
}

// Validate checks the request is complete and the category fits the kind.
func (r Request) Validate() error {
	if r.Grade <= 0 {
		return fmt.Errorf("merge: grade required")
	}
	if strings.TrimSpace(r.School) == "" {
		return fmt.Errorf("merge: school required")
	}
	switch r.Kind {
	case KindScoped:
		if r.Category == "" {
			return fmt.Errorf("merge: category required")
		}
	case KindAll:
		if r.Category != Descriptive && r.Category != MostFrequent {
			return fmt.Errorf("merge: merge-all does not support %q", r.Category)
		}
	case KindFinal:
		if r.Category != FinalMock {
			return fmt.Errorf("merge: final bundle requires %q", FinalMock)
		}
	default:
		return fmt.Errorf("merge: unknown kind %d", r.Kind)
	}
	return nil
}

// Slot identifies the control that triggered a request. At most one job per
// slot is in flight.
type Slot struct {
	Grade    int
	School   string
	Category Category
	Kind     Kind
}

// Slot returns the request's slot.
func (r Request) Slot() Slot {
	return Slot{Grade: r.Grade, School: r.School, Category: r.Category, Kind: r.Kind}
}

// Label is the "{school} {grade}학년 {category}" heading used for job cards
// and outcome messages.
func (r Request) Label() string {
	cat := string(r.Category)
	if r.Kind == KindAll {
		cat += " 전체"
	}
	return fmt.Sprintf("%s %d학년 %s", r.School, r.Grade, cat)
}

// NewRequest picks the kind for cat: the final bundle always uses the final
// endpoint, and all selects the whole-school variant of the other categories.
func NewRequest(grade int, school string, cat Category, all bool) Request {
	req := Request{Grade: grade, School: school, Category: cat, Kind: KindScoped}
	switch {
	case cat == FinalMock:
		req.Kind = KindFinal
	case all:
		req.Kind = KindAll
	}
	return req
}
