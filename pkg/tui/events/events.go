package events

import (
	"fmt"

	"tableflip.dev/exammerge/pkg/catalog"
	"tableflip.dev/exammerge/pkg/merge"
	"tableflip.dev/exammerge/pkg/preview"
	"tableflip.dev/exammerge/pkg/selection"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// Origin records which user action started a catalog load.
type Origin string

const (
	// OriginInit is the load issued when the UI starts.
	OriginInit Origin = "init"
	// OriginRefresh is a user-requested catalog refresh.
	OriginRefresh Origin = "refresh"
	// OriginReload follows a server-side reload.
	OriginReload Origin = "reload"
)

// CatalogLoadedMsg carries the outcome of a catalog fetch. Seq ties it to the
// request that produced it; only the newest request may apply.
type CatalogLoadedMsg struct {
	Component ComponentID
	Origin    Origin
	Seq       int
	Entries   []catalog.Entry
	Err       error
}

// Describe renders the load in a human-friendly format for logs.
func (m CatalogLoadedMsg) Describe() string {
	if m.Err != nil {
		return fmt.Sprintf(`origin:%q seq:%d err:%q`, m.Origin, m.Seq, m.Err)
	}
	return fmt.Sprintf(`origin:%q seq:%d rows:%d`, m.Origin, m.Seq, len(m.Entries))
}

// GradeSchoolsLoadedMsg carries the has-end tags for one grade.
type GradeSchoolsLoadedMsg struct {
	Component ComponentID
	Grade     int
	Seq       int
	Schools   map[string]bool
	Err       error
}

// Describe implements the logging helper.
func (m GradeSchoolsLoadedMsg) Describe() string {
	return fmt.Sprintf(`grade:%d seq:%d tagged:%d err:%v`, m.Grade, m.Seq, len(m.Schools), m.Err)
}

// PreviewLoadedMsg carries a resolved preview for the selection it was
// requested for.
type PreviewLoadedMsg struct {
	Component ComponentID
	Key       selection.Key
	Seq       int
	Result    preview.Result
	Err       error
}

// Describe implements the logging helper.
func (m PreviewLoadedMsg) Describe() string {
	if m.Err != nil {
		return fmt.Sprintf(`key:%q seq:%d err:%q`, m.Key, m.Seq, m.Err)
	}
	return fmt.Sprintf(`key:%q seq:%d units:%d missing:%d`, m.Key, m.Seq, len(m.Result.Units), m.Result.MissingCount)
}

// JobUpdateMsg is one snapshot from a running merge job.
type JobUpdateMsg struct {
	Component ComponentID
	Job       merge.Job
	Handle    *merge.Handle
}

// Describe implements the logging helper.
func (m JobUpdateMsg) Describe() string {
	return fmt.Sprintf(`job:%s slot:%q state:%s progress:%.0f%%`, short(m.Job), m.Job.Request.Label(), m.Job.State, m.Job.Progress*100)
}

// JobFinishedMsg is the terminal outcome of a merge job, after the download
// was written.
type JobFinishedMsg struct {
	Component ComponentID
	Result    merge.Result
	Path      string
}

// Describe implements the logging helper.
func (m JobFinishedMsg) Describe() string {
	j := m.Result.Job
	if j.Err != nil {
		return fmt.Sprintf(`job:%s state:%s err:%q`, short(j), j.State, j.Err)
	}
	return fmt.Sprintf(`job:%s state:%s path:%q`, short(j), j.State, m.Path)
}

// ReloadDoneMsg reports a server reload followed by a catalog refresh.
type ReloadDoneMsg struct {
	Component ComponentID
	Seq       int
	Entries   []catalog.Entry
	Err       error
}

// Describe implements the logging helper.
func (m ReloadDoneMsg) Describe() string {
	if m.Err != nil {
		return fmt.Sprintf(`seq:%d err:%q`, m.Seq, m.Err)
	}
	return fmt.Sprintf(`seq:%d rows:%d`, m.Seq, len(m.Entries))
}

func short(j merge.Job) string {
	id := j.ID.String()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
