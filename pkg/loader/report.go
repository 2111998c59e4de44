package loader

import "fmt"

// IssueKind classifies a dropped record.
type IssueKind string

const (
	IssueMalformed    IssueKind = "malformed"
	IssueMissingField IssueKind = "missing_field"
	IssueDuplicateID  IssueKind = "duplicate_id"
	IssueDanglingEdge IssueKind = "dangling_edge"
)

// Issue describes one data integrity problem recovered by dropping a record.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	ID     string    `json:"id,omitempty"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	if i.ID == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
	}
	return fmt.Sprintf("%s %s: %s", i.Kind, i.ID, i.Detail)
}

// Report collects the records dropped while loading a document.
type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) add(kind IssueKind, id, detail string) {
	r.Issues = append(r.Issues, Issue{Kind: kind, ID: id, Detail: detail})
}

// Count returns how many issues of kind were recorded.
func (r *Report) Count(kind IssueKind) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// Empty reports whether nothing was dropped.
func (r *Report) Empty() bool {
	return r == nil || len(r.Issues) == 0
}
