package site2pdf

import (
	"net/url"
	"time"
)

// JobState is the lifecycle state of a conversion job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s JobState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle
// monotonic: Pending -> Running -> {Completed | Failed}. Staying in the same
// non-terminal state is allowed so progress snapshots can be replaced.
func (s JobState) CanTransitionTo(next JobState) bool {
	if s == "" {
		return true
	}
	switch s {
	case StatePending:
		return true
	case StateRunning:
		return next != StatePending
	default:
		return false
	}
}

// Job is an immutable snapshot of a conversion job. Every update produces a
// new value that replaces the previous one in the JobRegistry.
type Job struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title,omitempty"`
	State          JobState  `json:"state"`
	PagesTotal     int       `json:"pagesTotal"`
	PagesRendered  int       `json:"pagesRendered"`
	ErrorMessage   *string   `json:"errorMessage,omitempty"`
	OutputFilePath *string   `json:"outputFilePath,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewJob returns the Pending snapshot for a freshly created job.
func NewJob(id, rawURL, title string, now time.Time) Job {
	return Job{
		ID:        id,
		URL:       rawURL,
		Title:     title,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithState returns a copy with the state replaced.
func (j Job) WithState(s JobState) Job {
	j.State = s
	return j
}

// WithProgress returns a copy with the page counters replaced.
func (j Job) WithProgress(total, rendered int) Job {
	j.PagesTotal = total
	j.PagesRendered = rendered
	return j
}

// WithError returns a copy carrying msg as its error message.
func (j Job) WithError(msg string) Job {
	j.ErrorMessage = &msg
	return j
}

// WithOutput returns a copy pointing at the merged output file.
func (j Job) WithOutput(path string) Job {
	j.OutputFilePath = &path
	return j
}

// Failed returns the terminal failure snapshot for msg.
func (j Job) Failed(msg string) Job {
	return j.WithState(StateFailed).WithError(msg)
}

// Error returns the error message or "".
func (j Job) Error() string {
	if j.ErrorMessage == nil {
		return ""
	}
	return *j.ErrorMessage
}

// Output returns the output path or "".
func (j Job) Output() string {
	if j.OutputFilePath == nil {
		return ""
	}
	return *j.OutputFilePath
}

// TOCNode is one entry of the inferred table of contents.
type TOCNode struct {
	Title    string     `json:"title"`
	URL      *url.URL   `json:"-"`
	Children []*TOCNode `json:"children,omitempty"`
}

// Flatten returns every URL in the tree in pre-order, root first.
func (n *TOCNode) Flatten() []*url.URL {
	if n == nil {
		return nil
	}
	var out []*url.URL
	stack := []*TOCNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.URL != nil {
			out = append(out, cur.URL)
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return out
}

// Count returns the number of nodes in the tree.
func (n *TOCNode) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// SaveResult describes the outcome of a cancel-and-save request.
type SaveResult struct {
	OutputPath    string `json:"outputPath"`
	PagesRendered int    `json:"pagesRendered"`
}
