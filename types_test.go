package site2pdf

// Notes:
// - JobState: we test the full transition matrix since CanTransitionTo is
//   what the registry relies on to keep snapshots monotonic.
// - Job builders: we test that With* methods return copies and leave the
//   receiver untouched.
// - TOCNode: Flatten order and Count on small hand-built trees.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

// ---------------------------------------------------------------------------
// TestJobState - Terminal states and transitions
// ---------------------------------------------------------------------------

func TestJobState_IsTerminal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state JobState
		want  bool
	}{
		{StatePending, false},
		{StateRunning, false},
		{StateCompleted, true},
		{StateFailed, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			t.Parallel()
			if got := tt.state.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobState_CanTransitionTo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		from, to JobState
		want     bool
	}{
		{"", StatePending, true},
		{"", StateFailed, true},
		{StatePending, StatePending, true},
		{StatePending, StateRunning, true},
		{StatePending, StateFailed, true},
		{StateRunning, StateRunning, true},
		{StateRunning, StateCompleted, true},
		{StateRunning, StateFailed, true},
		{StateRunning, StatePending, false},
		{StateCompleted, StateRunning, false},
		{StateCompleted, StateFailed, false},
		{StateCompleted, StateCompleted, false},
		{StateFailed, StateRunning, false},
		{StateFailed, StateCompleted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%q.CanTransitionTo(%q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestJob - Snapshot builders
// ---------------------------------------------------------------------------

func TestNewJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j := NewJob("id-1", "https://docs.example.com", "Docs", now)

	if j.State != StatePending {
		t.Errorf("State = %q, want pending", j.State)
	}
	if !j.CreatedAt.Equal(now) || !j.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v/%v, want %v", j.CreatedAt, j.UpdatedAt, now)
	}
	if j.PagesTotal != 0 || j.PagesRendered != 0 {
		t.Errorf("counters = %d/%d, want 0/0", j.PagesRendered, j.PagesTotal)
	}
	if j.Error() != "" || j.Output() != "" {
		t.Errorf("Error/Output = %q/%q, want empty", j.Error(), j.Output())
	}
}

func TestJob_BuildersCopy(t *testing.T) {
	t.Parallel()

	base := NewJob("id", "https://docs.example.com", "", time.Now())
	running := base.WithState(StateRunning).WithProgress(4, 1)
	done := running.WithState(StateCompleted).WithOutput("/tmp/book.pdf").WithError("1 of 4 pages failed")

	if base.State != StatePending || base.PagesTotal != 0 {
		t.Errorf("base mutated: %+v", base)
	}
	if running.Output() != "" || running.Error() != "" {
		t.Errorf("running mutated: %+v", running)
	}
	if done.Output() != "/tmp/book.pdf" {
		t.Errorf("Output() = %q", done.Output())
	}
	if done.Error() != "1 of 4 pages failed" {
		t.Errorf("Error() = %q", done.Error())
	}
	if done.PagesTotal != 4 || done.PagesRendered != 1 {
		t.Errorf("counters = %d/%d", done.PagesRendered, done.PagesTotal)
	}
}

func TestJob_Failed(t *testing.T) {
	t.Parallel()

	j := NewJob("id", "u", "", time.Now()).WithState(StateRunning).Failed("boom")
	if j.State != StateFailed || j.Error() != "boom" {
		t.Errorf("Failed() = %+v", j)
	}
}

func TestJob_JSON(t *testing.T) {
	t.Parallel()

	j := NewJob("id", "https://docs.example.com", "", time.Now()).WithProgress(3, 2)
	data, err := json.Marshal(j)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, key := range []string{`"pagesTotal":3`, `"pagesRendered":2`, `"state":"pending"`} {
		if !strings.Contains(s, key) {
			t.Errorf("JSON %s should contain %s", s, key)
		}
	}
	for _, key := range []string{"errorMessage", "outputFilePath"} {
		if strings.Contains(s, key) {
			t.Errorf("JSON %s should omit empty %s", s, key)
		}
	}
}

// ---------------------------------------------------------------------------
// TestTOCNode - Tree traversal
// ---------------------------------------------------------------------------

func TestTOCNode_Flatten(t *testing.T) {
	t.Parallel()

	root := &TOCNode{
		Title: "Home",
		URL:   mustURL(t, "https://docs.example.com/"),
		Children: []*TOCNode{
			{
				Title: "Guide",
				URL:   mustURL(t, "https://docs.example.com/guide"),
				Children: []*TOCNode{
					{Title: "Install", URL: mustURL(t, "https://docs.example.com/guide/install")},
				},
			},
			{Title: "Section without link"},
			{Title: "API", URL: mustURL(t, "https://docs.example.com/api")},
		},
	}

	got := root.Flatten()
	want := []string{
		"https://docs.example.com/",
		"https://docs.example.com/guide",
		"https://docs.example.com/guide/install",
		"https://docs.example.com/api",
	}
	if len(got) != len(want) {
		t.Fatalf("Flatten() returned %d URLs, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("Flatten()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if n := root.Count(); n != 5 {
		t.Errorf("Count() = %d, want 5", n)
	}
}

func TestTOCNode_Nil(t *testing.T) {
	t.Parallel()

	var n *TOCNode
	if n.Flatten() != nil {
		t.Error("nil Flatten() should be nil")
	}
	if n.Count() != 0 {
		t.Error("nil Count() should be 0")
	}
}
