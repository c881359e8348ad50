package extender

import "time"

// EventType identifies what an Event reports
type EventType string

const (
	// EventStatus carries a human readable status line
	EventStatus EventType = "status"
	// EventFileProgress is the share of files handled so far
	EventFileProgress EventType = "file_progress"
	// EventItemProgress is the progress of the file being concatenated
	EventItemProgress EventType = "item_progress"
	// EventFinished is emitted once when the batch reaches a terminal state
	EventFinished EventType = "finished"
)

// Event is an immutable progress notification. Seq increases by one per emitted event in a run.
type Event struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Type      EventType `json:"type"`
	Index     int       `json:"index"` // zero-based file index, -1 when not file specific
	Total     int       `json:"total"`
	Path      string    `json:"path,omitempty"`
	Output    string    `json:"output,omitempty"` // set on the completion status of a file
	Text      string    `json:"text,omitempty"`
	Percent   int       `json:"percent"`
	Success   bool      `json:"success"`
}
