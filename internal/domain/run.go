package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunTimestampLayout names the output artifact of a run.
const RunTimestampLayout = "2006-01-02_15-04-05"

// Run identifies one end-to-end execution. It is created once and never mutated.
type Run struct {
	ID        string
	StartedAt time.Time
}

// NewRun starts a run at the given time.
func NewRun(startedAt time.Time) Run {
	return Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
	}
}

// Timestamp is the start time formatted for file names.
func (r Run) Timestamp() string {
	return r.StartedAt.Format(RunTimestampLayout)
}

// ShortID is the leading part of the run ID used in artifact names.
func (r Run) ShortID() string {
	const size = 8
	id := strings.ReplaceAll(r.ID, "-", "")
	if len(id) > size {
		return id[:size]
	}
	return id
}
