package decisionlog

import (
	"context"
	"time"
)

// Store defines persistence operations for decision log entries.
type Store interface {
	// CreateEntry persists a decision record.
	CreateEntry(ctx context.Context, e *Entry) error

	// ListEntries returns entries matching the filter, newest first.
	ListEntries(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// DeleteEntriesBefore prunes entries older than the cutoff and returns
	// the number removed.
	DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
