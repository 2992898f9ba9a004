package ports

import (
	"context"

	"github.com/parkingapp/auth-service/internal/core/domain"
)

// ActivityStore persists and queries audit-trail events.
type ActivityStore interface {
	InsertActivity(ctx context.Context, event *domain.ActivityEvent) error
	// ListActivity returns the most recent events, newest first.
	ListActivity(ctx context.Context, limit int64) ([]domain.ActivityEvent, error)
}

// ActivitySink accepts events for asynchronous recording. Emit must be
// non-blocking from the caller's point of view; dropped or delayed events
// are acceptable, failed logins are not worth failing a request over.
type ActivitySink interface {
	Emit(event domain.ActivityEvent)
}
