// Package notify is the boundary to the notification layer. Events describe
// lifecycle changes other services may want to render (badges, toasts, mail);
// delivery is strictly best-effort and never affects the state change that
// produced the event.
package notify

import (
	"context"
	"log/slog"
)

// Event kinds.
const (
	ConnectionRequested = "connection.requested"
	ConnectionAccepted  = "connection.accepted"
	ConnectionBlocked   = "connection.blocked"
	ShareCreated        = "share.created"
	ShareUpdated        = "share.updated"
	ShareRevoked        = "share.revoked"
	GrantAccepted       = "grant.accepted"
	GrantDeclined       = "grant.declined"
)

// Event is one lifecycle notification. ActorID is the user who caused the
// change; SubjectID is the user it concerns (recipient, blocked party) and
// may be empty for broadcast-style events.
type Event struct {
	Kind      string
	ActorID   string
	SubjectID string
	ItemID    string
	ItemType  string
}

// Notifier delivers lifecycle events. Implementations must not block the
// caller and must swallow their own failures.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// LogNotifier writes events to the structured log. It stands in for a real
// delivery backend and doubles as an audit trail.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, e Event) {
	n.log.InfoContext(ctx, "notify",
		"kind", e.Kind,
		"actor_id", e.ActorID,
		"subject_id", e.SubjectID,
		"item_id", e.ItemID,
		"item_type", e.ItemType,
	)
}

// Async wraps a Notifier so delivery happens on its own goroutine, detached
// from the request context. Panics in the wrapped notifier are contained.
func Async(n Notifier) Notifier {
	return asyncNotifier{inner: n}
}

type asyncNotifier struct {
	inner Notifier
}

func (a asyncNotifier) Notify(_ context.Context, e Event) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("notifier panic", "kind", e.Kind, "panic", r)
			}
		}()
		a.inner.Notify(context.Background(), e)
	}()
}
