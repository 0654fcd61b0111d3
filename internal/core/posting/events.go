package posting

import (
	"context"
	"time"
)

// EventType は求人ライフサイクルイベントの種類です。
type EventType string

const (
	EventCreated EventType = "posting.created"
	EventUpdated EventType = "posting.updated"
	EventDeleted EventType = "posting.deleted"
)

// Event はコミット後に通知される求人の変更です。
type Event struct {
	Type       EventType `json:"type"`
	PostingID  string    `json:"posting_id"`
	Kind       Kind      `json:"kind,omitempty"`
	Status     Status    `json:"status,omitempty"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher は求人イベントの配信先です。
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Logger は配信失敗などの記録に利用します。
type Logger interface {
	Warn(msg string, keysAndValues ...any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}
