package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Event is one row change. Topic decides who receives it.
type Event struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Table      string    `json:"table"`
	Action     Action    `json:"action"`
	Type       string    `json:"type"`
	Record     any       `json:"record"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher accepts change events. Delivery is best effort and unordered
// beyond the order in which a single caller publishes.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Topic builds the "<table>:<column>=<value>" name subscribers filter on.
func Topic(table, column string, value any) string {
	return fmt.Sprintf("%s:%s=%v", table, column, value)
}

// NewEvent stamps a fresh id and timestamp.
func NewEvent(topic, table string, action Action, typ string, record any) Event {
	return Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		Table:      table,
		Action:     action,
		Type:       typ,
		Record:     record,
		OccurredAt: time.Now().UTC(),
	}
}

const (
	TableGatherings     = "gatherings"
	TableParticipations = "participations"
	TableApplications   = "applications"
	TableReviews        = "reviews"
	TableComments       = "comments"
	TableLikes          = "likes"
	TableChatMessages   = "chat_messages"
	TableNotifications  = "notifications"
)

// GatheringsTopic carries every gathering-scoped lifecycle change.
const GatheringsTopic = TableGatherings
