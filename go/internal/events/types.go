package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a domain event emitted after a tournament mutation commits.
type Event struct {
	ID           uuid.UUID
	TournamentID uuid.UUID
	EventType    string
	Payload      []byte
	CreatedAt    time.Time
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// New encodes payload into an event for the tournament.
func New(tournamentID uuid.UUID, eventType string, payload any, at time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		EventType:    eventType,
		Payload:      data,
		CreatedAt:    at,
	}, nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
