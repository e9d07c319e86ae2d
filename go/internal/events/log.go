package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogPublisher writes events to the global logger. Used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Str("tournament_id", event.TournamentID.String()).
		RawJSON("payload", event.Payload).
		Msg("tournament event")
	return nil
}
