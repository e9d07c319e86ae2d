package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncodesPayload(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 2, 2, 20, 0, 0, 0, time.UTC)

	ev, err := New(id, EventTypeTimeAdjusted, TimeAdjustedPayload{
		TournamentID:  id.String(),
		DeltaSeconds:  -60,
		TimeRemaining: 540,
		AdjustedAt:    at,
	}, at)
	require.NoError(t, err)

	assert.Equal(t, id, ev.TournamentID)
	assert.NotEqual(t, uuid.Nil, ev.ID)

	var got TimeAdjustedPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &got))
	assert.Equal(t, -60, got.DeltaSeconds)
	assert.Equal(t, 540, got.TimeRemaining)
}

func TestEnvelopeAndSubject(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 2, 2, 20, 0, 0, 0, time.UTC)
	ev, err := New(id, EventTypePlayerBusted, PlayerPayload{TournamentID: id.String(), PlayerName: "Ann"}, at)
	require.NoError(t, err)

	assert.Equal(t, "tournament.events."+id.String()+".PlayerBusted", subjectFor("tournament.events", ev))

	data, err := encodeEnvelope(ev)
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, ev.ID.String(), env["eventId"])
	assert.Equal(t, "PlayerBusted", env["eventType"])
	assert.Equal(t, id.String(), env["tournamentId"])
	payload, ok := env["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ann", payload["player_name"])
}
