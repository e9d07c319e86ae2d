package tournament

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blindclock/go/internal/models"
)

func newTestServer(t *testing.T) (*fixture, *httptest.Server) {
	t.Helper()
	f := newFixture(t, 0)
	path, handler := NewTournamentServiceHandler(NewService(f.app))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func client[Req, Res any](srv *httptest.Server, procedure string) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](srv.Client(), srv.URL+procedure, connect.WithCodec(jsonCodec{}))
}

func TestServiceClockFlow(t *testing.T) {
	f, srv := newTestServer(t)
	ctx := context.Background()

	create := client[CreateTournamentRequest, TournamentResponse](srv, CreateTournamentProcedure)
	command := client[CommandRequest, CommandResponse](srv, CommandProcedure)
	get := client[GetTournamentRequest, TournamentResponse](srv, GetTournamentProcedure)

	created, err := create.CallUnary(ctx, connect.NewRequest(&CreateTournamentRequest{
		Name:    "Wire",
		Players: []string{"Ann", "Ben"},
		Levels: []models.BlindLevel{
			{SmallBlind: 1000, BigBlind: 2000, Ante: 300, Duration: 120},
			{SmallBlind: 2000, BigBlind: 4000, Ante: 500, Duration: 120},
		},
	}))
	require.NoError(t, err)
	view := created.Msg.Tournament
	require.NotNil(t, view.Tournament)
	assert.Equal(t, "1,000/2,000 (Ante: 300)", view.Blinds)
	assert.Equal(t, "02:00", view.Clock)
	assert.Equal(t, 2, view.ActivePlayers)
	require.NotNil(t, view.NextLevel)
	assert.Equal(t, int64(4000), view.NextLevel.BigBlind)

	id := view.ID.String()
	res, err := command.CallUnary(ctx, connect.NewRequest(&CommandRequest{TournamentID: id, Command: CommandStart}))
	require.NoError(t, err)
	assert.True(t, res.Msg.Changed)
	assert.Equal(t, models.StatusRunning, res.Msg.Tournament.Status)

	f.clock.Advance(150 * time.Second)
	got, err := get.CallUnary(ctx, connect.NewRequest(&GetTournamentRequest{TournamentID: id}))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Msg.Tournament.CurrentLevelIndex)
	assert.Equal(t, 90, got.Msg.Tournament.TimeRemaining)
	assert.Nil(t, got.Msg.Tournament.NextLevel)

	ben := got.Msg.Tournament.Players[1].ID.String()
	res, err = command.CallUnary(ctx, connect.NewRequest(&CommandRequest{TournamentID: id, Command: CommandBust, PlayerID: ben}))
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, res.Msg.Tournament.Status)
	require.Len(t, res.Msg.Tournament.Leaderboard, 2)
	assert.Equal(t, "Ann", res.Msg.Tournament.Leaderboard[0].Name)
}

func TestServiceErrorCodes(t *testing.T) {
	_, srv := newTestServer(t)
	ctx := context.Background()

	get := client[GetTournamentRequest, TournamentResponse](srv, GetTournamentProcedure)
	command := client[CommandRequest, CommandResponse](srv, CommandProcedure)
	importConfig := client[ImportRequest, TournamentResponse](srv, ImportConfigProcedure)
	create := client[CreateTournamentRequest, TournamentResponse](srv, CreateTournamentProcedure)

	_, err := get.CallUnary(ctx, connect.NewRequest(&GetTournamentRequest{TournamentID: uuid.NewString()}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = get.CallUnary(ctx, connect.NewRequest(&GetTournamentRequest{TournamentID: "nope"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = importConfig.CallUnary(ctx, connect.NewRequest(&ImportRequest{Document: json.RawMessage(`{"players":["a"]}`)}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = create.CallUnary(ctx, connect.NewRequest(&CreateTournamentRequest{Preset: "glacial"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	created, err := create.CallUnary(ctx, connect.NewRequest(&CreateTournamentRequest{}))
	require.NoError(t, err)
	id := created.Msg.Tournament.ID.String()

	_, err = command.CallUnary(ctx, connect.NewRequest(&CommandRequest{TournamentID: id, Command: "shuffle"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = command.CallUnary(ctx, connect.NewRequest(&CommandRequest{TournamentID: id, Command: CommandBust}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestServiceExchange(t *testing.T) {
	_, srv := newTestServer(t)
	ctx := context.Background()

	create := client[CreateTournamentRequest, TournamentResponse](srv, CreateTournamentProcedure)
	exportConfig := client[ExportRequest, ExportResponse](srv, ExportConfigProcedure)
	importConfig := client[ImportRequest, TournamentResponse](srv, ImportConfigProcedure)
	list := client[ListTournamentsRequest, ListTournamentsResponse](srv, ListTournamentsProcedure)
	presets := client[ListPresetsRequest, ListPresetsResponse](srv, ListPresetsProcedure)

	created, err := create.CallUnary(ctx, connect.NewRequest(&CreateTournamentRequest{Name: "Club Night", Preset: "turbo"}))
	require.NoError(t, err)

	exported, err := exportConfig.CallUnary(ctx, connect.NewRequest(&ExportRequest{TournamentID: created.Msg.Tournament.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, "club-night-config.json", exported.Msg.FileName)

	// documents may also arrive as the raw text of the exported file
	text, err := json.Marshal(string(exported.Msg.Document))
	require.NoError(t, err)
	imported, err := importConfig.CallUnary(ctx, connect.NewRequest(&ImportRequest{Document: text}))
	require.NoError(t, err)
	assert.Equal(t, "Club Night", imported.Msg.Tournament.Name)
	assert.Equal(t, "turbo", imported.Msg.Tournament.BlindStructure.Type)

	all, err := list.CallUnary(ctx, connect.NewRequest(&ListTournamentsRequest{}))
	require.NoError(t, err)
	assert.Len(t, all.Msg.Tournaments, 2)

	ps, err := presets.CallUnary(ctx, connect.NewRequest(&ListPresetsRequest{}))
	require.NoError(t, err)
	assert.Len(t, ps.Msg.Presets, 4)
}
