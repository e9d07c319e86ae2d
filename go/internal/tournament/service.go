package tournament

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/blindclock/go/internal/blinds"
	"github.com/mcdev12/blindclock/go/internal/exchange"
	"github.com/mcdev12/blindclock/go/internal/models"
	"github.com/mcdev12/blindclock/go/internal/store"
)

const ServiceName = "blindclock.v1.TournamentService"

const (
	CreateTournamentProcedure = "/" + ServiceName + "/CreateTournament"
	GetTournamentProcedure    = "/" + ServiceName + "/GetTournament"
	ListTournamentsProcedure  = "/" + ServiceName + "/ListTournaments"
	DeleteTournamentProcedure = "/" + ServiceName + "/DeleteTournament"
	ListPresetsProcedure      = "/" + ServiceName + "/ListPresets"
	ExportConfigProcedure     = "/" + ServiceName + "/ExportConfig"
	ImportConfigProcedure     = "/" + ServiceName + "/ImportConfig"
	ExportBackupProcedure     = "/" + ServiceName + "/ExportBackup"
	ImportBackupProcedure     = "/" + ServiceName + "/ImportBackup"
	CommandProcedure          = "/" + ServiceName + "/Command"
)

// TournamentApp defines what the service layer needs from the app layer
type TournamentApp interface {
	CreateTournament(ctx context.Context, req CreateTournamentRequest) (*models.Tournament, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
	DeleteTournament(ctx context.Context, id uuid.UUID) error
	Presets() []blinds.Preset
	ExportConfig(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	ImportConfig(ctx context.Context, data []byte) (*models.Tournament, error)
	ExportBackup(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	ImportBackup(ctx context.Context, data []byte) (*models.Tournament, error)
	Execute(ctx context.Context, id uuid.UUID, cmd Command) (*models.Tournament, bool, error)
}

// Service implements the TournamentService Connect procedures
type Service struct {
	app TournamentApp
}

// NewService creates a new tournament service
func NewService(app TournamentApp) *Service {
	return &Service{app: app}
}

// NewTournamentServiceHandler builds an HTTP handler for every procedure and
// returns the path it should be mounted on.
func NewTournamentServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateTournamentProcedure, connect.NewUnaryHandler(CreateTournamentProcedure, svc.CreateTournament, opts...))
	mux.Handle(GetTournamentProcedure, connect.NewUnaryHandler(GetTournamentProcedure, svc.GetTournament, opts...))
	mux.Handle(ListTournamentsProcedure, connect.NewUnaryHandler(ListTournamentsProcedure, svc.ListTournaments, opts...))
	mux.Handle(DeleteTournamentProcedure, connect.NewUnaryHandler(DeleteTournamentProcedure, svc.DeleteTournament, opts...))
	mux.Handle(ListPresetsProcedure, connect.NewUnaryHandler(ListPresetsProcedure, svc.ListPresets, opts...))
	mux.Handle(ExportConfigProcedure, connect.NewUnaryHandler(ExportConfigProcedure, svc.ExportConfig, opts...))
	mux.Handle(ImportConfigProcedure, connect.NewUnaryHandler(ImportConfigProcedure, svc.ImportConfig, opts...))
	mux.Handle(ExportBackupProcedure, connect.NewUnaryHandler(ExportBackupProcedure, svc.ExportBackup, opts...))
	mux.Handle(ImportBackupProcedure, connect.NewUnaryHandler(ImportBackupProcedure, svc.ImportBackup, opts...))
	mux.Handle(CommandProcedure, connect.NewUnaryHandler(CommandProcedure, svc.Command, opts...))
	return "/" + ServiceName + "/", mux
}

// CreateTournament creates a new tournament
func (s *Service) CreateTournament(ctx context.Context, req *connect.Request[CreateTournamentRequest]) (*connect.Response[TournamentResponse], error) {
	t, err := s.app.CreateTournament(ctx, *req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&TournamentResponse{Tournament: newView(t)}), nil
}

// GetTournament retrieves a tournament as of now
func (s *Service) GetTournament(ctx context.Context, req *connect.Request[GetTournamentRequest]) (*connect.Response[TournamentResponse], error) {
	id, err := parseID(req.Msg.TournamentID, "tournament id")
	if err != nil {
		return nil, err
	}
	t, err := s.app.GetTournament(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&TournamentResponse{Tournament: newView(t)}), nil
}

// ListTournaments lists every tournament
func (s *Service) ListTournaments(ctx context.Context, req *connect.Request[ListTournamentsRequest]) (*connect.Response[ListTournamentsResponse], error) {
	all, err := s.app.ListTournaments(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	views := make([]TournamentView, 0, len(all))
	for _, t := range all {
		views = append(views, newView(t))
	}
	return connect.NewResponse(&ListTournamentsResponse{Tournaments: views}), nil
}

// DeleteTournament deletes a tournament
func (s *Service) DeleteTournament(ctx context.Context, req *connect.Request[DeleteTournamentRequest]) (*connect.Response[DeleteTournamentResponse], error) {
	id, err := parseID(req.Msg.TournamentID, "tournament id")
	if err != nil {
		return nil, err
	}
	if err := s.app.DeleteTournament(ctx, id); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteTournamentResponse{}), nil
}

// ListPresets lists the blind presets
func (s *Service) ListPresets(ctx context.Context, req *connect.Request[ListPresetsRequest]) (*connect.Response[ListPresetsResponse], error) {
	return connect.NewResponse(&ListPresetsResponse{Presets: s.app.Presets()}), nil
}

// ExportConfig exports a tournament's reusable configuration
func (s *Service) ExportConfig(ctx context.Context, req *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error) {
	return s.export(ctx, req.Msg, s.app.ExportConfig)
}

// ExportBackup exports a tournament's full state
func (s *Service) ExportBackup(ctx context.Context, req *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error) {
	return s.export(ctx, req.Msg, s.app.ExportBackup)
}

func (s *Service) export(ctx context.Context, msg *ExportRequest, fn func(context.Context, uuid.UUID) ([]byte, string, error)) (*connect.Response[ExportResponse], error) {
	id, err := parseID(msg.TournamentID, "tournament id")
	if err != nil {
		return nil, err
	}
	data, name, err := fn(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ExportResponse{FileName: name, Document: data}), nil
}

// ImportConfig creates a tournament from a configuration document
func (s *Service) ImportConfig(ctx context.Context, req *connect.Request[ImportRequest]) (*connect.Response[TournamentResponse], error) {
	t, err := s.app.ImportConfig(ctx, document(req.Msg.Document))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&TournamentResponse{Tournament: newView(t)}), nil
}

// ImportBackup restores a tournament from a full backup
func (s *Service) ImportBackup(ctx context.Context, req *connect.Request[ImportRequest]) (*connect.Response[TournamentResponse], error) {
	t, err := s.app.ImportBackup(ctx, document(req.Msg.Document))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&TournamentResponse{Tournament: newView(t)}), nil
}

// Command runs one clock or roster command
func (s *Service) Command(ctx context.Context, req *connect.Request[CommandRequest]) (*connect.Response[CommandResponse], error) {
	msg := req.Msg
	id, err := parseID(msg.TournamentID, "tournament id")
	if err != nil {
		return nil, err
	}

	cmd := Command{
		Name:       msg.Command,
		Seconds:    msg.Seconds,
		LevelIndex: msg.LevelIndex,
		PlayerName: msg.Name,
	}
	switch msg.Command {
	case CommandBust, CommandUnbust, CommandRemovePlayer, CommandRenamePlayer:
		if cmd.PlayerID, err = parseID(msg.PlayerID, "player id"); err != nil {
			return nil, err
		}
	}

	t, changed, err := s.app.Execute(ctx, id, cmd)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CommandResponse{Tournament: newView(t), Changed: changed}), nil
}

// document accepts the file either inline or as the text of a file read by
// the client.
func document(raw json.RawMessage) []byte {
	var text string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &text) == nil {
		return []byte(text)
	}
	return raw
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid %s: %w", what, err))
	}
	return id, nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, exchange.ErrInvalidImport),
		errors.Is(err, models.ErrInvalidStructure),
		errors.Is(err, blinds.ErrUnknownPreset):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
