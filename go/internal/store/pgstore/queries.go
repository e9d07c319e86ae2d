package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// tournamentRow mirrors the tournaments table.
type tournamentRow struct {
	ID                uuid.UUID
	Name              string
	Status            string
	CreatedAt         time.Time
	Players           []byte
	BlindStructure    []byte
	Breaks            pqtype.NullRawMessage
	CurrentLevelIndex int32
	TimeRemaining     int32
	LastTickAt        sql.NullTime
}

const tournamentColumns = `id, name, status, created_at, players, blind_structure, breaks,
       current_level_index, time_remaining, last_tick_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(s rowScanner) (tournamentRow, error) {
	var r tournamentRow
	err := s.Scan(
		&r.ID,
		&r.Name,
		&r.Status,
		&r.CreatedAt,
		&r.Players,
		&r.BlindStructure,
		&r.Breaks,
		&r.CurrentLevelIndex,
		&r.TimeRemaining,
		&r.LastTickAt,
	)
	if r.Breaks.Valid {
		// the driver may reuse the scan buffer
		r.Breaks.RawMessage = append(json.RawMessage(nil), r.Breaks.RawMessage...)
	}
	return r, err
}

const listTournaments = `SELECT ` + tournamentColumns + `
FROM tournaments
ORDER BY created_at, id`

func (q *Queries) ListTournaments(ctx context.Context) ([]tournamentRow, error) {
	rows, err := q.db.QueryContext(ctx, listTournaments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []tournamentRow
	for rows.Next() {
		r, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTournament = `SELECT ` + tournamentColumns + `
FROM tournaments
WHERE id = $1`

func (q *Queries) GetTournament(ctx context.Context, id uuid.UUID) (tournamentRow, error) {
	return scanTournament(q.db.QueryRowContext(ctx, getTournament, id))
}

const getTournamentForUpdate = getTournament + `
FOR UPDATE`

func (q *Queries) GetTournamentForUpdate(ctx context.Context, id uuid.UUID) (tournamentRow, error) {
	return scanTournament(q.db.QueryRowContext(ctx, getTournamentForUpdate, id))
}

const upsertTournament = `INSERT INTO tournaments (
    ` + tournamentColumns + `
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    status = EXCLUDED.status,
    created_at = EXCLUDED.created_at,
    players = EXCLUDED.players,
    blind_structure = EXCLUDED.blind_structure,
    breaks = EXCLUDED.breaks,
    current_level_index = EXCLUDED.current_level_index,
    time_remaining = EXCLUDED.time_remaining,
    last_tick_at = EXCLUDED.last_tick_at`

func (q *Queries) UpsertTournament(ctx context.Context, r tournamentRow) error {
	_, err := q.db.ExecContext(ctx, upsertTournament,
		r.ID,
		r.Name,
		r.Status,
		r.CreatedAt,
		string(r.Players),
		string(r.BlindStructure),
		r.Breaks,
		r.CurrentLevelIndex,
		r.TimeRemaining,
		r.LastTickAt,
	)
	return err
}

const deleteTournament = `DELETE FROM tournaments WHERE id = $1`

func (q *Queries) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deleteTournament, id)
	return err
}

const deleteAllTournaments = `DELETE FROM tournaments`

func (q *Queries) DeleteAllTournaments(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTournaments)
	return err
}
