package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/blindclock/go/internal/dbconfig"
	"github.com/mcdev12/blindclock/go/internal/exchange"
	"github.com/mcdev12/blindclock/go/internal/models"
	"github.com/mcdev12/blindclock/go/internal/store/pgstore"
)

// Loads full-state backup files into the Postgres tournaments table.
//
//	go run ./go/internal/tools/import_backups [-replace] <file or dir>...
func main() {
	replace := flag.Bool("replace", false, "overwrite tournaments that already exist")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: import_backups [-replace] <file or dir>...")
		os.Exit(2)
	}
	ctx := context.Background()

	// 1) Collect backup files
	files, err := collect(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "collect files: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, pgstore.Schema); err != nil {
		fmt.Fprintf(os.Stderr, "apply schema: %v\n", err)
		os.Exit(1)
	}

	// 3) Upsert and count
	query := insertTournament + ` ON CONFLICT (id) DO NOTHING`
	if *replace {
		query = insertTournament + ` ON CONFLICT (id) DO UPDATE SET
              name = EXCLUDED.name, status = EXCLUDED.status, created_at = EXCLUDED.created_at,
              players = EXCLUDED.players, blind_structure = EXCLUDED.blind_structure,
              breaks = EXCLUDED.breaks, current_level_index = EXCLUDED.current_level_index,
              time_remaining = EXCLUDED.time_remaining, last_tick_at = EXCLUDED.last_tick_at`
	}

	var (
		total    = len(files)
		inserted int
		skipped  int
		errs     int
	)

	for _, path := range files {
		t, err := readBackup(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
			errs++
			continue
		}
		args, err := insertArgs(t)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error encoding %s: %v\n", path, err)
			errs++
			continue
		}

		cmdTag, err := pool.Exec(ctx, query, args...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting tournament %s: %v\n", t.ID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Backup import complete: %d total, %d written, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
	if errs > 0 {
		os.Exit(1)
	}
}

const insertTournament = `
            INSERT INTO tournaments (
              id, name, status, created_at, players, blind_structure, breaks,
              current_level_index, time_remaining, last_tick_at
            ) VALUES (
              $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
            )`

// collect expands directories to the .json files directly inside them.
func collect(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.json"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

func readBackup(path string) (*models.Tournament, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return exchange.ImportBackup(data)
}

func insertArgs(t *models.Tournament) ([]any, error) {
	players, err := json.Marshal(t.Players)
	if err != nil {
		return nil, err
	}
	structure, err := json.Marshal(t.BlindStructure)
	if err != nil {
		return nil, err
	}
	breaks, err := json.Marshal(t.Breaks)
	if err != nil {
		return nil, err
	}

	var lastTickAt any
	if !t.LastTickAt.IsZero() {
		lastTickAt = t.LastTickAt
	}
	return []any{
		t.ID, t.Name, string(t.Status), t.CreatedAt, string(players), string(structure), string(breaks),
		t.CurrentLevelIndex, t.TimeRemaining, lastTickAt,
	}, nil
}
