package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cardroom/engine"
)

const defaultLocalDBName = "cardroom_local.db"

type SQLiteService struct {
	db *sql.DB
}

func NewSQLiteServiceFromEnv() (*SQLiteService, error) {
	dbPath := strings.TrimSpace(os.Getenv("STORE_SQLITE_PATH"))
	if dbPath == "" {
		dbPath = defaultLocalDBName
	}
	return NewSQLiteService(dbPath)
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// modernc sqlite is single-writer; serialize through one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteService{db: db}, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS table_state (
    table_id TEXT PRIMARY KEY,
    hand_count INTEGER NOT NULL,
    state_json TEXT NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS hand_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    table_id TEXT NOT NULL,
    hand_id TEXT NOT NULL,
    ended_at_ms INTEGER NOT NULL,
    result_json TEXT NOT NULL,
    state_json TEXT NOT NULL DEFAULT '',
    UNIQUE (table_id, hand_id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_hand_history_recent ON hand_history(table_id, ended_at_ms DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) SaveState(ctx context.Context, tableID string, state engine.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO table_state (table_id, hand_count, state_json, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(table_id) DO UPDATE SET
    hand_count = excluded.hand_count,
    state_json = excluded.state_json,
    updated_at_ms = excluded.updated_at_ms`,
		tableID, state.HandCount, string(raw), time.Now().UnixMilli())
	return err
}

func (s *SQLiteService) LoadState(ctx context.Context, tableID string) (engine.State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state_json FROM table_state WHERE table_id = ?`, tableID).Scan(&raw)
	if err == sql.ErrNoRows {
		return engine.State{}, ErrNotFound
	}
	if err != nil {
		return engine.State{}, err
	}
	var state engine.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return engine.State{}, err
	}
	return state, nil
}

func (s *SQLiteService) DeleteState(ctx context.Context, tableID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM table_state WHERE table_id = ?`, tableID)
	return err
}

func (s *SQLiteService) SaveHandResult(
	ctx context.Context,
	tableID, handID string,
	endedAt time.Time,
	result engine.HandResult,
	final engine.State,
) error {
	resultRaw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	stateRaw, err := json.Marshal(final)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO hand_history (table_id, hand_id, ended_at_ms, result_json, state_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(table_id, hand_id) DO UPDATE SET
    ended_at_ms = excluded.ended_at_ms,
    result_json = excluded.result_json,
    state_json = excluded.state_json`,
		tableID, handID, endedAt.UnixMilli(), string(resultRaw), string(stateRaw))
	return err
}

func (s *SQLiteService) ListHandResults(ctx context.Context, tableID string, limit int) ([]StoredHand, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT hand_id, ended_at_ms, result_json, state_json
FROM hand_history
WHERE table_id = ?
ORDER BY ended_at_ms DESC
LIMIT ?`, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredHand
	for rows.Next() {
		var (
			handID  string
			endedMs int64
			resJSON string
			stJSON  string
		)
		if err := rows.Scan(&handID, &endedMs, &resJSON, &stJSON); err != nil {
			return nil, err
		}
		item := StoredHand{
			TableID: tableID,
			HandID:  handID,
			EndedAt: time.UnixMilli(endedMs),
		}
		if err := json.Unmarshal([]byte(resJSON), &item.Result); err != nil {
			return nil, err
		}
		if stJSON != "" {
			var st engine.State
			if err := json.Unmarshal([]byte(stJSON), &st); err != nil {
				return nil, err
			}
			item.State = &st
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
