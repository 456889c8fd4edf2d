package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/arashn/stockscan/internal/journal"
	"github.com/arashn/stockscan/internal/position"
)

const schema = `
CREATE TABLE IF NOT EXISTS known_symbols (
	symbol TEXT PRIMARY KEY,
	added_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS positions (
	id BIGINT PRIMARY KEY,
	symbol TEXT NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	quantity DOUBLE PRECISION NOT NULL,
	entry_value DOUBLE PRECISION NOT NULL,
	entry_time TIMESTAMPTZ NOT NULL,
	stop_loss_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	take_profit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	loss_threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	exit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	exit_time TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS positions_status_idx ON positions (status);
CREATE TABLE IF NOT EXISTS events (
	id BIGSERIAL PRIMARY KEY,
	time TIMESTAMPTZ NOT NULL,
	type TEXT NOT NULL,
	description TEXT NOT NULL,
	data JSONB
);
CREATE INDEX IF NOT EXISTS events_type_time_idx ON events (type, time);
`

// PostgresStorage implements Storage on Postgres.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgres opens the connection pool and ensures the schema exists.
func NewPostgres(connStr string, maxOpen, maxIdle int) (*PostgresStorage, error) {
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &PostgresStorage{db: conn}, nil
}

func (s *PostgresStorage) LoadKnownSymbols(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM known_symbols`)
	if err != nil {
		return nil, fmt.Errorf("failed to load known symbols: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("failed to scan known symbol: %w", err)
		}
		known[sym] = struct{}{}
	}
	return known, rows.Err()
}

// SaveKnownSymbols upserts every member of the set. The set only grows, so
// rows are never deleted here.
func (s *PostgresStorage) SaveKnownSymbols(ctx context.Context, symbols map[string]struct{}) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO known_symbols (symbol) VALUES ($1) ON CONFLICT (symbol) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare known-symbol insert: %w", err)
	}
	defer stmt.Close()

	for sym := range symbols {
		if _, err := stmt.ExecContext(ctx, sym); err != nil {
			return fmt.Errorf("failed to insert known symbol %s: %w", sym, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit known symbols: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SavePosition(ctx context.Context, p position.Position) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions
			(id, symbol, entry_price, quantity, entry_value, entry_time,
			 stop_loss_price, take_profit_price, loss_threshold, status, exit_price, exit_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.Symbol, p.EntryPrice, p.Quantity, p.EntryValue, p.EntryTime,
		p.StopLossPrice, p.TakeProfitPrice, p.LossThreshold, string(p.Status), p.ExitPrice, nullTime(p.ExitTime))
	if err != nil {
		return fmt.Errorf("failed to save position %d: %w", p.ID, err)
	}
	return nil
}

// UpdatePosition rewrites only the exit fields; entry fields are immutable
// once the row exists.
func (s *PostgresStorage) UpdatePosition(ctx context.Context, p position.Position) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE positions SET status = $2, exit_price = $3, exit_time = $4 WHERE id = $1`,
		p.ID, string(p.Status), p.ExitPrice, nullTime(p.ExitTime))
	if err != nil {
		return fmt.Errorf("failed to update position %d: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("position %d not found", p.ID)
	}
	return nil
}

func (s *PostgresStorage) OpenPositions(ctx context.Context) ([]position.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, entry_price, quantity, entry_value, entry_time,
		       stop_loss_price, take_profit_price, loss_threshold, status, exit_price, exit_time
		FROM positions WHERE status = $1`, string(position.StatusOpen))
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions: %w", err)
	}
	defer rows.Close()

	var out []position.Position
	for rows.Next() {
		var p position.Position
		var status string
		var exitTime sql.NullTime
		if err := rows.Scan(&p.ID, &p.Symbol, &p.EntryPrice, &p.Quantity, &p.EntryValue, &p.EntryTime,
			&p.StopLossPrice, &p.TakeProfitPrice, &p.LossThreshold, &status, &p.ExitPrice, &exitTime); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Status = position.Status(status)
		if exitTime.Valid {
			p.ExitTime = exitTime.Time
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) LogEvent(ctx context.Context, event journal.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (time, type, description, data) VALUES ($1,$2,$3,$4)`,
		event.Time, event.Type, event.Description, data)
	if err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Events(ctx context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time, type, description, data FROM events
		WHERE ($1 = '' OR type = $1) AND time BETWEEN $2 AND $3
		ORDER BY time`, eventType, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []journal.Event
	for rows.Next() {
		var e journal.Event
		var data []byte
		if err := rows.Scan(&e.Time, &e.Type, &e.Description, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &e.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) Close() error { return s.db.Close() }

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
