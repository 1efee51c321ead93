package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"daybias/pkg/model"
)

// Journal persists emitted forecasts to a SQLite database. The engine
// itself stays stateless; the journal only records its outputs.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Entry is one recorded forecast summary row.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Symbol    string    `json:"symbol"`
	Bias      string    `json:"bias"`
	Direction string    `json:"direction"`
	Strength  int       `json:"strength"`
	Headline  string    `json:"headline"`
}

// Open opens (or creates) the journal database and runs migrations.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers (journal listing) don't block writers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("forecast journal opened: %s", dbPath)
	return j, nil
}

func (j *Journal) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecasts (
			id             TEXT PRIMARY KEY,
			created_at     INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			bias           TEXT NOT NULL,
			direction      TEXT NOT NULL,
			strength       INTEGER NOT NULL,
			confluence     INTEGER NOT NULL,
			headline       TEXT,
			recommendation TEXT,
			payload        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_ts ON forecasts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_symbol ON forecasts(symbol)`,
	}

	for _, s := range stmts {
		if _, err := j.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Record stores one forecast and returns its assigned ID. The full
// result is kept as JSON alongside the indexed summary columns.
func (j *Journal) Record(res *model.ForecastResult) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal forecast: %w", err)
	}

	id := uuid.NewString()
	_, err = j.db.Exec(`INSERT INTO forecasts
		(id, created_at, symbol, bias, direction, strength, confluence, headline, recommendation, payload)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		id, time.Now().Unix(), res.Symbol, res.Bias, res.Direction,
		res.Strength, res.Confluence, res.Headline, res.Recommendation,
		string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert forecast: %w", err)
	}
	return id, nil
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(`SELECT id, created_at, symbol, bias, direction, strength, headline
		FROM forecasts ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &ts, &e.Symbol, &e.Bias, &e.Direction, &e.Strength, &e.Headline); err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get loads one full forecast by ID.
func (j *Journal) Get(id string) (*model.ForecastResult, error) {
	var payload string
	err := j.db.QueryRow(`SELECT payload FROM forecasts WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("forecast %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query forecast: %w", err)
	}

	var res model.ForecastResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("unmarshal forecast %s: %w", id, err)
	}
	return &res, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
