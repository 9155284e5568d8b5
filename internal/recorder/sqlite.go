package recorder

import (
	"fmt"
	"log"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"GoldSentinel/internal/model"
)

// SQLiteRecorder persists cycle history to a SQLite database.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			stage       TEXT NOT NULL,
			price       REAL,
			levels      TEXT,
			signal      TEXT,
			pattern     TEXT,
			short_bias  TEXT,
			long_bias   TEXT,
			error       TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT,
			signal      TEXT,
			entry       REAL,
			stop_loss   REAL,
			take_profit REAL,
			lot_size    REAL,
			levels      TEXT,
			session     TEXT,
			delivered   BOOLEAN
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// RecordCycle stores the cycle and, if one was built, its alert.
func (r *SQLiteRecorder) RecordCycle(res *model.CycleResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExec(`INSERT INTO cycles
		(id, timestamp, stage, price, levels, signal, pattern, short_bias, long_bias, error, duration_ms)
		VALUES (:id, :timestamp, :stage, :price, :levels, :signal, :pattern, :short_bias, :long_bias, :error, :duration_ms)`,
		newCycleRow(res)); err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	if res.Alert != nil {
		if _, err := tx.NamedExec(`INSERT INTO alerts
			(cycle_id, timestamp, symbol, signal, entry, stop_loss, take_profit, lot_size, levels, session, delivered)
			VALUES (:cycle_id, :timestamp, :symbol, :signal, :entry, :stop_loss, :take_profit, :lot_size, :levels, :session, :delivered)`,
			newAlertRow(res)); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}
	return tx.Commit()
}

// RecentAlerts returns up to limit alerts, newest first.
func (r *SQLiteRecorder) RecentAlerts(limit int) ([]AlertRow, error) {
	var rows []AlertRow
	err := r.db.Select(&rows, `SELECT cycle_id, timestamp, symbol, signal, entry, stop_loss, take_profit,
		lot_size, levels, session, delivered FROM alerts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select alerts: %w", err)
	}
	return rows, nil
}

// CountCycles returns the number of recorded cycles with the given stage.
func (r *SQLiteRecorder) CountCycles(stage model.Stage) (int, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM cycles WHERE stage = ?`, string(stage)); err != nil {
		return 0, fmt.Errorf("count cycles: %w", err)
	}
	return n, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
