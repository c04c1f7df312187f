package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bankfeeds/branchsync/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs local
// runs and tests; the schema carries a UNIQUE constraint on ifsc so even
// a misused concurrent writer cannot duplicate a branch.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path, configures WAL
// mode, and applies the schema.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS branches (
	id       TEXT PRIMARY KEY,
	bank     TEXT NOT NULL DEFAULT '',
	ifsc     TEXT NOT NULL UNIQUE,
	branch   TEXT NOT NULL DEFAULT '',
	address  TEXT NOT NULL DEFAULT '',
	city1    TEXT NOT NULL DEFAULT '',
	city2    TEXT NOT NULL DEFAULT '',
	state    TEXT NOT NULL DEFAULT '',
	std_code TEXT NOT NULL DEFAULT '',
	phone    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sync_status (
	id               INTEGER PRIMARY KEY CHECK (id = 1),
	status           TEXT NOT NULL DEFAULT 'idle',
	last_updated     DATETIME,
	last_update_date DATETIME
);

INSERT OR IGNORE INTO sync_status (id, status) VALUES (1, 'idle');
`

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) BranchExists(ctx context.Context, ifsc string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM branches WHERE ifsc = ?`, ifsc,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: check branch %s", ifsc)
	}
	return n > 0, nil
}

func (s *SQLiteStore) InsertBranch(ctx context.Context, b model.Branch) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO branches (id, bank, ifsc, branch, address, city1, city2, state, std_code, phone)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), b.Bank, b.IFSC, b.Branch, b.Address, b.City1, b.City2, b.State, b.STDCode, b.Phone,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert branch %s", b.IFSC)
	}
	return nil
}

func (s *SQLiteStore) Status(ctx context.Context) (*model.SyncStatus, error) {
	var (
		status         string
		lastUpdated    sql.NullTime
		lastUpdateDate sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT status, last_updated, last_update_date FROM sync_status WHERE id = 1`,
	).Scan(&status, &lastUpdated, &lastUpdateDate)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get status")
	}

	st := &model.SyncStatus{State: model.RunState(status)}
	if lastUpdated.Valid {
		st.LastUpdated = lastUpdated.Time
	}
	if lastUpdateDate.Valid {
		st.LastUpdateDate = lastUpdateDate.Time
	}
	return st, nil
}

func (s *SQLiteStore) SetRunState(ctx context.Context, state model.RunState) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_status SET status = ?, last_updated = ? WHERE id = 1`,
		string(state), time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set run state %s", state)
	}
	return nil
}

func (s *SQLiteStore) Watermark(ctx context.Context) (time.Time, error) {
	var lastUpdateDate sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT last_update_date FROM sync_status WHERE id = 1`,
	).Scan(&lastUpdateDate)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "sqlite: get watermark")
	}
	if !lastUpdateDate.Valid {
		return time.Time{}, nil
	}
	return lastUpdateDate.Time, nil
}

func (s *SQLiteStore) SetWatermark(ctx context.Context, date time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_status SET last_update_date = ? WHERE id = 1`,
		date.UTC(),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: set watermark")
	}
	return nil
}
