package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// interruptedReason is stored on sessions found mid-run at startup.
const interruptedReason = "interrupted: the service stopped before processing finished"

// connPragmas have no DSN keys, so the connect hook runs them on every
// pooled connection.
const connPragmas = `
PRAGMA journal_size_limit = 200000000;
PRAGMA temp_store         = MEMORY;
PRAGMA cache_size         = -16000;`

const driverName = "sqlite3_studyflow"

var registerDriver sync.Once

func sqliteDriver() string {
	registerDriver.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				_, err := conn.Exec(connPragmas, nil)
				return err
			},
		})
	})
	return driverName
}

const schema = `
create table if not exists sessions (
	id          text primary key not null,
	name        text not null,
	source      text not null,
	fingerprint text not null default '',
	status      text not null,
	transcript  text not null default '',
	summary     text not null default '',
	material    text not null default '',
	error       text not null default '',
	timeline    text not null default '',
	created_at  timestamp not null,
	updated_at  timestamp not null
);

create index if not exists sessions_created_at on sessions (created_at);
create index if not exists sessions_fingerprint on sessions (fingerprint);`

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
// Per-connection pragmas go in the DSN or the connect hook so every pooled
// connection gets them.
func OpenSQLite(path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on", path)
	db, err := sql.Open(sqliteDriver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := addColumn(db, "timeline", "text not null default ''"); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// addColumn upgrades databases created before the column existed.
func addColumn(db *sql.DB, name, decl string) error {
	var n int
	err := db.QueryRow(`select count(*) from pragma_table_info('sessions') where name = ?`, name).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect sessions table: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf("alter table sessions add column %s %s", name, decl)); err != nil {
		return fmt.Errorf("add column %s: %w", name, err)
	}
	return nil
}

const selectColumns = `select id, name, source, fingerprint, status, transcript, summary, material, error, timeline, created_at, updated_at from sessions`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var s Session
	var status, timeline string
	err := row.Scan(&s.ID, &s.Name, &s.Source, &s.Fingerprint, &status,
		&s.Transcript, &s.Summary, &s.Material, &s.Error, &timeline, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.Status = Status(status)
	if timeline != "" {
		if err := json.Unmarshal([]byte(timeline), &s.Timeline); err != nil {
			return s, fmt.Errorf("decode timeline: %w", err)
		}
	}
	return s, nil
}

func (r *sqliteStore) Create(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`insert into sessions (id, name, source, fingerprint, status, created_at, updated_at) values (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Source, s.Fingerprint, string(s.Status), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("persisting session into sqlite: %w", err)
	}
	return s, nil
}

func (r *sqliteStore) Get(ctx context.Context, id string) (Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, selectColumns+` where id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return s, nil
}

// List returns the most recent sessions first.
func (r *sqliteStore) List(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+` order by created_at desc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sqliteStore) MarkProcessing(ctx context.Context, id string) error {
	return r.update(ctx, id, `update sessions set status = ?, updated_at = ? where id = ?`,
		string(StatusProcessing), time.Now().UTC(), id)
}

func (r *sqliteStore) Complete(ctx context.Context, id string, out Output) error {
	timeline := ""
	if len(out.Timeline) > 0 {
		data, err := json.Marshal(out.Timeline)
		if err != nil {
			return fmt.Errorf("encode timeline: %w", err)
		}
		timeline = string(data)
	}
	return r.update(ctx, id,
		`update sessions set status = ?, transcript = ?, summary = ?, material = ?, timeline = ?, error = '', updated_at = ? where id = ?`,
		string(StatusCompleted), out.Transcript, out.Summary, out.Material, timeline, time.Now().UTC(), id)
}

func (r *sqliteStore) Fail(ctx context.Context, id, reason string) error {
	return r.update(ctx, id, `update sessions set status = ?, error = ?, updated_at = ? where id = ?`,
		string(StatusFailed), reason, time.Now().UTC(), id)
}

func (r *sqliteStore) FailInterrupted(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`update sessions set status = ?, error = ?, updated_at = ? where status in (?, ?)`,
		string(StatusFailed), interruptedReason, time.Now().UTC(), string(StatusPending), string(StatusProcessing))
	if err != nil {
		return 0, fmt.Errorf("fail interrupted sessions: %w", err)
	}
	return res.RowsAffected()
}

func (r *sqliteStore) update(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqliteStore) Close() error {
	return r.db.Close()
}
