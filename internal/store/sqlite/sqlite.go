// Package sqlite implements the store for local runs and tests using
// modernc.org/sqlite (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/store"
)

// Open opens (or creates) a SQLite database at the given path and enables
// WAL journal mode for better concurrency under parallel requests.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens (or creates) a SQLite database file and wraps it in a store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a SQLite store around an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &sqlStore{db: db} }

type sqlStore struct {
	db *sql.DB

	ensureOnce sync.Once
	ensureErr  error
}

func (s *sqlStore) Users() store.Users   { return &users{p: s} }
func (s *sqlStore) Risks() store.Risks   { return &risks{p: s} }
func (s *sqlStore) Alerts() store.Alerts { return &alerts{p: s} }

// HealthPing implements health.HealthPinger.
func (s *sqlStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        user_id        TEXT PRIMARY KEY,
        email          TEXT NOT NULL UNIQUE,
        display_name   TEXT,
        region         TEXT NOT NULL DEFAULT '',
        status         TEXT NOT NULL DEFAULT 'ACTIVE',
        creation_time  TIMESTAMP NOT NULL,
        last_seen_time TIMESTAMP
    )`,
	`CREATE TABLE IF NOT EXISTS risk_records (
        risk_id      TEXT PRIMARY KEY,
        user_id      TEXT NOT NULL,
        risk_level   TEXT NOT NULL,
        risk_score   REAL NOT NULL DEFAULT 1,
        risk_type    TEXT NOT NULL,
        indicator    TEXT,
        action_taken TEXT,
        detected_at  TIMESTAMP NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_risk_records_user_detected
        ON risk_records (user_id, detected_at DESC)`,
	`CREATE TABLE IF NOT EXISTS emergency_alerts (
        alert_id   TEXT PRIMARY KEY,
        user_id    TEXT NOT NULL,
        risk_level TEXT NOT NULL DEFAULT 'low',
        is_heavy   INTEGER NOT NULL DEFAULT 0,
        excerpt    TEXT NOT NULL DEFAULT '',
        full_text  TEXT NOT NULL DEFAULT '',
        status     TEXT NOT NULL DEFAULT 'new',
        meta       TEXT,
        created_at TIMESTAMP NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_emergency_alerts_created
        ON emergency_alerts (created_at DESC)`,
}

// addedColumns are additive upgrades for databases created by older builds.
// SQLite has no ADD COLUMN IF NOT EXISTS, so presence is checked first.
var addedColumns = []struct {
	table, column, ddl string
}{
	{"users", "region", "region TEXT NOT NULL DEFAULT ''"},
	{"risk_records", "action_taken", "action_taken TEXT"},
	{"emergency_alerts", "meta", "meta TEXT"},
}

// EnsureSchema creates missing tables and adds missing columns. Safe to run
// repeatedly and concurrently; a racing ADD COLUMN that loses is tolerated.
func (s *sqlStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range createStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, c := range addedColumns {
		var n int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name=?`, c.table, c.column).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s`, c.table, c.ddl)); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue // lost an ensure race; the column exists now
			}
			return err
		}
	}
	return nil
}

func (s *sqlStore) ensure(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		s.ensureErr = s.EnsureSchema(ctx)
	})
	return mapErr(s.ensureErr)
}

// mapErr translates connection-level failures into the unavailable taxonomy
// so the HTTP layer can answer 503 instead of 500. SQLite has no network
// path; what it does see is a handle closed underneath a request.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return err
}

// --- Users ---
type users struct{ p *sqlStore }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	if err := u.p.ensure(ctx); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	_, err := u.p.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name, region, status, creation_time)
        VALUES (?,?,?,?,'ACTIVE',?)
    `, m.UserID, m.Email, m.DisplayName, m.Region, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, model.NewConflictError("userId", "user already exists")
		}
		return nil, mapErr(err)
	}
	out := *m
	out.Status = "ACTIVE"
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	if err := u.p.ensure(ctx); err != nil {
		return nil, err
	}
	var out model.User
	var last *time.Time
	row := u.p.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, region, status, creation_time, last_seen_time
        FROM users WHERE user_id=?
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.Region, &out.Status, &out.CreationTime, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("userId", "user not found")
		}
		return nil, mapErr(err)
	}
	out.LastSeenTime = last
	return &out, nil
}

// --- Risks ---
type risks struct{ p *sqlStore }

func (r *risks) Create(ctx context.Context, m *model.RiskRecord) (*model.RiskRecord, error) {
	if err := r.p.ensure(ctx); err != nil {
		return nil, err
	}
	id := m.RiskID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := r.p.db.ExecContext(ctx, `
        INSERT INTO risk_records (risk_id, user_id, risk_level, risk_score, risk_type, indicator, action_taken, detected_at)
        VALUES (?,?,?,?,?,?,?,?)
    `, id, m.UserID, m.RiskLevel, m.RiskScore, m.RiskType, m.Indicator, m.ActionTaken, m.DetectedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.RiskID = id
	return &out, nil
}

func (r *risks) List(ctx context.Context, req model.ListRisksRequest) ([]*model.RiskRecord, error) {
	if err := r.p.ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := r.p.db.QueryContext(ctx, `
        SELECT risk_id, user_id, risk_level, risk_score, risk_type, indicator, action_taken, detected_at
        FROM risk_records WHERE user_id=?
        ORDER BY detected_at DESC
        LIMIT ?
    `, req.UserID, req.Limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()
	var res []*model.RiskRecord
	for rows.Next() {
		var m model.RiskRecord
		if err := rows.Scan(&m.RiskID, &m.UserID, &m.RiskLevel, &m.RiskScore, &m.RiskType, &m.Indicator, &m.ActionTaken, &m.DetectedAt); err != nil {
			return nil, mapErr(err)
		}
		res = append(res, &m)
	}
	return res, mapErr(rows.Err())
}

// --- Alerts ---
type alerts struct{ p *sqlStore }

func (a *alerts) Create(ctx context.Context, m *model.EmergencyAlert) (*model.EmergencyAlert, error) {
	if err := a.p.ensure(ctx); err != nil {
		return nil, err
	}
	id := m.AlertID
	if id == "" {
		id = uuid.New().String()
	}
	var metaJSON *string
	if m.Meta != nil {
		b, err := json.Marshal(m.Meta)
		if err != nil {
			return nil, err
		}
		s := string(b)
		metaJSON = &s
	}
	_, err := a.p.db.ExecContext(ctx, `
        INSERT INTO emergency_alerts (alert_id, user_id, risk_level, is_heavy, excerpt, full_text, status, meta, created_at)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, id, m.UserID, m.RiskLevel, m.IsHeavy, m.Excerpt, m.FullText, m.Status, metaJSON, m.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.AlertID = id
	return &out, nil
}

func (a *alerts) Get(ctx context.Context, alertID string) (*model.EmergencyAlert, error) {
	if err := a.p.ensure(ctx); err != nil {
		return nil, err
	}
	row := a.p.db.QueryRowContext(ctx, `
        SELECT alert_id, user_id, risk_level, is_heavy, excerpt, full_text, status, meta, created_at
        FROM emergency_alerts WHERE alert_id=?
    `, alertID)
	return scanAlert(row)
}

func (a *alerts) List(ctx context.Context, limit int) ([]*model.EmergencyAlert, error) {
	if err := a.p.ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := a.p.db.QueryContext(ctx, `
        SELECT alert_id, user_id, risk_level, is_heavy, excerpt, full_text, status, meta, created_at
        FROM emergency_alerts
        ORDER BY created_at DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer func() { _ = rows.Close() }()
	var res []*model.EmergencyAlert
	for rows.Next() {
		m, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, mapErr(rows.Err())
}

func (a *alerts) UpdateStatus(ctx context.Context, alertID, status string) error {
	if err := a.p.ensure(ctx); err != nil {
		return err
	}
	res, err := a.p.db.ExecContext(ctx, `
        UPDATE emergency_alerts SET status=? WHERE alert_id=?
    `, status, alertID)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return model.NewNotFoundError("alertId", "alert not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*model.EmergencyAlert, error) {
	var m model.EmergencyAlert
	var metaJSON *string
	if err := row.Scan(&m.AlertID, &m.UserID, &m.RiskLevel, &m.IsHeavy, &m.Excerpt, &m.FullText, &m.Status, &metaJSON, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError("alertId", "alert not found")
		}
		return nil, mapErr(err)
	}
	if metaJSON != nil && *metaJSON != "" {
		if err := json.Unmarshal([]byte(*metaJSON), &m.Meta); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
