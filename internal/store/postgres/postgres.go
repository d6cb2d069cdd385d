package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mindcare/mindcare-server/internal/model"
	"github.com/mindcare/mindcare-server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct {
	db *sql.DB

	ensureOnce sync.Once
	ensureErr  error
}

func (s *pgStore) Users() store.Users   { return &users{p: s} }
func (s *pgStore) Risks() store.Risks   { return &risks{p: s} }
func (s *pgStore) Alerts() store.Alerts { return &alerts{p: s} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        user_id        TEXT PRIMARY KEY,
        email          TEXT NOT NULL UNIQUE,
        display_name   TEXT,
        region         TEXT NOT NULL DEFAULT '',
        status         TEXT NOT NULL DEFAULT 'ACTIVE',
        creation_time  TIMESTAMPTZ NOT NULL DEFAULT now(),
        last_seen_time TIMESTAMPTZ
    )`,
	`CREATE TABLE IF NOT EXISTS risk_records (
        risk_id      TEXT PRIMARY KEY,
        user_id      TEXT NOT NULL,
        risk_level   TEXT NOT NULL,
        risk_score   DOUBLE PRECISION NOT NULL DEFAULT 1,
        risk_type    TEXT NOT NULL,
        indicator    TEXT,
        action_taken TEXT,
        detected_at  TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_risk_records_user_detected
        ON risk_records (user_id, detected_at DESC)`,
	`CREATE TABLE IF NOT EXISTS emergency_alerts (
        alert_id   TEXT PRIMARY KEY,
        user_id    TEXT NOT NULL,
        risk_level TEXT NOT NULL DEFAULT 'low',
        is_heavy   BOOLEAN NOT NULL DEFAULT FALSE,
        excerpt    TEXT NOT NULL DEFAULT '',
        full_text  TEXT NOT NULL DEFAULT '',
        status     TEXT NOT NULL DEFAULT 'new',
        meta       JSONB,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_emergency_alerts_created
        ON emergency_alerts (created_at DESC)`,
	// Additive upgrades for rows created before these columns existed.
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS region TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE risk_records ADD COLUMN IF NOT EXISTS action_taken TEXT`,
	`ALTER TABLE emergency_alerts ADD COLUMN IF NOT EXISTS meta JSONB`,
}

// EnsureSchema creates missing tables and adds missing columns. Every
// statement is IF NOT EXISTS, so concurrent or repeated ensures are no-ops.
func (s *pgStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

// ensure is the lazy schema gate: the first store operation after process
// start runs EnsureSchema, all later operations skip it.
func (s *pgStore) ensure(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		s.ensureErr = s.EnsureSchema(ctx)
	})
	return s.ensureErr
}

// mapErr translates connection-level failures into the unavailable taxonomy
// so the HTTP layer can answer 503 instead of 500.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.Is(err, sql.ErrConnDone) || errors.As(err, &ne) {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return err
}

// --- Users ---
type users struct{ p *pgStore }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	if err := u.p.ensure(ctx); err != nil {
		return nil, err
	}
	var created time.Time
	row := u.p.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name, region, status)
        VALUES ($1,$2,$3,$4,'ACTIVE')
        RETURNING creation_time
    `, m.UserID, m.Email, m.DisplayName, m.Region)
	if err := row.Scan(&created); err != nil {
		return nil, mapErr(err)
	}
	out := *m
	out.Status = "ACTIVE"
	out.CreationTime = created
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
        FROM users WHERE user_id=$1
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
type risks struct{ p *pgStore }

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
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
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
        FROM risk_records WHERE user_id=$1
        ORDER BY detected_at DESC
        LIMIT $2
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
type alerts struct{ p *pgStore }

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
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
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
        FROM emergency_alerts WHERE alert_id=$1
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
        LIMIT $1
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
        UPDATE emergency_alerts SET status=$2 WHERE alert_id=$1
    `, alertID, status)
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
