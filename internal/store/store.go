package store

import (
	"context"

	"github.com/mindcare/mindcare-server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Users() Users
	Risks() Risks
	Alerts() Alerts

	// EnsureSchema creates missing tables and adds missing columns.
	// Idempotent and safe under concurrent calls; redundant ensures are
	// no-ops. Run once at startup before serving traffic.
	EnsureSchema(ctx context.Context) error
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

// Risks is append-only: records are never updated or deleted.
type Risks interface {
	Create(ctx context.Context, r *model.RiskRecord) (*model.RiskRecord, error)
	List(ctx context.Context, req model.ListRisksRequest) ([]*model.RiskRecord, error)
}

type Alerts interface {
	Create(ctx context.Context, a *model.EmergencyAlert) (*model.EmergencyAlert, error)
	Get(ctx context.Context, alertID string) (*model.EmergencyAlert, error)
	List(ctx context.Context, limit int) ([]*model.EmergencyAlert, error)
	UpdateStatus(ctx context.Context, alertID, status string) error
}
