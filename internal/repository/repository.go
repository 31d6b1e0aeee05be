package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vz415/BridgeVentilator/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// EventRepo is the append-only audit trail.
type EventRepo interface {
	Append(ctx context.Context, e models.VentEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.VentEvent, error)
}

// TelemetryRepo persists the latest ventilator snapshot (single row). Load
// serves inspection endpoints only; the control path never consumes it.
type TelemetryRepo interface {
	Save(ctx context.Context, s models.VentilatorState) error
	Load(ctx context.Context) (models.VentilatorState, error)
}

type Repository struct {
	Events    EventRepo
	Telemetry TelemetryRepo
	Auth      Authorization
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		Events:    NewEventSQLite(conn),
		Telemetry: NewTelemetrySQLite(conn),
		Auth:      NewUserRepository(conn),
	}
}
