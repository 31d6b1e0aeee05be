package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/vz415/BridgeVentilator/internal/models"
)

type TelemetrySQLite struct {
	db *sql.DB
}

func NewTelemetrySQLite(db *sql.DB) *TelemetrySQLite {
	return &TelemetrySQLite{db: db}
}

const (
	telemetryRowID = 1

	insertOrUpdateTelemetrySQL = `
		INSERT INTO vent_telemetry (id, phase, running, breath_count, params, calibration, pulse_us, target_us, override, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			phase=excluded.phase,
			running=excluded.running,
			breath_count=excluded.breath_count,
			params=excluded.params,
			calibration=excluded.calibration,
			pulse_us=excluded.pulse_us,
			target_us=excluded.target_us,
			override=excluded.override,
			updated_at=excluded.updated_at
	`

	selectTelemetrySQL = `
		SELECT phase, running, breath_count, params, calibration, pulse_us, target_us, override, updated_at
		FROM vent_telemetry WHERE id=?
	`
)

// Save upserts the single telemetry row (id always 1). Parameter and
// calibration sets are stored as JSON columns.
func (r *TelemetrySQLite) Save(ctx context.Context, s models.VentilatorState) error {
	paramsJSON, err := json.Marshal(s.Parameters)
	if err != nil {
		return err
	}
	calJSON, err := json.Marshal(s.Calibration)
	if err != nil {
		return err
	}

	tsUTC := s.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err = r.db.ExecContext(ctx, insertOrUpdateTelemetrySQL,
		telemetryRowID,
		s.Phase,
		s.IsRunning,
		s.BreathCount,
		string(paramsJSON),
		string(calJSON),
		s.PulseUS,
		s.TargetUS,
		s.OverrideActive,
		tsUTC,
	)
	return err
}

// Load fetches the single telemetry row. A missing row returns a zero state
// and no error, mirroring "nothing recorded yet".
func (r *TelemetrySQLite) Load(ctx context.Context) (models.VentilatorState, error) {
	row := r.db.QueryRowContext(ctx, selectTelemetrySQL, telemetryRowID)

	var (
		s          models.VentilatorState
		paramsJSON string
		calJSON    string
	)
	if err := row.Scan(
		&s.Phase,
		&s.IsRunning,
		&s.BreathCount,
		&paramsJSON,
		&calJSON,
		&s.PulseUS,
		&s.TargetUS,
		&s.OverrideActive,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VentilatorState{}, nil
		}
		return models.VentilatorState{}, err
	}

	if err := json.Unmarshal([]byte(paramsJSON), &s.Parameters); err != nil {
		return models.VentilatorState{}, err
	}
	if err := json.Unmarshal([]byte(calJSON), &s.Calibration); err != nil {
		return models.VentilatorState{}, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
