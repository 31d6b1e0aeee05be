package service

import (
	"context"
	"time"

	"github.com/vz415/BridgeVentilator/internal/models"
)

// StateSource yields live snapshots of the ventilator stack.
type StateSource interface {
	State() models.VentilatorState
}

// MonitoringService exposes read-only state to the API and the websocket
// feed. It reads the live engine rather than the telemetry table, so a
// broken database cannot blind the dashboard.
type MonitoringService struct {
	src StateSource
}

func NewMonitoringService(src StateSource) *MonitoringService {
	return &MonitoringService{src: src}
}

// State returns the current snapshot with its timestamp normalized to UTC.
func (s *MonitoringService) State(ctx context.Context) (models.VentilatorState, error) {
	st := s.src.State()
	st.UpdatedAt = toUTC(st.UpdatedAt)
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	return st, nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
