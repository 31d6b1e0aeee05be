package models

import "time"

// Breath cycle phases as reported to operators.
const (
	PhaseStopped = "STOPPED"
	PhaseInhale  = "INHALE"
	PhaseExhale  = "EXHALE"
)

// VentilatorState is the live snapshot of the whole actuator stack: cycle
// phase, effective parameters, calibration and the drive signal. It is what
// the dashboard polls and what the telemetry recorder persists.
type VentilatorState struct {
	IsRunning      bool                 `json:"is_running"`
	Phase          string               `json:"phase"` // STOPPED | INHALE | EXHALE
	BreathCount    uint64               `json:"breath_count"`
	Parameters     BreathParameters     `json:"parameters"`
	Calibration    CalibrationPositions `json:"calibration"`
	PulseUS        int                  `json:"pulse_us"`  // drive signal currently emitted
	TargetUS       int                  `json:"target_us"` // where the driver is converging to
	OverrideActive bool                 `json:"override_active"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
