package models

import "time"

// Audit event types appended by the ventilator services.
const (
	EventStart       = "START"
	EventStop        = "STOP"
	EventParamChange = "PARAM_CHANGE"
	EventCalibration = "CALIBRATION"
	EventOverride    = "OVERRIDE"
)

// VentEvent is a single audit log entry. The log is append-only and is never
// read back into the control path.
type VentEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | STOP | PARAM_CHANGE | CALIBRATION | OVERRIDE
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
