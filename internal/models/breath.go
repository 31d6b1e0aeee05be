package models

// BreathParameters is the clinician-facing parameter set for volume-controlled
// ventilation. Values are always the clamped, reconciled ones: Ti+Te never
// exceeds 60/rate except where a floor clamp makes the sum slightly longer.
type BreathParameters struct {
	Rate          float64 `json:"rate"`            // breaths per minute
	InspiratoryS  float64 `json:"inspiratory_s"`   // Ti, seconds
	ExpiratoryS   float64 `json:"expiratory_s"`    // Te, seconds
	TidalVolumeCC float64 `json:"tidal_volume_cc"` // delivered volume per breath, cc
}

// CalibrationPositions are the three taught actuator endpoints in raw command
// units (servo pulse widths, microseconds). They are session-scoped and never
// cross-validated; inverted pairs pass through as taught.
type CalibrationPositions struct {
	HomeUS      int `json:"home_us"`       // bag released
	InhaleEndUS int `json:"inhale_end_us"` // bag fully squeezed
	ExhaleEndUS int `json:"exhale_end_us"` // taught far end of the release travel
}
