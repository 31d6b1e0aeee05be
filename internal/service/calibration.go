package service

import (
	"errors"
	"sync"

	"github.com/vz415/BridgeVentilator/internal/models"
)

// CalibrationPoint names one taught actuator endpoint.
type CalibrationPoint string

const (
	CalibrationHome      CalibrationPoint = "home"
	CalibrationInhaleEnd CalibrationPoint = "inhale_end"
	CalibrationExhaleEnd CalibrationPoint = "exhale_end"
)

// ErrUnknownCalibrationPoint reports a calibration request for a point name
// the registry does not know.
var ErrUnknownCalibrationPoint = errors.New("unknown calibration point, want home, inhale_end or exhale_end")

// CalibrationRegistry holds the pulse widths the operator teaches for the
// mechanism endpoints. Values live for the process only; every assembly is
// re-taught after a restart. Points are clamped to the drive range but not
// checked against each other: inhale_end on the far side of home is a
// legitimate rig and produces reversed motion, not an error.
type CalibrationRegistry struct {
	mu sync.Mutex

	minPulse int
	maxPulse int

	home      int
	inhaleEnd int
	exhaleEnd int
}

// NewCalibrationRegistry seeds the endpoints with the extremes of the drive
// range: home fully released, inhale_end fully squeezed.
func NewCalibrationRegistry(minPulseUS, maxPulseUS int) *CalibrationRegistry {
	if maxPulseUS <= minPulseUS {
		minPulseUS, maxPulseUS = 1000, 2000
	}
	return &CalibrationRegistry{
		minPulse:  minPulseUS,
		maxPulse:  maxPulseUS,
		home:      maxPulseUS,
		inhaleEnd: minPulseUS,
		exhaleEnd: maxPulseUS,
	}
}

// Set stores one endpoint and returns the pulse width that took effect
// after clamping to the drive range.
func (c *CalibrationRegistry) Set(point CalibrationPoint, pulseUS int) (int, error) {
	clamped := clampInt(pulseUS, c.minPulse, c.maxPulse)
	c.mu.Lock()
	defer c.mu.Unlock()
	switch point {
	case CalibrationHome:
		c.home = clamped
	case CalibrationInhaleEnd:
		c.inhaleEnd = clamped
	case CalibrationExhaleEnd:
		c.exhaleEnd = clamped
	default:
		return 0, ErrUnknownCalibrationPoint
	}
	return clamped, nil
}

// Snapshot returns a consistent copy of the taught endpoints.
func (c *CalibrationRegistry) Snapshot() models.CalibrationPositions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CalibrationPositions{
		HomeUS:      c.home,
		InhaleEndUS: c.inhaleEnd,
		ExhaleEndUS: c.exhaleEnd,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
