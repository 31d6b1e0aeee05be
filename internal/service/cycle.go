package service

import (
	"time"

	"github.com/vz415/BridgeVentilator/internal/models"
)

// defaultMinStrokeFraction is the stroke commanded at minimum tidal volume.
// The smallest deliverable breath still moves the bag.
const defaultMinStrokeFraction = 0.25

// BreathCycle sequences the inhale and exhale phases and converts phase
// progress into a commanded actuator position. Phase timing and stroke depth
// are latched when a phase begins, so mid-phase parameter edits take effect
// on the next phase. Calibration is read live on every tick.
type BreathCycle struct {
	params    *ParameterStore
	cal       *CalibrationRegistry
	minStroke float64

	phase        string
	phaseStart   time.Time
	phaseSeconds float64
	phaseStroke  float64
	entryPos     float64
	breaths      uint64
}

func NewBreathCycle(params *ParameterStore, cal *CalibrationRegistry, minStrokeFraction float64) *BreathCycle {
	if minStrokeFraction <= 0 || minStrokeFraction > 1 {
		minStrokeFraction = defaultMinStrokeFraction
	}
	return &BreathCycle{
		params:    params,
		cal:       cal,
		minStroke: minStrokeFraction,
		phase:     models.PhaseStopped,
	}
}

func (b *BreathCycle) Running() bool { return b.phase != models.PhaseStopped }

func (b *BreathCycle) Phase() string { return b.phase }

// Breaths returns the number of completed inhale/exhale pairs since boot.
func (b *BreathCycle) Breaths() uint64 { return b.breaths }

// SetRunning starts the cycle at the top of an inhale or stops it. Stopping
// does not reset the breath counter. pos is the current actuator command,
// used as the reference position for the first phase.
func (b *BreathCycle) SetRunning(run bool, now time.Time, pos float64) {
	if run {
		if b.phase == models.PhaseStopped {
			b.enterPhase(models.PhaseInhale, now, pos)
		}
		return
	}
	b.phase = models.PhaseStopped
}

// Target returns the commanded position for this tick and rolls the cycle
// into the next phase when the current one has elapsed. pos is the actuator
// command at the start of the tick; it becomes the reference the exhale
// retraction interpolates from.
func (b *BreathCycle) Target(now time.Time, pos float64) float64 {
	cal := b.cal.Snapshot()
	home := float64(cal.HomeUS)
	if b.phase == models.PhaseStopped {
		return home
	}

	elapsed := now.Sub(b.phaseStart).Seconds()
	if elapsed >= b.phaseSeconds {
		b.advance(now, pos)
		elapsed = 0
	}

	f := phaseFraction(elapsed, b.phaseSeconds)
	switch b.phase {
	case models.PhaseInhale:
		return home + f*(float64(cal.InhaleEndUS)-home)*b.phaseStroke
	default:
		// Exhale releases all the way back to home from wherever the
		// inhale ended, whatever the stroke depth was.
		return b.entryPos + f*(home-b.entryPos)
	}
}

// enterPhase latches the phase duration and stroke depth from the current
// parameters.
func (b *BreathCycle) enterPhase(phase string, now time.Time, pos float64) {
	p := b.params.Snapshot()
	b.phase = phase
	b.phaseStart = now
	b.entryPos = pos
	b.phaseStroke = b.strokeFraction(p.TidalVolumeCC)
	switch phase {
	case models.PhaseInhale:
		b.phaseSeconds = p.InspiratoryS
	case models.PhaseExhale:
		b.phaseSeconds = p.ExpiratoryS
	}
}

func (b *BreathCycle) advance(now time.Time, pos float64) {
	switch b.phase {
	case models.PhaseInhale:
		b.enterPhase(models.PhaseExhale, now, pos)
	case models.PhaseExhale:
		b.breaths++
		b.enterPhase(models.PhaseInhale, now, pos)
	}
}

// strokeFraction maps tidal volume onto the usable stroke range
// [minStroke, 1], linearly across the volume limits.
func (b *BreathCycle) strokeFraction(volumeCC float64) float64 {
	f := (volumeCC - MinVolumeCC) / (MaxVolumeCC - MinVolumeCC)
	f = clampFloat(f, 0, 1)
	return b.minStroke + f*(1-b.minStroke)
}

func phaseFraction(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return clampFloat(elapsed/duration, 0, 1)
}
