package service

import (
	"math"

	"github.com/vz415/BridgeVentilator/internal/drive"
)

// Actuator tracks the commanded servo pulse and slews the live output toward
// it one bounded step per tick, so a target jump never snaps the mechanism.
// A manual pulse override freezes the automatic target until released;
// controller writes during an override are dropped without error.
type Actuator struct {
	minPulse float64
	maxPulse float64
	maxStep  float64

	current  float64
	target   float64
	override bool

	out drive.Output
}

func NewActuator(minPulseUS, maxPulseUS int, maxStepPerTick, startUS float64, out drive.Output) *Actuator {
	lo, hi := float64(minPulseUS), float64(maxPulseUS)
	if hi <= lo {
		lo, hi = 1000, 2000
	}
	if maxStepPerTick <= 0 {
		maxStepPerTick = 50
	}
	start := clampFloat(startUS, lo, hi)
	return &Actuator{
		minPulse: lo,
		maxPulse: hi,
		maxStep:  maxStepPerTick,
		current:  start,
		target:   start,
		out:      out,
	}
}

// SetTarget accepts a controller command. It is ignored while a manual
// override holds the output.
func (a *Actuator) SetTarget(pulseUS float64) {
	if a.override {
		return
	}
	a.target = clampFloat(pulseUS, a.minPulse, a.maxPulse)
}

// Override pins the target to a manually chosen pulse width until
// ReleaseOverride.
func (a *Actuator) Override(pulseUS float64) {
	a.override = true
	a.target = clampFloat(pulseUS, a.minPulse, a.maxPulse)
}

// ReleaseOverride hands the target back to the controller. The output stays
// where the override left it until the next controller command arrives.
func (a *Actuator) ReleaseOverride() {
	a.override = false
}

func (a *Actuator) OverrideActive() bool { return a.override }

// Current returns the pulse width being emitted right now.
func (a *Actuator) Current() float64 { return a.current }

// Target returns the pulse width the output is slewing toward.
func (a *Actuator) Target() float64 { return a.target }

// Tick moves the output one step toward the target, bounded by the per-tick
// slew limit, and writes the resulting pulse to the drive.
func (a *Actuator) Tick() (int, error) {
	step := a.target - a.current
	if step > a.maxStep {
		step = a.maxStep
	} else if step < -a.maxStep {
		step = -a.maxStep
	}
	a.current += step

	pulse := int(math.Round(a.current))
	if a.out == nil {
		return pulse, nil
	}
	return pulse, a.out.Write(pulse)
}
