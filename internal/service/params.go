package service

import (
	"math"
	"sync"

	"github.com/vz415/BridgeVentilator/internal/models"
)

// Param identifies one clinician-settable breath parameter.
type Param string

const (
	ParamRate   Param = "rate"
	ParamTi     Param = "inspiratory_s"
	ParamTe     Param = "expiratory_s"
	ParamVolume Param = "tidal_volume_cc"
)

// Clinical limits, in breaths per minute, seconds and cubic centimeters.
// Writes outside a range are clamped to it, never rejected: on a breathing
// circuit a limited value is safer than a refused one.
const (
	MinRate = 2.0
	MaxRate = 40.0

	MinPhaseSeconds = 0.5
	MaxPhaseSeconds = 5.0

	MinVolumeCC = 200.0
	MaxVolumeCC = 800.0
)

// Power-on values. They are stored as-is, without a reconciliation pass:
// timing is rebalanced on edits only, so the first rate or phase edit after
// boot settles the schedule.
const (
	DefaultRate     = 30.0
	DefaultTi       = 1.0
	DefaultTe       = 2.0
	DefaultVolumeCC = 600.0
)

// reconcileEps absorbs float64 noise when comparing Ti+Te against the
// breath period.
const reconcileEps = 1e-9

// Observer receives the effective value of every parameter write, including
// the sibling adjustments a timing edit triggers. It is called outside the
// store lock, so it may call back into the store.
type Observer func(p Param, value float64)

type paramChange struct {
	param Param
	value float64
}

// ParameterStore holds the four breath parameters and keeps their timing
// consistent: after any edit to rate, inspiratory or expiratory period, the
// phase periods are rebalanced so Ti+Te fits inside the 60/rate breath
// period. The edited value wins, its siblings move.
type ParameterStore struct {
	mu sync.Mutex

	rate   float64
	ti     float64
	te     float64
	volume float64

	// reconciling suppresses nested rebalancing while the store rewrites
	// siblings of an edit.
	reconciling bool

	observer Observer
	pending  []paramChange
}

func NewParameterStore() *ParameterStore {
	return &ParameterStore{
		rate:   DefaultRate,
		ti:     DefaultTi,
		te:     DefaultTe,
		volume: DefaultVolumeCC,
	}
}

// SetObserver registers the single write observer. Passing nil removes it.
func (s *ParameterStore) SetObserver(fn Observer) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// Set writes one parameter and returns the value that actually took effect
// after range clamping. A NaN request leaves the parameter untouched.
func (s *ParameterStore) Set(p Param, value float64) float64 {
	s.mu.Lock()
	if math.IsNaN(value) {
		v := s.get(p)
		s.mu.Unlock()
		return v
	}

	s.pending = s.pending[:0]
	s.apply(p, value)
	effective := s.get(p)
	changes := make([]paramChange, len(s.pending))
	copy(changes, s.pending)
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		for _, ch := range changes {
			observer(ch.param, ch.value)
		}
	}
	return effective
}

// Get returns the current value of one parameter.
func (s *ParameterStore) Get(p Param) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(p)
}

// Snapshot returns a consistent copy of all four parameters.
func (s *ParameterStore) Snapshot() models.BreathParameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.BreathParameters{
		Rate:          s.rate,
		InspiratoryS:  s.ti,
		ExpiratoryS:   s.te,
		TidalVolumeCC: s.volume,
	}
}

// apply clamps and stores one write, then rebalances timing unless the
// write itself came from a rebalance. Callers hold s.mu.
func (s *ParameterStore) apply(p Param, value float64) {
	clamped := clampParam(p, value)
	switch p {
	case ParamRate:
		s.rate = clamped
	case ParamTi:
		s.ti = clamped
	case ParamTe:
		s.te = clamped
	case ParamVolume:
		s.volume = clamped
	default:
		return
	}
	s.pending = append(s.pending, paramChange{param: p, value: clamped})

	if p == ParamVolume || s.reconciling {
		return
	}
	s.reconciling = true
	s.reconcile(p)
	s.reconciling = false
}

// reconcile shortens phase periods so Ti+Te fits the breath period after an
// edit to p. When the edited value already fits, nothing moves. Edits to a
// single phase period overwrite the other one outright; a rate edit shrinks
// both phases in proportion, preserving the I:E ratio. Shrunken phases are
// still floor-clamped, so at extreme settings the sum may overrun the
// period; the cycle then simply breathes slower than the dial says.
func (s *ParameterStore) reconcile(p Param) {
	period := 60.0 / s.rate
	sum := s.ti + s.te
	if sum <= period+reconcileEps {
		return
	}

	switch p {
	case ParamRate:
		ratio := (sum - period) / sum
		ti := s.ti * (1 - ratio)
		te := s.te * (1 - ratio)
		s.apply(ParamTi, ti)
		s.apply(ParamTe, te)
	case ParamTi:
		s.apply(ParamTe, period-s.ti)
	case ParamTe:
		s.apply(ParamTi, period-s.te)
	}
}

func (s *ParameterStore) get(p Param) float64 {
	switch p {
	case ParamRate:
		return s.rate
	case ParamTi:
		return s.ti
	case ParamTe:
		return s.te
	case ParamVolume:
		return s.volume
	}
	return 0
}

func clampParam(p Param, value float64) float64 {
	switch p {
	case ParamRate:
		return clampFloat(value, MinRate, MaxRate)
	case ParamTi, ParamTe:
		return clampFloat(value, MinPhaseSeconds, MaxPhaseSeconds)
	case ParamVolume:
		return clampFloat(value, MinVolumeCC, MaxVolumeCC)
	}
	return value
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
