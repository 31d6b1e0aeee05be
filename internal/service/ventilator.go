package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/vz415/BridgeVentilator/internal/logger"
	"github.com/vz415/BridgeVentilator/internal/models"
	"github.com/vz415/BridgeVentilator/internal/repository"

	"github.com/google/uuid"
)

// defaultEngineTick paces the control loop at 50 Hz, one tick per servo
// frame.
const defaultEngineTick = 20 * time.Millisecond

// VentilatorService glues the parameter store, calibration registry, breath
// cycle and actuator into the operator-facing control surface, and runs the
// engine loop that drives them. All state transitions and every engine tick
// go through one mutex, so a tick observes either all of an operation or
// none of it.
type VentilatorService struct {
	mu sync.Mutex

	store *ParameterStore
	cal   *CalibrationRegistry
	cycle *BreathCycle
	act   *Actuator

	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewVentilatorService(store *ParameterStore, cal *CalibrationRegistry, cycle *BreathCycle, act *Actuator, eventRepo repository.EventRepo, log *logger.Logger) *VentilatorService {
	v := &VentilatorService{
		store:     store,
		cal:       cal,
		cycle:     cycle,
		act:       act,
		eventRepo: eventRepo,
		log:       log,
	}
	store.SetObserver(v.onParameterWrite)
	return v
}

// SetRunning starts or stops ventilation and logs the transition. Starting
// releases any manual pulse override and begins a fresh inhale; stopping
// retargets the actuator to home, so the bag is released at the slew rate
// rather than snapped.
func (v *VentilatorService) SetRunning(ctx context.Context, run bool) error {
	v.mu.Lock()
	if run == v.cycle.Running() {
		v.mu.Unlock()
		return nil
	}
	now := time.Now()
	if run {
		v.act.ReleaseOverride()
		v.cycle.SetRunning(true, now, v.act.Current())
	} else {
		v.cycle.SetRunning(false, now, v.act.Current())
		v.act.SetTarget(float64(v.cal.Snapshot().HomeUS))
	}
	v.mu.Unlock()

	typ, desc := models.EventStart, "Ventilation started"
	if !run {
		typ, desc = models.EventStop, "Ventilation stopped, returning to home"
	}
	return v.appendEvent(ctx, typ, desc, nil)
}

// SetBreathRate sets breaths per minute and returns the effective value.
func (v *VentilatorService) SetBreathRate(ctx context.Context, value float64) (float64, error) {
	return v.setParam(ctx, ParamRate, value)
}

// SetInspiratoryPeriod sets the inhale duration in seconds and returns the
// effective value.
func (v *VentilatorService) SetInspiratoryPeriod(ctx context.Context, value float64) (float64, error) {
	return v.setParam(ctx, ParamTi, value)
}

// SetExpiratoryPeriod sets the exhale duration in seconds and returns the
// effective value.
func (v *VentilatorService) SetExpiratoryPeriod(ctx context.Context, value float64) (float64, error) {
	return v.setParam(ctx, ParamTe, value)
}

// SetVolume sets the tidal volume in cubic centimeters and returns the
// effective value.
func (v *VentilatorService) SetVolume(ctx context.Context, value float64) (float64, error) {
	return v.setParam(ctx, ParamVolume, value)
}

func (v *VentilatorService) setParam(ctx context.Context, p Param, value float64) (float64, error) {
	effective := v.store.Set(p, value)
	err := v.appendEvent(ctx, models.EventParamChange, "Parameter "+string(p)+" changed", map[string]any{
		"param":     string(p),
		"requested": value,
		"effective": effective,
	})
	return effective, err
}

// Calibrate teaches one mechanism endpoint and returns the effective pulse
// width after clamping to the drive range.
func (v *VentilatorService) Calibrate(ctx context.Context, point CalibrationPoint, pulseUS int) (int, error) {
	v.mu.Lock()
	effective, err := v.cal.Set(point, pulseUS)
	v.mu.Unlock()
	if err != nil {
		return 0, err
	}

	if err := v.appendEvent(ctx, models.EventCalibration, "Calibrated "+string(point), map[string]any{
		"point":     string(point),
		"requested": pulseUS,
		"effective": effective,
	}); err != nil {
		return effective, err
	}
	return effective, nil
}

// SetPulseWidth pins the drive output to a manually chosen pulse width,
// bypassing the breath cycle, which keeps sequencing underneath. A value
// of zero or less releases the override and the controller takes back the
// output on its next tick.
func (v *VentilatorService) SetPulseWidth(ctx context.Context, pulseUS int) error {
	v.mu.Lock()
	release := pulseUS <= 0
	if release {
		v.act.ReleaseOverride()
	} else {
		v.act.Override(float64(pulseUS))
	}
	v.mu.Unlock()

	desc := fmt.Sprintf("Manual pulse override %d us", pulseUS)
	if release {
		desc = "Manual pulse override released"
	}
	return v.appendEvent(ctx, models.EventOverride, desc, map[string]any{
		"pulse_us": pulseUS,
		"released": release,
	})
}

// State returns a consistent snapshot of the whole stack.
func (v *VentilatorService) State() models.VentilatorState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return models.VentilatorState{
		IsRunning:      v.cycle.Running(),
		Phase:          v.cycle.Phase(),
		BreathCount:    v.cycle.Breaths(),
		Parameters:     v.store.Snapshot(),
		Calibration:    v.cal.Snapshot(),
		PulseUS:        int(math.Round(v.act.Current())),
		TargetUS:       int(math.Round(v.act.Target())),
		OverrideActive: v.act.OverrideActive(),
		UpdatedAt:      time.Now().UTC(),
	}
}

// Run drives the engine until ctx is canceled. Each tick asks the cycle for
// a target and slews the actuator one step toward it.
func (v *VentilatorService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = defaultEngineTick
	}
	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			v.step(now)
		}
	}
}

// step runs one engine tick: cycle target, then one bounded actuator step.
func (v *VentilatorService) step(now time.Time) {
	v.mu.Lock()
	v.act.SetTarget(v.cycle.Target(now, v.act.Current()))
	pulse, err := v.act.Tick()
	v.mu.Unlock()

	if err != nil && v.log != nil {
		v.log.Errorw("drive write failed", "pulse_us", pulse, "err", err)
	}
}

func (v *VentilatorService) onParameterWrite(p Param, value float64) {
	if v.log != nil {
		v.log.Debugw("parameter updated", "param", string(p), "value", value)
	}
}

func (v *VentilatorService) appendEvent(ctx context.Context, typ, desc string, meta map[string]any) error {
	if v.eventRepo == nil {
		return nil
	}
	return v.eventRepo.Append(ctx, models.VentEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
}
