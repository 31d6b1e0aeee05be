package service

import (
	"context"
	"time"

	"github.com/vz415/BridgeVentilator/internal/drive"
	"github.com/vz415/BridgeVentilator/internal/logger"
	"github.com/vz415/BridgeVentilator/internal/models"
	"github.com/vz415/BridgeVentilator/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Ventilator exposes the control surface: run state, breath parameters,
// calibration and the manual pulse override. Parameter setters return the
// value that actually took effect after clamping and reconciliation.
type Ventilator interface {
	SetRunning(ctx context.Context, run bool) error
	SetBreathRate(ctx context.Context, value float64) (float64, error)
	SetInspiratoryPeriod(ctx context.Context, value float64) (float64, error)
	SetExpiratoryPeriod(ctx context.Context, value float64) (float64, error)
	SetVolume(ctx context.Context, value float64) (float64, error)
	Calibrate(ctx context.Context, point CalibrationPoint, pulseUS int) (int, error)
	SetPulseWidth(ctx context.Context, pulseUS int) error
}

// Monitoring exposes read-only state (phase, parameters, drive position).
type Monitoring interface {
	State(ctx context.Context) (models.VentilatorState, error)
}

// EventLog exposes the append-only audit log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.VentEvent, error)
}

// Engine runs the breath control loop.
// Stop via context cancellation in main() for graceful shutdown.
type Engine interface {
	Run(ctx context.Context, tick time.Duration)
}

// Recorder runs the background telemetry snapshot loop and serves the last
// persisted snapshot back for post-session review.
type Recorder interface {
	Run(ctx context.Context, interval time.Duration)
	Last(ctx context.Context) (models.VentilatorState, error)
}

// Service aggregates all sub-services. The two background loops share a Run
// signature, so they stay named fields instead of embedded interfaces.
type Service struct {
	Ventilator
	Monitoring
	EventLog
	Authorization

	Engine   Engine
	Recorder Recorder
}

// Options carries the tuning NewService needs beyond repositories. Zero
// fields fall back to safe defaults.
type Options struct {
	MinPulseUS        int
	MaxPulseUS        int
	MaxStepPerTick    float64
	MinStrokeFraction float64

	SigningKey string
	TokenTTL   time.Duration

	Output drive.Output
	Logger *logger.Logger
}

// NewService wires the repository layer and drive output into concrete
// services.
func NewService(repos *repository.Repository, opts Options) *Service {
	store := NewParameterStore()
	cal := NewCalibrationRegistry(opts.MinPulseUS, opts.MaxPulseUS)
	cycle := NewBreathCycle(store, cal, opts.MinStrokeFraction)
	act := NewActuator(opts.MinPulseUS, opts.MaxPulseUS, opts.MaxStepPerTick, float64(cal.Snapshot().HomeUS), opts.Output)
	vent := NewVentilatorService(store, cal, cycle, act, repos.Events, opts.Logger)

	return &Service{
		Ventilator:    vent,
		Monitoring:    NewMonitoringService(vent),
		EventLog:      NewEventLogService(repos.Events),
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
		Engine:        vent,
		Recorder:      NewTelemetryRecorder(vent, repos.Telemetry, opts.Logger),
	}
}
