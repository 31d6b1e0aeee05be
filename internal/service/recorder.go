package service

import (
	"context"
	"time"

	"github.com/vz415/BridgeVentilator/internal/logger"
	"github.com/vz415/BridgeVentilator/internal/models"
	"github.com/vz415/BridgeVentilator/internal/repository"
)

const defaultRecordInterval = time.Second

// TelemetryRecorder persists periodic state snapshots for post-session
// review. Writes are best-effort and strictly one-way: the recorder never
// feeds persisted values back into the control loop.
type TelemetryRecorder struct {
	src           StateSource
	telemetryRepo repository.TelemetryRepo
	log           *logger.Logger
}

func NewTelemetryRecorder(src StateSource, telemetryRepo repository.TelemetryRepo, log *logger.Logger) *TelemetryRecorder {
	return &TelemetryRecorder{
		src:           src,
		telemetryRepo: telemetryRepo,
		log:           log,
	}
}

// Last returns the most recently persisted snapshot. A zero state with nil
// error means nothing has been recorded yet.
func (r *TelemetryRecorder) Last(ctx context.Context) (models.VentilatorState, error) {
	return r.telemetryRepo.Load(ctx)
}

// Run ticks at the given interval until ctx is canceled.
func (r *TelemetryRecorder) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRecordInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			st := r.src.State()
			st.UpdatedAt = now.UTC()
			if err := r.telemetryRepo.Save(ctx, st); err != nil && r.log != nil {
				r.log.Warnw("telemetry save failed", "err", err)
			}
		}
	}
}
