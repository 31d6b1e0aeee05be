package service

import (
	"context"
	"testing"
	"time"

	"github.com/vz415/BridgeVentilator/internal/models"
)

// monitoringSourceStub is a local, uniquely named test stub that satisfies
// StateSource.
type monitoringSourceStub struct {
	state models.VentilatorState
	calls int
}

func (s *monitoringSourceStub) State() models.VentilatorState {
	s.calls++
	return s.state
}

func TestMonitoringService_State(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name       string
		srcState   models.VentilatorState
		assertFunc func(t *testing.T, got models.VentilatorState, err error)
	}

	cases := []testCase{
		{
			name: "passes live fields through",
			srcState: models.VentilatorState{
				IsRunning:   true,
				Phase:       models.PhaseInhale,
				BreathCount: 12,
				Parameters:  models.BreathParameters{Rate: 18, InspiratoryS: 1.2, ExpiratoryS: 1.8, TidalVolumeCC: 500},
				PulseUS:     1480,
				TargetUS:    1460,
				UpdatedAt:   time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
			},
			assertFunc: func(t *testing.T, got models.VentilatorState, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !got.IsRunning || got.Phase != models.PhaseInhale || got.BreathCount != 12 {
					t.Errorf("cycle fields mangled: %+v", got)
				}
				if got.Parameters.Rate != 18 || got.PulseUS != 1480 || got.TargetUS != 1460 {
					t.Errorf("value fields mangled: %+v", got)
				}
			},
		},
		{
			name: "normalizes timestamp to UTC",
			srcState: models.VentilatorState{
				Phase:     models.PhaseStopped,
				UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", -3*3600)),
			},
			assertFunc: func(t *testing.T, got models.VentilatorState, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.UpdatedAt.Location() != time.UTC {
					t.Errorf("UpdatedAt must be UTC, got %v", got.UpdatedAt.Location())
				}
				want := time.Date(2026, 1, 2, 6, 4, 5, 0, time.UTC)
				if !got.UpdatedAt.Equal(want) {
					t.Errorf("UpdatedAt: want %v, got %v", want, got.UpdatedAt)
				}
			},
		},
		{
			name:     "fills zero timestamp",
			srcState: models.VentilatorState{Phase: models.PhaseStopped},
			assertFunc: func(t *testing.T, got models.VentilatorState, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.UpdatedAt.IsZero() {
					t.Fatalf("UpdatedAt must be filled, got zero")
				}
				if got.UpdatedAt.Location() != time.UTC {
					t.Errorf("UpdatedAt must be UTC, got %v", got.UpdatedAt.Location())
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			src := &monitoringSourceStub{state: tc.srcState}
			svc := NewMonitoringService(src)

			got, err := svc.State(ctx)
			tc.assertFunc(t, got, err)

			if src.calls != 1 {
				t.Fatalf("source polled %d times, want 1", src.calls)
			}
		})
	}
}

func TestToUTC(t *testing.T) {
	t.Parallel()

	t.Run("zero time is preserved", func(t *testing.T) {
		t.Parallel()
		var z time.Time
		if got := toUTC(z); !got.IsZero() {
			t.Fatalf("expected zero time, got %v", got)
		}
	})

	t.Run("non-zero converted to UTC", func(t *testing.T) {
		t.Parallel()
		local := time.Date(2026, 2, 3, 10, 0, 0, 0, time.FixedZone("Z+2", 2*3600))
		got := toUTC(local)
		want := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)
		if got.Location() != time.UTC {
			t.Fatalf("expected UTC location, got %v", got.Location())
		}
		if !got.Equal(want) {
			t.Fatalf("want %v, got %v", want, got)
		}
	})
}
