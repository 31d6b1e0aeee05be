package service

import (
	"errors"
	"testing"
)

func TestCalibrationRegistry_SeedsDriveExtremes(t *testing.T) {
	t.Parallel()

	c := NewCalibrationRegistry(1000, 2000)
	got := c.Snapshot()

	if got.HomeUS != 2000 {
		t.Fatalf("home: got %d; want 2000", got.HomeUS)
	}
	if got.InhaleEndUS != 1000 {
		t.Fatalf("inhale_end: got %d; want 1000", got.InhaleEndUS)
	}
	if got.ExhaleEndUS != 2000 {
		t.Fatalf("exhale_end: got %d; want 2000", got.ExhaleEndUS)
	}
}

func TestCalibrationRegistry_SetClampsToDriveRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		point CalibrationPoint
		in    int
		want  int
	}{
		{name: "home below range", point: CalibrationHome, in: 500, want: 1000},
		{name: "home above range", point: CalibrationHome, in: 2500, want: 2000},
		{name: "inhale_end in range", point: CalibrationInhaleEnd, in: 1234, want: 1234},
		{name: "exhale_end at edge", point: CalibrationExhaleEnd, in: 2000, want: 2000},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := NewCalibrationRegistry(1000, 2000)
			got, err := c.Set(tc.point, tc.in)
			if err != nil {
				t.Fatalf("Set(%s, %d): %v", tc.point, tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("Set(%s, %d) = %d; want %d", tc.point, tc.in, got, tc.want)
			}
		})
	}
}

func TestCalibrationRegistry_UnknownPointRejected(t *testing.T) {
	t.Parallel()

	c := NewCalibrationRegistry(1000, 2000)
	_, err := c.Set(CalibrationPoint("shoulder"), 1500)
	if !errors.Is(err, ErrUnknownCalibrationPoint) {
		t.Fatalf("expected ErrUnknownCalibrationPoint; got %v", err)
	}
}

func TestCalibrationRegistry_NoCrossValidation(t *testing.T) {
	t.Parallel()

	// inhale_end on the far side of home is a legitimate rig: the registry
	// stores it without complaint.
	c := NewCalibrationRegistry(1000, 2000)
	if _, err := c.Set(CalibrationHome, 1200); err != nil {
		t.Fatalf("home: %v", err)
	}
	if _, err := c.Set(CalibrationInhaleEnd, 1800); err != nil {
		t.Fatalf("inhale_end: %v", err)
	}

	got := c.Snapshot()
	if got.HomeUS != 1200 || got.InhaleEndUS != 1800 {
		t.Fatalf("inverted calibration not preserved: %+v", got)
	}
}

func TestCalibrationRegistry_BadRangeFallsBack(t *testing.T) {
	t.Parallel()

	c := NewCalibrationRegistry(2000, 1000)
	got := c.Snapshot()
	if got.HomeUS != 2000 || got.InhaleEndUS != 1000 {
		t.Fatalf("fallback range not applied: %+v", got)
	}
}
