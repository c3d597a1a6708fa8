package geo

import (
	"math"
	"testing"
)

func TestDistanceIdenticalPoints(t *testing.T) {
	if d := DistanceM(-6.2, 106.816, -6.2, 106.816); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestDistanceOneDegreeLongitudeAtEquator(t *testing.T) {
	// One degree of longitude on the equator is ~111,195 m.
	d := DistanceM(0, 0, 0, 1)
	if d < 111195*0.99 || d > 111195*1.01 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestDistanceJakartaBandung(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := DistanceM(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100000 || d > 140000 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestBearingDueNorth(t *testing.T) {
	if b := BearingDeg(0, 0, 1, 0); b != 0 {
		t.Fatalf("expected due north, got %v", b)
	}
}

func TestBearingRange(t *testing.T) {
	cases := [][4]float64{
		{0, 0, 1, 1},
		{0, 0, -1, 1},
		{0, 0, -1, -1},
		{0, 0, 1, -1},
		{51.5, -0.1, 48.85, 2.35},
	}
	for _, c := range cases {
		b := BearingDeg(c[0], c[1], c[2], c[3])
		if b < 0 || b >= 360 {
			t.Fatalf("bearing out of range: %v", b)
		}
	}
}

func TestBearingIdenticalPointsIsNaN(t *testing.T) {
	if b := BearingDeg(10, 10, 10, 10); !math.IsNaN(b) {
		t.Fatalf("expected NaN for identical points, got %v", b)
	}
}

func TestAngleDiff(t *testing.T) {
	if d := AngleDiffDeg(350, 10); d != 20 {
		t.Fatalf("expected 20, got %v", d)
	}
	if d := AngleDiffDeg(0, 180); d != 180 {
		t.Fatalf("expected 180, got %v", d)
	}
}
