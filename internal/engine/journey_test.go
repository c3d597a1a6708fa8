package engine

import "testing"

func TestAggregatorDistanceNeverRegresses(t *testing.T) {
	a := NewAggregator(0)
	a.SetDistance(10)
	a.SetDistance(8)
	a.SetDistance(12)

	if got := a.Snapshot().TotalDistanceM; got != 12 {
		t.Fatalf("expected 12, got %v", got)
	}
}

func TestAggregatorCountsMonotonic(t *testing.T) {
	a := NewAggregator(0)
	a.Emit(Event{Kind: EventBump})
	a.Emit(Event{Kind: EventBump})
	a.Emit(Event{Kind: EventSharpTurn})

	counts := a.Snapshot().Counts
	if counts[EventBump] != 2 || counts[EventSharpTurn] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestAggregatorAverageSpeed(t *testing.T) {
	a := NewAggregator(1000)
	a.AddSpeed(1)
	a.AddSpeed(2)
	a.AddSpeed(3)

	sum := a.Finalize(61000)
	if sum.AverageSpeedMps != 2 {
		t.Fatalf("expected average 2, got %v", sum.AverageSpeedMps)
	}
	if sum.MaxSpeedMps != 3 {
		t.Fatalf("expected max 3, got %v", sum.MaxSpeedMps)
	}
	if sum.DurationSec != 60 {
		t.Fatalf("expected 60 s duration, got %v", sum.DurationSec)
	}
}

func TestAggregatorEmptySpeedAverageIsZero(t *testing.T) {
	a := NewAggregator(0)
	if sum := a.Finalize(1000); sum.AverageSpeedMps != 0 {
		t.Fatalf("expected zero average for no samples")
	}
}

func TestAggregatorFinalizeIsIdempotent(t *testing.T) {
	a := NewAggregator(0)
	a.AddSpeed(2)
	first := a.Finalize(5000)

	// Mutations after finalize are ignored and the summary is stable.
	a.AddSpeed(100)
	a.SetDistance(999)
	a.Emit(Event{Kind: EventBump})
	second := a.Finalize(9000)

	if second.AverageSpeedMps != first.AverageSpeedMps ||
		second.EndedAtMs != first.EndedAtMs ||
		second.TotalDistanceM != first.TotalDistanceM ||
		second.Counts[EventBump] != 0 {
		t.Fatalf("finalize not idempotent: %+v vs %+v", first, second)
	}
}

func TestAggregatorRecordStopRejectsDegenerate(t *testing.T) {
	a := NewAggregator(0)
	a.recordStop(5000, 5000)
	a.recordStop(5000, 4000)
	if a.Snapshot().StopCount != 0 {
		t.Fatalf("degenerate stop recorded")
	}

	a.recordStop(5000, 21000)
	if a.Snapshot().StopCount != 1 {
		t.Fatalf("valid stop not recorded")
	}
}
