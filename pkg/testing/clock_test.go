package testing

import (
	"testing"
	"time"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	clk.Advance(100 * time.Millisecond)
	elapsed := clk.Now().Sub(start)

	if elapsed != 100*time.Millisecond {
		t.Errorf("expected 100ms elapsed, got %v", elapsed)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clk.Now())
	}
}

func TestFakeClock_TimersFireInDeadlineOrder(t *testing.T) {
	clk := NewFakeClock()
	var order []string
	clk.AfterFunc(300*time.Millisecond, func() { order = append(order, "late") })
	clk.AfterFunc(100*time.Millisecond, func() { order = append(order, "early") })
	clk.AfterFunc(time.Hour, func() { order = append(order, "never") })

	clk.Advance(50 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("no timer should fire yet, got %v", order)
	}

	clk.Advance(250 * time.Millisecond)
	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Errorf("unexpected firing order %v", order)
	}
	if clk.PendingTimers() != 1 {
		t.Errorf("expected 1 pending timer, got %d", clk.PendingTimers())
	}
}

func TestFakeClock_Stop(t *testing.T) {
	clk := NewFakeClock()
	fired := false
	timer := clk.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("first Stop should report true")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}
	clk.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}

	fired = false
	timer = clk.AfterFunc(time.Second, func() { fired = true })
	clk.Advance(time.Second)
	if !fired {
		t.Error("timer should fire at its deadline")
	}
	if timer.Stop() {
		t.Error("Stop after firing should report false")
	}
}
