// chime_clock_test.go - Tests for the virtual clock.

package main

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestVirtualClockFiresInOrder(t *testing.T) {
	start := time.Unix(0, 0)
	clock := NewVirtualClock(start)
	second := clock.NewTicker(time.Second)
	quarter := clock.NewTicker(250 * time.Millisecond)

	var (
		mu    sync.Mutex
		order []string
		wg    sync.WaitGroup
	)
	quit := make(chan struct{})
	wg.Go(func() {
		for {
			select {
			case <-quit:
				return
			case tick := <-second.C():
				mu.Lock()
				order = append(order, fmt.Sprintf("s@%v", tick.Sub(start)))
				mu.Unlock()
			case tick := <-quarter.C():
				mu.Lock()
				order = append(order, fmt.Sprintf("q@%v", tick.Sub(start)))
				mu.Unlock()
			}
		}
	})

	clock.Advance(time.Second)
	close(quit)
	wg.Wait()
	second.Stop()
	quarter.Stop()

	want := []string{"q@250ms", "q@500ms", "q@750ms", "s@1s", "q@1s"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if got := clock.Now().Sub(start); got != time.Second {
		t.Fatalf("now = %v, want 1s", got)
	}
}

func TestVirtualClockStoppedTickerDoesNotBlock(t *testing.T) {
	clock := NewVirtualClock(time.Unix(0, 0))
	tk := clock.NewTicker(100 * time.Millisecond)
	if clock.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", clock.Pending())
	}
	tk.Stop()
	tk.Stop()
	if clock.Pending() != 0 {
		t.Fatalf("pending = %d after stop", clock.Pending())
	}

	done := make(chan struct{})
	go func() {
		clock.Advance(time.Second)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Advance blocked on a stopped ticker")
	}
}

func TestVirtualClockRejectsBadInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewTicker(0) should panic")
		}
	}()
	NewVirtualClock(time.Unix(0, 0)).NewTicker(0)
}

func TestRealClockTicks(t *testing.T) {
	c := RealClock()
	tk := c.NewTicker(time.Millisecond)
	defer tk.Stop()
	select {
	case <-tk.C():
	case <-time.After(2 * time.Second):
		t.Fatalf("real ticker never fired")
	}
	if c.Now().IsZero() {
		t.Fatalf("real clock returned zero time")
	}
}
