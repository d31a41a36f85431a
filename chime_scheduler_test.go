// chime_scheduler_test.go - Tests for digit alternation and time extrapolation.

package main

import (
	"testing"
	"time"
)

var schedEpoch = time.Unix(1_700_000_000, 0)

func newTestScheduler(t *testing.T) (*Scheduler, *VoicePool, *fakeSink, *ResumeGuard) {
	t.Helper()
	sink := newFakeSink()
	quit := make(chan struct{})
	t.Cleanup(func() { close(quit) })
	guard := NewResumeGuard(sink, testLogger(), quit)
	pool := NewVoicePool(sink, testLogger())
	return NewScheduler(pool, guard, DefaultSettings()), pool, sink, guard
}

func at(d time.Duration) time.Time { return schedEpoch.Add(d) }

func checkPairsExclusive(t *testing.T, pool *VoicePool, when string) {
	t.Helper()
	if pool.TargetGain(CH_MINUTE_TENS) > 0 && pool.TargetGain(CH_MINUTE_ONES) > 0 {
		t.Fatalf("%s: both minute channels hold gain", when)
	}
	if pool.TargetGain(CH_SECOND_TENS) > 0 && pool.TargetGain(CH_SECOND_ONES) > 0 {
		t.Fatalf("%s: both second channels hold gain", when)
	}
}

func TestSchedulerMinuteAndSecondDigits(t *testing.T) {
	s, pool, _, _ := newTestScheduler(t)
	s.SetTime(mustSample(t, "03:35:42"), at(0))
	s.Refresh(at(0))

	expect := func(when string, ch Channel, hz float64, live bool) {
		t.Helper()
		if live && (pool.TargetGain(ch) == 0 || pool.Frequency(ch) != hz) {
			t.Fatalf("%s: %s gain=%v freq=%v, want live at %v", when, ch, pool.TargetGain(ch), pool.Frequency(ch), hz)
		}
		if !live && pool.TargetGain(ch) != 0 {
			t.Fatalf("%s: %s should be silent, gain=%v", when, ch, pool.TargetGain(ch))
		}
	}

	expect("start", CH_REFERENCE, REFERENCE_HZ, true)
	expect("start", CH_HOUR, 155.56, true)
	expect("start", CH_MINUTE_TENS, 329.63, true)
	expect("start", CH_MINUTE_ONES, 0, false)
	expect("start", CH_SECOND_TENS, 698.46, true)
	expect("start", CH_SECOND_ONES, 0, false)

	s.QuarterTick(at(250 * time.Millisecond))
	expect("quarter 1", CH_SECOND_TENS, 0, false)
	expect("quarter 1", CH_SECOND_ONES, 1174.66, true)
	expect("quarter 1", CH_MINUTE_TENS, 329.63, true)

	s.QuarterTick(at(500 * time.Millisecond))
	expect("quarter 2", CH_SECOND_TENS, 698.46, true)
	expect("quarter 2", CH_SECOND_ONES, 0, false)

	s.SecondTick(at(time.Second))
	expect("second 43", CH_MINUTE_TENS, 0, false)
	expect("second 43", CH_MINUTE_ONES, 783.99, true)
	expect("second 43", CH_HOUR, 155.56, true)
}

func TestSchedulerMutesOutgoingFirst(t *testing.T) {
	s, _, sink, _ := newTestScheduler(t)
	s.SetTime(mustSample(t, "03:35:42"), at(0))
	s.Refresh(at(0))
	sink.reset()

	s.QuarterTick(at(250 * time.Millisecond))
	calls := sink.snapshot()
	firstOf := func(ch Channel) int {
		for i, c := range calls {
			if c.Ch == ch && c.Op != "open" {
				return i
			}
		}
		return -1
	}
	tens, ones := firstOf(CH_SECOND_TENS), firstOf(CH_SECOND_ONES)
	if tens < 0 || ones < 0 || tens > ones {
		t.Fatalf("tens first call %d, ones first call %d; outgoing must be muted first", tens, ones)
	}
}

func TestSchedulerPairsNeverOverlap(t *testing.T) {
	s, pool, sink, _ := newTestScheduler(t)
	start := mustSample(t, "11:58:57.000")
	s.SetTime(start, at(0))
	s.Refresh(at(0))

	for q := 1; q <= 4*8; q++ {
		now := time.Duration(q) * QUARTER_TICK
		if q%4 == 0 {
			s.SetTime(start.Add(now), at(now))
			s.SecondTick(at(now))
		}
		s.QuarterTick(at(now))
		checkPairsExclusive(t, pool, start.Add(now).String())
	}
	checkRampMinimums(t, sink.snapshot())
}

func TestSchedulerExtrapolatesAcrossBoundary(t *testing.T) {
	s, pool, _, _ := newTestScheduler(t)
	s.SetTime(mustSample(t, "12:34:59.900"), at(0))
	s.Refresh(at(0))

	s.SecondTick(at(50 * time.Millisecond))
	s.QuarterTick(at(50 * time.Millisecond))
	if pool.TargetGain(CH_MINUTE_ONES) == 0 || pool.Frequency(CH_MINUTE_ONES) != 698.46 {
		t.Fatalf("inside second 59 the minute ones should play 4, got %v", pool.Frequency(CH_MINUTE_ONES))
	}
	if pool.Frequency(CH_SECOND_ONES) != 2349.32 {
		t.Fatalf("quarter 3 of second 59 should play ones 9, got %v", pool.Frequency(CH_SECOND_ONES))
	}

	// No new sample yet, but wall time is now 12:35:00.050.
	s.QuarterTick(at(150 * time.Millisecond))
	s.SecondTick(at(150 * time.Millisecond))
	if got, _ := s.Applied(); got.Minutes != 35 || got.Seconds != 0 {
		t.Fatalf("applied %v, want 12:35:00", got)
	}
	if pool.TargetGain(CH_SECOND_TENS) != 0 || pool.TargetGain(CH_SECOND_ONES) != 0 {
		t.Fatalf("second 00 is a rest on both channels")
	}
	if pool.TargetGain(CH_MINUTE_ONES) != 0 || pool.Frequency(CH_MINUTE_ONES) == 783.99 {
		t.Fatalf("minute ones must not sound 5 on an even second")
	}
	if pool.TargetGain(CH_MINUTE_TENS) == 0 || pool.Frequency(CH_MINUTE_TENS) != 329.63 {
		t.Fatalf("minute tens should play 3, got %v", pool.Frequency(CH_MINUTE_TENS))
	}
}

func TestSchedulerExtrapolationCap(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)
	if _, ok := s.TimeAt(at(0)); ok {
		t.Fatalf("no sample yet, TimeAt should report false")
	}
	sample := mustSample(t, "07:15:30")
	s.SetTime(sample, at(0))
	got, _ := s.TimeAt(at(10 * time.Second))
	if want := sample.Add(MAX_EXTRAPOLATION); got != want {
		t.Fatalf("TimeAt = %v, want %v", got, want)
	}
	got, _ = s.TimeAt(at(-time.Second))
	if got != sample {
		t.Fatalf("TimeAt before receipt = %v, want %v", got, sample)
	}
}

func TestSchedulerRestDigits(t *testing.T) {
	s, pool, _, _ := newTestScheduler(t)
	s.SetTime(mustSample(t, "03:40:01"), at(0))
	s.Refresh(at(0))
	if pool.TargetGain(CH_MINUTE_ONES) != 0 || pool.TargetGain(CH_MINUTE_TENS) != 0 {
		t.Fatalf("minute ones 0 on an odd second must rest")
	}
	if pool.TargetGain(CH_SECOND_TENS) != 0 {
		t.Fatalf("second tens 0 must rest")
	}
	s.QuarterTick(at(250 * time.Millisecond))
	if pool.TargetGain(CH_SECOND_ONES) == 0 {
		t.Fatalf("second ones 1 should sound")
	}
	s.SecondTick(at(time.Second))
	if pool.TargetGain(CH_MINUTE_TENS) == 0 || pool.Frequency(CH_MINUTE_TENS) != 349.23 {
		t.Fatalf("minute tens 4 should sound on an even second")
	}
}

func TestSchedulerChannelsAreIndependent(t *testing.T) {
	s, pool, sink, _ := newTestScheduler(t)
	s.SetTime(mustSample(t, "09:21:10"), at(0))
	s.Refresh(at(0))
	refGain := pool.TargetGain(CH_REFERENCE)
	sink.reset()

	s.SetSettings(DefaultSettings().Toggle(GROUP_HOUR))
	s.Refresh(at(0))
	calls := sink.snapshot()
	for _, c := range calls {
		if c.Ch != CH_HOUR {
			t.Fatalf("hour toggle touched %s: %+v", c.Ch, c)
		}
	}
	if pool.TargetGain(CH_HOUR) != 0 || pool.TargetGain(CH_REFERENCE) != refGain {
		t.Fatalf("hour=%v reference=%v", pool.TargetGain(CH_HOUR), pool.TargetGain(CH_REFERENCE))
	}
	if pool.Frequency(CH_HOUR) != 220.00 {
		t.Fatalf("toggle off must leave the hour pitch, got %v", pool.Frequency(CH_HOUR))
	}
}

func TestSchedulerWaitsForSuspendedDevice(t *testing.T) {
	s, pool, sink, guard := newTestScheduler(t)
	sink.setState(DEVICE_SUSPENDED)
	gate := make(chan struct{})
	sink.mu.Lock()
	sink.gate = gate
	sink.mu.Unlock()
	sink.reset()

	s.SetTime(mustSample(t, "05:05:05"), at(0))
	s.Refresh(at(0))
	s.QuarterTick(at(QUARTER_TICK))
	if calls := sink.snapshot(); len(calls) != 0 {
		t.Fatalf("suspended device received %+v", calls)
	}
	if !s.Dirty() || !guard.Pending() {
		t.Fatalf("dirty=%v pending=%v, want both", s.Dirty(), guard.Pending())
	}

	close(gate)
	if !guard.HandleResult(<-guard.Results()) {
		t.Fatalf("resume should report the device running")
	}
	if sink.resumeCount() != 1 {
		t.Fatalf("resume attempted %d times, want 1", sink.resumeCount())
	}

	s.QuarterTick(at(2 * QUARTER_TICK))
	if s.Dirty() {
		t.Fatalf("state still dirty after a ready tick")
	}
	if pool.TargetGain(CH_REFERENCE) == 0 || pool.TargetGain(CH_HOUR) == 0 {
		t.Fatalf("a quarter tick after recovery must reapply the pads too")
	}
}

func TestSecondAlternationPhases(t *testing.T) {
	for ms, want := range map[int]bool{0: false, 249: false, 250: true, 499: true, 500: false, 750: true, 999: true} {
		if got := SecondOnesLive(TimeSample{Hours: 1, Milliseconds: ms}); got != want {
			t.Fatalf("SecondOnesLive(ms=%d) = %v, want %v", ms, got, want)
		}
	}
	for sec, want := range map[int]bool{0: false, 1: true, 42: false, 59: true} {
		if got := MinuteOnesLive(TimeSample{Hours: 1, Seconds: sec}); got != want {
			t.Fatalf("MinuteOnesLive(s=%d) = %v, want %v", sec, got, want)
		}
	}
}
