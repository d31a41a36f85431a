// time_source_test.go - Tests for time samples and the wall-clock source.

package main

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestTimeSampleAdd(t *testing.T) {
	tests := []struct {
		start string
		d     time.Duration
		want  string
	}{
		{"03:35:42", 250 * time.Millisecond, "03:35:42.250"},
		{"03:35:59.900", 200 * time.Millisecond, "03:36:00.100"},
		{"03:59:59.999", time.Millisecond, "04:00:00.000"},
		{"12:59:59.500", time.Second, "01:00:00.500"},
		{"11:59:59", time.Second, "12:00:00.000"},
		{"01:00:00", -time.Second, "12:59:59.000"},
	}
	for _, tt := range tests {
		got := mustSample(t, tt.start).Add(tt.d).String()
		if got != tt.want {
			t.Fatalf("%s + %v = %s, want %s", tt.start, tt.d, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want TimeSample
	}{
		{"03:35:42", TimeSample{3, 35, 42, 0}},
		{"12:34:59.900", TimeSample{12, 34, 59, 900}},
		{"00:05:00", TimeSample{12, 5, 0, 0}},
		{"13:00:01.5", TimeSample{1, 0, 1, 5}},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseClock(%q) = %+v, %v; want %+v", tt.in, got, err, tt.want)
		}
	}

	for _, bad := range []string{"", "12:30", "24:00:00", "10:60:00", "10:00:61", "10:00:00.1000", "noon"} {
		if _, err := ParseClock(bad); !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("ParseClock(%q) err = %v", bad, err)
		}
	}
}

func TestSampleFromTime(t *testing.T) {
	tests := []struct {
		hour  int
		wantH int
	}{
		{0, 12},
		{1, 1},
		{12, 12},
		{13, 1},
		{23, 11},
	}
	for _, tt := range tests {
		wall := time.Date(2026, time.March, 1, tt.hour, 7, 9, 640*int(time.Millisecond), time.UTC)
		got := SampleFromTime(wall)
		want := TimeSample{tt.wantH, 7, 9, 640}
		if got != want {
			t.Fatalf("hour %d: %+v, want %+v", tt.hour, got, want)
		}
	}
}

func TestTimeSampleDigitsAndQuarter(t *testing.T) {
	ts := mustSample(t, "09:47:38.760")
	if ts.MinuteTens() != 4 || ts.MinuteOnes() != 7 || ts.SecondTens() != 3 || ts.SecondOnes() != 8 {
		t.Fatalf("digits of %s wrong", ts)
	}
	for ms, want := range map[int]int{0: 0, 249: 0, 250: 1, 499: 1, 500: 2, 760: 3, 999: 3} {
		ts.Milliseconds = ms
		if got := ts.Quarter(); got != want {
			t.Fatalf("Quarter(%d ms) = %d, want %d", ms, got, want)
		}
	}
}

func TestUntilNextSecond(t *testing.T) {
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	if got := untilNextSecond(base.Add(300 * time.Millisecond)); got != 700*time.Millisecond {
		t.Fatalf("from .300 = %v", got)
	}
	if got := untilNextSecond(base); got != time.Second {
		t.Fatalf("on the boundary = %v", got)
	}
}

func TestWallTimeSourcePushesAndStops(t *testing.T) {
	var mu sync.Mutex
	var got []TimeSample
	first := make(chan struct{})
	src := NewWallTimeSource(func(ts TimeSample) {
		mu.Lock()
		got = append(got, ts)
		n := len(got)
		mu.Unlock()
		if n == 1 {
			close(first)
		}
	})
	src.StartFrom(mustSample(t, "07:15:30"))
	src.Start()

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatalf("no sample pushed at start")
	}
	src.Stop()
	src.Stop()

	mu.Lock()
	n := len(got)
	ts := got[0]
	mu.Unlock()
	if ts.Hours != 7 || ts.Minutes != 15 || ts.Seconds != 30 {
		t.Fatalf("first sample = %s, want 07:15:30", ts)
	}
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(got) != n {
		t.Fatalf("source pushed after Stop")
	}
}

func TestWallTimeSourceStopBeforeStart(t *testing.T) {
	src := NewWallTimeSource(func(TimeSample) {})
	src.Stop()
}
