// time_source.go - Wall-clock time samples and the second-aligned time source

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionChime
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	MS_PER_SECOND  = 1000
	MS_PER_MINUTE  = 60 * MS_PER_SECOND
	MS_PER_HOUR    = 60 * MS_PER_MINUTE
	MS_PER_DIAL    = 12 * MS_PER_HOUR
	SOURCE_LATENCY = 2 * time.Millisecond // fire just after the boundary, never before
)

var ErrInvalidClock = errors.New("invalid clock time")

// TimeSample is one reading of the 12-hour dial.
type TimeSample struct {
	Hours        int // 1..12
	Minutes      int
	Seconds      int
	Milliseconds int
}

// SampleFromTime converts a wall time to the 12-hour dial.
func SampleFromTime(t time.Time) TimeSample {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return TimeSample{
		Hours:        h,
		Minutes:      t.Minute(),
		Seconds:      t.Second(),
		Milliseconds: t.Nanosecond() / int(time.Millisecond),
	}
}

// ParseClock reads HH:MM:SS or HH:MM:SS.mmm. Hours 0..23 fold onto the dial.
func ParseClock(s string) (TimeSample, error) {
	var ts TimeSample
	n, err := fmt.Sscanf(s, "%d:%d:%d.%d", &ts.Hours, &ts.Minutes, &ts.Seconds, &ts.Milliseconds)
	if n < 3 {
		return TimeSample{}, fmt.Errorf("%w: %q: %v", ErrInvalidClock, s, err)
	}
	if ts.Hours < 0 || ts.Hours > 23 || ts.Minutes < 0 || ts.Minutes > 59 ||
		ts.Seconds < 0 || ts.Seconds > 59 || ts.Milliseconds < 0 || ts.Milliseconds > 999 {
		return TimeSample{}, fmt.Errorf("%w: %q out of range", ErrInvalidClock, s)
	}
	return ts.Add(0), nil
}

func (t TimeSample) MinuteTens() int { return t.Minutes / 10 }
func (t TimeSample) MinuteOnes() int { return t.Minutes % 10 }
func (t TimeSample) SecondTens() int { return t.Seconds / 10 }
func (t TimeSample) SecondOnes() int { return t.Seconds % 10 }

// dialMillis is the position on the dial in milliseconds, 0 at 12:00:00.
func (t TimeSample) dialMillis() int64 {
	ms := int64(t.Hours%12)*MS_PER_HOUR + int64(t.Minutes)*MS_PER_MINUTE +
		int64(t.Seconds)*MS_PER_SECOND + int64(t.Milliseconds)
	return ((ms % MS_PER_DIAL) + MS_PER_DIAL) % MS_PER_DIAL
}

// Add advances the sample by d with carry, wrapping 12 to 1.
func (t TimeSample) Add(d time.Duration) TimeSample {
	ms := (t.dialMillis() + d.Milliseconds()) % MS_PER_DIAL
	if ms < 0 {
		ms += MS_PER_DIAL
	}
	h := int(ms / MS_PER_HOUR)
	if h == 0 {
		h = 12
	}
	return TimeSample{
		Hours:        h,
		Minutes:      int(ms / MS_PER_MINUTE % 60),
		Seconds:      int(ms / MS_PER_SECOND % 60),
		Milliseconds: int(ms % MS_PER_SECOND),
	}
}

// Quarter returns which 250 ms slice of the second the sample is in.
func (t TimeSample) Quarter() int {
	return min(max(t.Milliseconds, 0), MS_PER_SECOND-1) / 250
}

func (t TimeSample) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hours, t.Minutes, t.Seconds, t.Milliseconds)
}

// WallTimeSource pushes a sample at start and then just after every second
// boundary of the wall clock.
type WallTimeSource struct {
	now  func() time.Time
	push func(TimeSample)

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	running  bool
}

func NewWallTimeSource(push func(TimeSample)) *WallTimeSource {
	return &WallTimeSource{
		now:  time.Now,
		push: push,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// StartFrom makes the source read ts at the moment it is called and run on
// from there at wall-clock pace. Call before Start.
func (s *WallTimeSource) StartFrom(ts TimeSample) {
	base := time.Now()
	dial := time.Date(2000, time.January, 1, ts.Hours%12, ts.Minutes, ts.Seconds,
		ts.Milliseconds*int(time.Millisecond), time.Local)
	s.now = func() time.Time { return dial.Add(time.Since(base)) }
}

func (s *WallTimeSource) Start() {
	s.running = true
	go s.run()
}

func (s *WallTimeSource) run() {
	defer close(s.done)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-timer.C:
			now := s.now()
			s.push(SampleFromTime(now))
			timer.Reset(untilNextSecond(now) + SOURCE_LATENCY)
		}
	}
}

// Stop halts the source and waits for the goroutine to exit.
func (s *WallTimeSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.running {
			<-s.done
		}
	})
}

func untilNextSecond(t time.Time) time.Duration {
	return t.Truncate(time.Second).Add(time.Second).Sub(t)
}
