// chime_helpers_test.go - Recording render sink and helpers for chime tests.

package main

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type sinkCall struct {
	Op     string // open, cancel, ramp, close
	Ch     Channel
	Kind   VoiceKind
	Param  Param
	Target float64
	At     time.Duration
	Dur    time.Duration
}

// fakeSink records every call. Its clock is either set by hand or follows a
// VirtualClock.
type fakeSink struct {
	mu        sync.Mutex
	clock     *VirtualClock
	epoch     time.Time
	now       time.Duration
	state     DeviceState
	openErr   error
	resumeErr error
	gate      chan struct{}
	resumes   int
	calls     []sinkCall
	closed    bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{state: DEVICE_RUNNING}
}

func newClockedSink(clock *VirtualClock) *fakeSink {
	return &fakeSink{state: DEVICE_RUNNING, clock: clock, epoch: clock.Now()}
}

func (s *fakeSink) State() DeviceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSink) setState(st DeviceState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *fakeSink) Resume() error {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumes++
	if s.resumeErr != nil {
		return s.resumeErr
	}
	s.state = DEVICE_RUNNING
	return nil
}

func (s *fakeSink) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		return s.clock.Now().Sub(s.epoch)
	}
	return s.now
}

func (s *fakeSink) setNow(d time.Duration) {
	s.mu.Lock()
	s.now = d
	s.mu.Unlock()
}

func (s *fakeSink) OpenVoice(ch Channel, kind VoiceKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.calls = append(s.calls, sinkCall{Op: "open", Ch: ch, Kind: kind})
	return nil
}

func (s *fakeSink) Cancel(ch Channel, p Param, at time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{Op: "cancel", Ch: ch, Param: p, At: at})
}

func (s *fakeSink) Ramp(ch Channel, p Param, target float64, at, dur time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{Op: "ramp", Ch: ch, Param: p, Target: target, At: at, Dur: dur})
}

func (s *fakeSink) CloseVoice(ch Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{Op: "close", Ch: ch})
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSink) snapshot() []sinkCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkCall(nil), s.calls...)
}

func (s *fakeSink) reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func (s *fakeSink) resumeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumes
}

// filterCalls returns the calls matching op, channel and param. A negative
// channel matches all channels.
func filterCalls(calls []sinkCall, op string, ch Channel, p Param) []sinkCall {
	var out []sinkCall
	for _, c := range calls {
		if c.Op != op || (ch >= 0 && c.Ch != ch) {
			continue
		}
		if (op == "ramp" || op == "cancel") && c.Param != p {
			continue
		}
		out = append(out, c)
	}
	return out
}

func countOps(calls []sinkCall, op string) int {
	n := 0
	for _, c := range calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// checkRampMinimums fails on any ramp shorter than the legal minimum.
func checkRampMinimums(t *testing.T, calls []sinkCall) {
	t.Helper()
	for _, c := range calls {
		if c.Op != "ramp" {
			continue
		}
		floor := minimumRamp(c.Param, c.Param == PARAM_GAIN && c.Target <= 0)
		if c.Dur < floor {
			t.Fatalf("%s %s ramp to %.3f lasts %v, minimum %v", c.Ch, c.Param, c.Target, c.Dur, floor)
		}
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// lockedBuffer is a log sink safe for use from the engine goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func bufferLogger(b *lockedBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(b, nil))
}

func mustSample(t *testing.T, s string) TimeSample {
	t.Helper()
	ts, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", s, err)
	}
	return ts
}

// stepClock advances the virtual clock in quarter-tick steps so every tick
// is handled at the time it was due.
func stepClock(clock *VirtualClock, e *Engine, d time.Duration) {
	for ; d > 0; d -= QUARTER_TICK {
		clock.Advance(min(d, QUARTER_TICK))
		e.Snapshot()
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

// quarterDue returns when the clock's quarter ticker fires next.
func quarterDue(t *testing.T, c *VirtualClock) time.Time {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tk := range c.tickers {
		if tk.period == QUARTER_TICK {
			return tk.next
		}
	}
	t.Fatalf("no quarter ticker running")
	return time.Time{}
}

// checkSecondPair fails unless exactly the sub-channel that the snapshot's
// time selects is sounding.
func checkSecondPair(t *testing.T, snap EngineSnapshot) {
	t.Helper()
	ones := snap.Gains[CH_SECOND_ONES] > 0
	tens := snap.Gains[CH_SECOND_TENS] > 0
	if ones == tens || ones != SecondOnesLive(snap.Time) {
		t.Fatalf("at %v second pair gains = %.2f tens / %.2f ones", snap.Time,
			snap.Gains[CH_SECOND_TENS], snap.Gains[CH_SECOND_ONES])
	}
}
