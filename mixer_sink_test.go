// mixer_sink_test.go - Tests for the software mixer render sink.

package main

import (
	"errors"
	"math"
	"testing"
	"time"
)

const testRate = 8000

func TestParamTimelineLinearRamp(t *testing.T) {
	var tl paramTimeline
	tl.ramp(1, 0, 100)

	tests := []struct {
		frame int64
		want  float64
	}{
		{0, 0},
		{25, 0.25},
		{50, 0.5},
		{99, 0.99},
		{100, 1},
		{150, 1},
	}
	for _, tt := range tests {
		if got := tl.at(tt.frame); !approx(got, tt.want) {
			t.Fatalf("at(%d) = %v, want %v", tt.frame, got, tt.want)
		}
	}
	if !tl.idle(1) {
		t.Fatalf("timeline should be idle at 1 after the ramp")
	}
}

func TestParamTimelineChainedSegments(t *testing.T) {
	var tl paramTimeline
	tl.ramp(1, 10, 20)
	tl.ramp(0.5, 20, 30)

	if got := tl.at(5); got != 0 {
		t.Fatalf("before first segment = %v", got)
	}
	if got := tl.at(20); got != 1 {
		t.Fatalf("end of first segment = %v", got)
	}
	if got := tl.at(25); !approx(got, 0.75) {
		t.Fatalf("mid second segment = %v", got)
	}
	if got := tl.at(40); got != 0.5 {
		t.Fatalf("after chain = %v", got)
	}
}

func TestParamTimelineCancelFreezes(t *testing.T) {
	var tl paramTimeline
	tl.ramp(1, 0, 100)
	tl.ramp(0, 100, 200)
	tl.at(0)
	tl.at(40)

	tl.cancel(40)
	if len(tl.segs) != 1 {
		t.Fatalf("cancel kept %d segments, want the frozen one", len(tl.segs))
	}
	for _, f := range []int64{40, 60, 300} {
		if got := tl.at(f); !approx(got, 0.4) {
			t.Fatalf("at(%d) after cancel = %v, want 0.4", f, got)
		}
	}

	tl.ramp(0, 300, 310)
	if got := tl.at(310); got != 0 {
		t.Fatalf("ramp after cancel = %v", got)
	}
}

func TestMixerSinkDeviceStates(t *testing.T) {
	m := NewMixerSink(testRate)
	if st := m.State(); st != DEVICE_UNAVAILABLE {
		t.Fatalf("no output: %v", st)
	}
	if err := m.Resume(); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("resume without output = %v", err)
	}

	out := &OfflineOutput{}
	m.AttachOutput(out)
	if st := m.State(); st != DEVICE_SUSPENDED {
		t.Fatalf("unstarted output: %v", st)
	}
	if err := m.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if st := m.State(); st != DEVICE_RUNNING {
		t.Fatalf("after resume: %v", st)
	}
	if err := m.Suspend(); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if st := m.State(); st != DEVICE_SUSPENDED {
		t.Fatalf("after suspend: %v", st)
	}

	m.Close()
	if st := m.State(); st != DEVICE_CLOSED {
		t.Fatalf("after close: %v", st)
	}
	if err := m.Resume(); !errors.Is(err, ErrSinkClosed) {
		t.Fatalf("resume after close = %v", err)
	}
	if err := m.OpenVoice(CH_HOUR, VOICE_SUSTAINED_PAD); !errors.Is(err, ErrSinkClosed) {
		t.Fatalf("open after close = %v", err)
	}
	if out.IsStarted() {
		t.Fatalf("closing the sink should stop the output")
	}
}

func TestMixerSinkOpenVoiceRange(t *testing.T) {
	m := NewMixerSink(testRate)
	if err := m.OpenVoice(NUM_CHANNELS, VOICE_MALLET_TRANSIENT); err == nil {
		t.Fatalf("open out of range channel succeeded")
	}
	// automation on a voice that was never opened is ignored
	m.Ramp(CH_HOUR, PARAM_GAIN, 1, 0, 0)
	m.Cancel(CH_HOUR, PARAM_GAIN, 0)
	if got := m.VoiceLevels()[CH_HOUR]; got != 0 {
		t.Fatalf("unopened voice level = %v", got)
	}
}

func TestMixerSinkClockCountsFrames(t *testing.T) {
	m := NewMixerSink(testRate)
	if m.CurrentTime() != 0 {
		t.Fatalf("fresh sink time = %v", m.CurrentTime())
	}
	m.Render(make([]float32, 2*testRate/2))
	if got := m.CurrentTime(); got != 500*time.Millisecond {
		t.Fatalf("after half a second of frames: %v", got)
	}

	buf := make([]byte, 100*BYTES_PER_FRAME+3)
	n, err := m.Read(buf)
	if err != nil || n != 100*BYTES_PER_FRAME {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if got := m.CurrentTime(); got != 500*time.Millisecond+100*time.Second/testRate {
		t.Fatalf("after Read: %v", got)
	}
}

func TestMixerSinkRendersPannedVoice(t *testing.T) {
	m := NewMixerSink(testRate)
	if err := m.OpenVoice(CH_SECOND_ONES, VOICE_MALLET_TRANSIENT); err != nil {
		t.Fatalf("open: %v", err)
	}
	m.Ramp(CH_SECOND_ONES, PARAM_FREQUENCY, 1046.50, 0, FREQ_RAMP_MIN)
	m.Ramp(CH_SECOND_ONES, PARAM_GAIN, 1, 0, GAIN_ATTACK_MIN)

	// shorter than the shortest comb delay, so the output is dry
	const frames = 800
	out := make([]float32, 2*frames)
	if n := m.Render(out); n != frames {
		t.Fatalf("rendered %d frames", n)
	}
	var left, right float64
	for i := 0; i < frames; i++ {
		l, r := float64(out[2*i]), float64(out[2*i+1])
		if math.Abs(l) > 1 || math.Abs(r) > 1 {
			t.Fatalf("frame %d out of range: %v %v", i, l, r)
		}
		left += l * l
		right += r * r
	}
	if right < 1e-3 {
		t.Fatalf("voice rendered silence (energy %v)", right)
	}
	if right <= left {
		t.Fatalf("right-panned voice: left energy %v >= right %v", left, right)
	}
	if got := m.VoiceLevels()[CH_SECOND_ONES]; got != 1 {
		t.Fatalf("level after attack = %v", got)
	}
}

func TestMixerSinkRampStartsNoEarlierThanNow(t *testing.T) {
	m := NewMixerSink(testRate)
	m.OpenVoice(CH_HOUR, VOICE_SUSTAINED_PAD)
	m.Render(make([]float32, 2*400))

	m.Ramp(CH_HOUR, PARAM_GAIN, 1, 0, 0)
	if got := m.VoiceLevels()[CH_HOUR]; got != 0 {
		t.Fatalf("level moved before rendering: %v", got)
	}
	m.Render(make([]float32, 2))
	if got := m.VoiceLevels()[CH_HOUR]; got != 1 {
		t.Fatalf("past ramp not applied at the current frame: %v", got)
	}
}

func TestMixerSinkCancelHoldsLevel(t *testing.T) {
	m := NewMixerSink(testRate)
	m.OpenVoice(CH_REFERENCE, VOICE_SUSTAINED_PAD)
	m.Ramp(CH_REFERENCE, PARAM_GAIN, 1, 0, time.Second)
	m.Render(make([]float32, 2*testRate/2))

	m.Cancel(CH_REFERENCE, PARAM_GAIN, 0)
	m.Render(make([]float32, 2*testRate/4))
	if got := m.VoiceLevels()[CH_REFERENCE]; !approx(got, 0.5) {
		t.Fatalf("level after cancel = %v, want 0.5", got)
	}

	m.CloseVoice(CH_REFERENCE)
	if got := m.VoiceLevels()[CH_REFERENCE]; got != 0 {
		t.Fatalf("closed voice level = %v", got)
	}
}

func TestMixerSinkStrikeStartsOnTargetPitch(t *testing.T) {
	m := NewMixerSink(testRate)
	p := NewVoicePool(m, testLogger())
	frame := make([]float32, MIXER_CHANNELS)

	// checkOnset renders until the attack has peaked and fails if the voice
	// is ever heard away from hz.
	checkOnset := func(hz float64) {
		t.Helper()
		peaked := false
		for range testRate / 10 {
			m.Render(frame)
			v := m.voices[CH_SECOND_ONES]
			g, f := v.gain.value, v.freq.value
			if g > 0 && f != hz {
				t.Fatalf("heard at %.2f Hz (gain %.3f), want %.2f Hz", f, g, hz)
			}
			peaked = peaked || approx(g, 0.5)
		}
		if !peaked {
			t.Fatalf("attack never reached its peak")
		}
	}

	p.UpdateChannel(CH_SECOND_ONES, true, 0.5, 9)
	checkOnset(2349.32)

	p.UpdateChannel(CH_SECOND_ONES, true, 0.5, 0)
	m.Render(make([]float32, 2*testRate))

	p.UpdateChannel(CH_SECOND_ONES, true, 0.5, 1)
	checkOnset(1046.50)
}

func TestMixerSinkClockSurvivesLongRuns(t *testing.T) {
	m := NewMixerSink(SAMPLE_RATE)
	week := 7 * 24 * time.Hour
	m.frames = int64(week/time.Second) * SAMPLE_RATE

	if got := m.CurrentTime(); got != week {
		t.Fatalf("CurrentTime after a week = %v", got)
	}
	if got := m.toFrame(week + 500*time.Millisecond); got != m.frames+SAMPLE_RATE/2 {
		t.Fatalf("toFrame past a week = %d, want %d", got, m.frames+SAMPLE_RATE/2)
	}

	if got := m.frameTime(m.frames + SAMPLE_RATE/4); got != week+250*time.Millisecond {
		t.Fatalf("frameTime past a week = %v", got)
	}
}
