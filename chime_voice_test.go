// chime_voice_test.go - Tests for voice envelopes and parameter changes.

package main

import (
	"errors"
	"testing"
	"time"
)

func TestPadAttackAndLevelChange(t *testing.T) {
	sink := newFakeSink()
	v := newVoice(sink, CH_HOUR)

	v.SetTargetGain(0.4, v.levelRamp())
	gains := filterCalls(sink.snapshot(), "ramp", CH_HOUR, PARAM_GAIN)
	if len(gains) != 1 || gains[0].Dur != PAD_ATTACK || !approx(gains[0].Target, 0.4) {
		t.Fatalf("attack = %+v, want one 1.5s ramp to 0.4", gains)
	}

	sink.reset()
	v.SetTargetGain(0.2, v.levelRamp())
	gains = filterCalls(sink.snapshot(), "ramp", CH_HOUR, PARAM_GAIN)
	if len(gains) != 1 || gains[0].Dur != LEVEL_RAMP || !approx(gains[0].Target, 0.2) {
		t.Fatalf("level change = %+v, want one %v ramp to 0.2", gains, LEVEL_RAMP)
	}
	if v.TargetGain() != 0.2 {
		t.Fatalf("target = %v, want 0.2", v.TargetGain())
	}
}

func TestPluckStrikeSchedulesWholeNote(t *testing.T) {
	sink := newFakeSink()
	v := newVoice(sink, CH_MINUTE_ONES)

	v.SetTargetGain(0.5, v.levelRamp())
	calls := sink.snapshot()
	gains := filterCalls(calls, "ramp", CH_MINUTE_ONES, PARAM_GAIN)
	want := []sinkCall{
		{Target: 0.5, At: 0, Dur: PLUCK_ATTACK},
		{Target: 0.4, At: PLUCK_ATTACK, Dur: PLUCK_DECAY},
		{Target: 0, At: PLUCK_ATTACK + PLUCK_DECAY, Dur: PLUCK_RELEASE},
	}
	if len(gains) != len(want) {
		t.Fatalf("strike = %+v, want %d segments", gains, len(want))
	}
	for i, w := range want {
		if !approx(gains[i].Target, w.Target) || gains[i].At != w.At || gains[i].Dur != w.Dur {
			t.Fatalf("segment %d = %+v, want %+v", i, gains[i], w)
		}
	}
	if got := v.SettleAt(); got != PLUCK_ATTACK+PLUCK_DECAY+PLUCK_RELEASE {
		t.Fatalf("settle = %v", got)
	}
	if len(filterCalls(calls, "cancel", CH_MINUTE_ONES, PARAM_GAIN)) != 1 {
		t.Fatalf("strike must cancel pending gain automation first")
	}
}

func TestMalletAttackRaisedToMinimum(t *testing.T) {
	sink := newFakeSink()
	v := newVoice(sink, CH_SECOND_TENS)

	v.SetTargetGain(0.3, v.levelRamp())
	gains := filterCalls(sink.snapshot(), "ramp", CH_SECOND_TENS, PARAM_GAIN)
	if len(gains) != 2 {
		t.Fatalf("mallet = %+v, want attack and decay", gains)
	}
	if gains[0].Dur != GAIN_ATTACK_MIN {
		t.Fatalf("attack = %v, want %v", gains[0].Dur, GAIN_ATTACK_MIN)
	}
	if gains[1].Target != 0 || gains[1].Dur != MALLET_DECAY {
		t.Fatalf("decay = %+v, want to 0 over %v", gains[1], MALLET_DECAY)
	}
	checkRampMinimums(t, sink.snapshot())
}

func TestLiveTransientVolumeAppliesOnNextStrike(t *testing.T) {
	sink := newFakeSink()
	v := newVoice(sink, CH_SECOND_ONES)

	v.SetTargetGain(0.3, v.levelRamp())
	sink.reset()
	v.SetTargetGain(0.6, v.levelRamp())
	if calls := sink.snapshot(); len(calls) != 0 {
		t.Fatalf("volume change on a live note issued %+v", calls)
	}

	v.Silence(v.muteRamp())
	sink.reset()
	v.SetTargetGain(0.6, v.levelRamp())
	gains := filterCalls(sink.snapshot(), "ramp", CH_SECOND_ONES, PARAM_GAIN)
	if len(gains) == 0 || !approx(gains[0].Target, 0.6) {
		t.Fatalf("next strike = %+v, want peak 0.6", gains)
	}
}

func TestSilenceLeavesFrequency(t *testing.T) {
	sink := newFakeSink()
	v := newVoice(sink, CH_HOUR)
	v.SetFrequency(220, FREQ_RAMP_MIN)
	v.SetTargetGain(0.5, v.levelRamp())
	sink.reset()

	v.Silence(TOGGLE_OFF_RAMP)
	calls := sink.snapshot()
	if n := len(filterCalls(calls, "ramp", CH_HOUR, PARAM_FREQUENCY)); n != 0 {
		t.Fatalf("silence touched frequency %d times", n)
	}
	if v.Frequency() != 220 || v.TargetGain() != 0 {
		t.Fatalf("after silence freq=%v gain=%v", v.Frequency(), v.TargetGain())
	}
	if !v.Audible(100*time.Millisecond) || v.Audible(TOGGLE_OFF_RAMP) {
		t.Fatalf("voice should be audible only until the fade ends")
	}
}

func TestVoiceOpensLazily(t *testing.T) {
	sink := newFakeSink()
	sink.openErr = errors.New("graph not ready")
	v := newVoice(sink, CH_REFERENCE)

	v.SetFrequency(REFERENCE_HZ, FREQ_RAMP_MIN)
	if v.Open() || len(sink.snapshot()) != 0 {
		t.Fatalf("voice should stay closed while the sink refuses it")
	}

	sink.openErr = nil
	v.SetFrequency(REFERENCE_HZ, FREQ_RAMP_MIN)
	calls := sink.snapshot()
	if !v.Open() || calls[0].Op != "open" || calls[0].Kind != VOICE_SUSTAINED_PAD {
		t.Fatalf("calls = %+v, want open then automation", calls)
	}

	v.Release()
	if v.Open() || countOps(sink.snapshot(), "close") != 1 {
		t.Fatalf("release should close the voice once")
	}
}

func TestSetFrequencyIgnoresRest(t *testing.T) {
	sink := newFakeSink()
	v := newVoice(sink, CH_MINUTE_TENS)
	v.SetFrequency(0, FREQ_RAMP_MIN)
	v.SetFrequency(-5, FREQ_RAMP_MIN)
	if n := len(filterCalls(sink.snapshot(), "ramp", -1, PARAM_FREQUENCY)); n != 0 {
		t.Fatalf("rest frequencies issued %d ramps", n)
	}
}
