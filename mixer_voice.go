// mixer_voice.go - Per-voice automation timelines and oscillators for the PCM mixer

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

import "math"

const (
	TWO_PI = 2 * math.Pi

	PAD_DETUNE     = 0.003 // ratio of the second pad oscillator
	PAD_SUB_LEVEL  = 0.35
	PAD_HIGH_LEVEL = 0.12
	PAD_LFO_HZ     = 0.07
	PAD_CUTOFF_LO  = 500.0
	PAD_CUTOFF_HI  = 2200.0

	PLUCK_MOD_RATIO  = 2.0
	PLUCK_MOD_INDEX  = 2.4
	MALLET_MOD_RATIO = 3.5
	MALLET_MOD_INDEX = 3.0
)

// rampSegment is one linear move of a parameter, in frames.
type rampSegment struct {
	start, end int64
	from       float64
	target     float64
	active     bool
}

func (s *rampSegment) valueAt(frame int64) float64 {
	if frame >= s.end || s.end <= s.start {
		return s.target
	}
	if frame <= s.start {
		return s.from
	}
	return s.from + (s.target-s.from)*float64(frame-s.start)/float64(s.end-s.start)
}

// paramTimeline holds the current value of a parameter and the segments
// queued after it. Segments become active when the render frame reaches
// their start and take the value held at that moment as their origin.
type paramTimeline struct {
	value float64
	segs  []rampSegment
}

// cancel drops segments starting at or after frame and freezes any segment
// in flight there, so the parameter holds its value from that frame on.
func (tl *paramTimeline) cancel(frame int64) {
	kept := tl.segs[:0]
	for _, s := range tl.segs {
		switch {
		case s.start >= frame:
		case s.end <= frame:
			kept = append(kept, s)
		case s.active:
			s.target = s.valueAt(frame)
			s.end = frame
			kept = append(kept, s)
		default:
			s.end = frame
			kept = append(kept, s)
		}
	}
	tl.segs = kept
}

func (tl *paramTimeline) ramp(target float64, start, end int64) {
	tl.segs = append(tl.segs, rampSegment{start: start, end: max(end, start), target: target})
}

// at advances the timeline to frame and returns the parameter value there.
// Frames must be visited in increasing order.
func (tl *paramTimeline) at(frame int64) float64 {
	for len(tl.segs) > 0 {
		s := &tl.segs[0]
		if frame < s.start {
			break
		}
		if !s.active {
			s.from = tl.value
			s.active = true
		}
		if frame >= s.end {
			tl.value = s.target
			tl.segs = tl.segs[1:]
			continue
		}
		tl.value = s.valueAt(frame)
		break
	}
	return tl.value
}

// idle reports whether nothing is queued and the value is v.
func (tl *paramTimeline) idle(v float64) bool {
	return len(tl.segs) == 0 && tl.value == v
}

// mixerVoice renders one channel.
type mixerVoice struct {
	kind VoiceKind
	pan  float64 // -1 left .. 1 right

	freq paramTimeline
	gain paramTimeline

	phase    [3]float64
	modPhase float64
	lfoPhase float64
	lp       float64
}

func newMixerVoice(kind VoiceKind, pan float64) *mixerVoice {
	return &mixerVoice{kind: kind, pan: pan}
}

func (v *mixerVoice) timeline(p Param) *paramTimeline {
	if p == PARAM_FREQUENCY {
		return &v.freq
	}
	return &v.gain
}

// sample renders one mono frame.
func (v *mixerVoice) sample(frame int64, rate float64) float64 {
	hz := v.freq.at(frame)
	g := v.gain.at(frame)
	if hz <= 0 {
		return 0
	}
	inc := TWO_PI * hz / rate

	var s float64
	switch v.kind {
	case VOICE_SUSTAINED_PAD:
		s = v.pad(inc, rate)
	case VOICE_PLUCKED_TRANSIENT:
		s = v.fm(inc, PLUCK_MOD_RATIO, PLUCK_MOD_INDEX*g)
	default:
		s = v.fm(inc, MALLET_MOD_RATIO, MALLET_MOD_INDEX*g)
	}
	return s * g
}

// pad is two detuned sines with a sub octave and a faint twelfth, through a
// one-pole low-pass whose cutoff drifts with a slow LFO.
func (v *mixerVoice) pad(inc, rate float64) float64 {
	v.phase[0] = wrapPhase(v.phase[0] + inc)
	v.phase[1] = wrapPhase(v.phase[1] + inc*(1+PAD_DETUNE))
	v.phase[2] = wrapPhase(v.phase[2] + inc*0.5)
	v.lfoPhase = wrapPhase(v.lfoPhase + TWO_PI*PAD_LFO_HZ/rate)

	raw := 0.5*math.Sin(v.phase[0]) + 0.5*math.Sin(v.phase[1]) +
		PAD_SUB_LEVEL*math.Sin(v.phase[2]) + PAD_HIGH_LEVEL*math.Sin(3*v.phase[0])

	cutoff := PAD_CUTOFF_LO + (PAD_CUTOFF_HI-PAD_CUTOFF_LO)*0.5*(1+math.Sin(v.lfoPhase))
	v.lp += lpfCoeff(cutoff, rate) * (raw - v.lp)
	return v.lp
}

// fm is a two-operator FM tone; index tracks the gain so the attack is the
// brightest part of the note.
func (v *mixerVoice) fm(inc, ratio, index float64) float64 {
	v.phase[0] = wrapPhase(v.phase[0] + inc)
	v.modPhase = wrapPhase(v.modPhase + inc*ratio)
	return math.Sin(v.phase[0] + index*math.Sin(v.modPhase))
}

func lpfCoeff(f, rate float64) float64 {
	return 1 / (1 + 1/(TWO_PI*f/rate))
}

func wrapPhase(p float64) float64 {
	if p >= TWO_PI {
		p -= TWO_PI
	}
	return p
}

// softSat is a gentle saturation curve for the master bus.
func softSat(x float64) float64 {
	if x > 1 {
		return 1 - 1/(3*x)
	}
	if x < -1 {
		return -1 - 1/(3*x)
	}
	return x - x*x*x/3
}
