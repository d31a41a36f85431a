// chime_voice.go - Persistent per-channel voices and their envelopes

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

import "time"

// VoiceKind selects the envelope archetype and timbre of a voice.
type VoiceKind int

const (
	VOICE_SUSTAINED_PAD VoiceKind = iota
	VOICE_PLUCKED_TRANSIENT
	VOICE_MALLET_TRANSIENT
)

func (k VoiceKind) String() string {
	switch k {
	case VOICE_SUSTAINED_PAD:
		return "pad"
	case VOICE_PLUCKED_TRANSIENT:
		return "pluck"
	default:
		return "mallet"
	}
}

// Envelope timings
const (
	PAD_ATTACK  = 1500 * time.Millisecond
	PAD_RELEASE = 1500 * time.Millisecond

	PLUCK_ATTACK  = 50 * time.Millisecond
	PLUCK_DECAY   = 150 * time.Millisecond
	PLUCK_SUSTAIN = 0.8
	PLUCK_RELEASE = 750 * time.Millisecond

	MALLET_ATTACK = 15 * time.Millisecond
	MALLET_DECAY  = 150 * time.Millisecond

	TRANSIENT_MUTE_RAMP = 60 * time.Millisecond
)

// Envelope describes the gain shape of a voice. One-shot envelopes schedule
// the whole note when the voice is activated; sustained ones hold the target.
type Envelope struct {
	Attack  time.Duration
	Decay   time.Duration
	Sustain float64 // fraction of the peak reached after Decay
	Release time.Duration
	OneShot bool
}

var voiceEnvelopes = [...]Envelope{
	VOICE_SUSTAINED_PAD:     {Attack: PAD_ATTACK, Sustain: 1, Release: PAD_RELEASE},
	VOICE_PLUCKED_TRANSIENT: {Attack: PLUCK_ATTACK, Decay: PLUCK_DECAY, Sustain: PLUCK_SUSTAIN, Release: PLUCK_RELEASE, OneShot: true},
	VOICE_MALLET_TRANSIENT:  {Attack: MALLET_ATTACK, Decay: MALLET_DECAY, Sustain: 0, OneShot: true},
}

// KindFor returns the archetype bound to a channel.
func KindFor(ch Channel) VoiceKind {
	switch ch.Group() {
	case GROUP_REFERENCE, GROUP_HOUR:
		return VOICE_SUSTAINED_PAD
	case GROUP_MINUTE:
		return VOICE_PLUCKED_TRANSIENT
	default:
		return VOICE_MALLET_TRANSIENT
	}
}

// Voice is the single sound source of one channel. It lives from engine start
// to engine stop; only its frequency and target gain change.
type Voice struct {
	channel Channel
	kind    VoiceKind
	env     Envelope
	sink    RenderSink

	frequency  float64
	targetGain float64
	settleAt   time.Duration // sink time at which the last gain segment ends
	tunedAt    time.Duration // sink time at which the last frequency glide ends
	open       bool
}

func newVoice(sink RenderSink, ch Channel) *Voice {
	kind := KindFor(ch)
	return &Voice{channel: ch, kind: kind, env: voiceEnvelopes[kind], sink: sink}
}

// ensureOpen creates the voice on the sink the first time it is needed.
func (v *Voice) ensureOpen() error {
	if v.open {
		return nil
	}
	if v.sink == nil {
		return ErrDeviceUnavailable
	}
	if err := v.sink.OpenVoice(v.channel, v.kind); err != nil {
		return err
	}
	v.open = true
	return nil
}

func (v *Voice) Frequency() float64      { return v.frequency }
func (v *Voice) TargetGain() float64     { return v.targetGain }
func (v *Voice) Open() bool              { return v.open }
func (v *Voice) SettleAt() time.Duration { return v.settleAt }

// Audible reports whether the voice is held or still inside scheduled
// automation at sink time now.
func (v *Voice) Audible(now time.Duration) bool {
	return v.targetGain > 0 || now < v.settleAt
}

// SetFrequency glides the voice to hz.
func (v *Voice) SetFrequency(hz float64, ramp time.Duration) {
	if hz <= 0 || v.ensureOpen() != nil {
		return
	}
	v.tunedAt = rampFrequency(v.sink, v.channel, hz, ramp)
	v.frequency = hz
}

// SetTargetGain moves the voice towards gain. A transient voice going from
// silent to audible strikes a full note; a level change on a transient that is
// already live only takes effect on its next strike. A voice rising from
// silence waits for any pending frequency glide, so a note never starts on
// the previous pitch.
func (v *Voice) SetTargetGain(gain float64, ramp time.Duration) {
	gain = clamp01(gain)
	if gain == 0 {
		v.Silence(ramp)
		return
	}
	if v.ensureOpen() != nil {
		return
	}
	switch {
	case v.env.OneShot && v.targetGain == 0:
		v.strike(gain, ramp)
	case v.env.OneShot:
	case v.targetGain == 0:
		v.settleAt = supersedeFrom(v.sink, v.channel, PARAM_GAIN, v.tunedAt, Curve{Target: gain, Duration: ramp})
	default:
		v.settleAt = supersede(v.sink, v.channel, PARAM_GAIN, Curve{Target: gain, Duration: ramp})
	}
	v.targetGain = gain
}

// strike schedules attack, decay and release of a one-shot note in one go.
func (v *Voice) strike(peak float64, attack time.Duration) {
	curves := []Curve{{Target: peak, Duration: max(attack, v.env.Attack)}}
	if v.env.Decay > 0 {
		curves = append(curves, Curve{Target: peak * v.env.Sustain, Duration: v.env.Decay})
	}
	if v.env.Sustain > 0 && v.env.Release > 0 {
		curves = append(curves, Curve{Target: 0, Duration: v.env.Release})
	}
	v.settleAt = supersedeFrom(v.sink, v.channel, PARAM_GAIN, v.tunedAt, curves...)
}

// Silence fades the voice out. The frequency is left where it is so a later
// activation at the same pitch does not glide.
func (v *Voice) Silence(ramp time.Duration) {
	if !v.open {
		v.targetGain = 0
		return
	}
	v.settleAt = supersede(v.sink, v.channel, PARAM_GAIN, Curve{Target: 0, Duration: ramp})
	v.targetGain = 0
}

// Release drops the voice from the sink without a fade.
func (v *Voice) Release() {
	if v.open {
		v.sink.CloseVoice(v.channel)
	}
	v.open = false
	v.targetGain = 0
	v.settleAt = 0
	v.tunedAt = 0
}

// muteRamp is the fade used when the voice goes to rest.
func (v *Voice) muteRamp() time.Duration {
	if v.env.OneShot {
		return TRANSIENT_MUTE_RAMP
	}
	return v.env.Release
}

// retuneRamp is the glide used when the pitch changes.
func (v *Voice) retuneRamp() time.Duration {
	if v.kind == VOICE_SUSTAINED_PAD && v.targetGain > 0 {
		return PAD_RETUNE_RAMP
	}
	return FREQ_RAMP_MIN
}

// levelRamp is the ramp used to move from the current target to gain.
func (v *Voice) levelRamp() time.Duration {
	if v.targetGain == 0 {
		return v.env.Attack
	}
	return LEVEL_RAMP
}

func clamp01(x float64) float64 {
	if x != x || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
