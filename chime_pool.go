// chime_pool.go - Fixed registry of one voice per channel

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
	"log/slog"
	"time"
)

// VoicePool owns the six voices. Voices are created once and only their
// targets change afterwards, so resource use does not grow with note count.
type VoicePool struct {
	sink   RenderSink
	logger *slog.Logger
	voices [NUM_CHANNELS]*Voice
}

// NewVoicePool opens one voice per channel on sink. A voice that cannot be
// opened now is retried the first time it is asked to sound.
func NewVoicePool(sink RenderSink, logger *slog.Logger) *VoicePool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &VoicePool{sink: sink, logger: logger}
	for ch := range Channel(NUM_CHANNELS) {
		v := newVoice(sink, ch)
		if err := v.ensureOpen(); err != nil {
			logger.Debug("voice deferred", "channel", ch, "err", err)
		}
		p.voices[ch] = v
	}
	return p
}

// Voice returns the voice bound to ch, or nil for an invalid channel.
func (p *VoicePool) Voice(ch Channel) *Voice {
	if ch < 0 || ch >= NUM_CHANNELS {
		return nil
	}
	return p.voices[ch]
}

// UpdateChannel brings one channel to the state implied by its inputs and
// reports whether any automation was issued. Inputs equal to what was last
// applied issue nothing.
func (p *VoicePool) UpdateChannel(ch Channel, enabled bool, volume float64, pitchValue int) bool {
	v := p.Voice(ch)
	if v == nil {
		return false
	}

	hz, ok := FrequencyFor(ch, pitchValue)
	gain := clamp01(volume)
	var ramp time.Duration
	switch {
	case !enabled:
		gain, ramp = 0, max(TOGGLE_OFF_RAMP, v.muteRamp())
	case !ok:
		gain, ramp = 0, v.muteRamp()
	case gain == 0:
		ramp = v.muteRamp()
	default:
		ramp = v.levelRamp()
	}

	issued := false
	if gain > 0 && hz != v.frequency {
		v.SetFrequency(hz, v.retuneRamp())
		issued = true
	}
	if gain != v.targetGain {
		v.SetTargetGain(gain, ramp)
		issued = true
	}
	return issued
}

// TargetGain returns the gain the channel was last driven towards.
func (p *VoicePool) TargetGain(ch Channel) float64 {
	if v := p.Voice(ch); v != nil {
		return v.targetGain
	}
	return 0
}

// Frequency returns the pitch the channel was last tuned to.
func (p *VoicePool) Frequency(ch Channel) float64 {
	if v := p.Voice(ch); v != nil {
		return v.frequency
	}
	return 0
}

// Silence fades every voice out over ramp and returns the sink time at which
// the last fade ends.
func (p *VoicePool) Silence(ramp time.Duration) time.Duration {
	var settle time.Duration
	now := p.now()
	for _, v := range p.voices {
		if v.Audible(now) {
			v.Silence(ramp)
		}
		settle = max(settle, v.settleAt)
	}
	return settle
}

// Settled reports whether every scheduled fade has finished.
func (p *VoicePool) Settled(settleAt time.Duration) bool {
	return p.now() >= settleAt
}

// Close tears the pool down. Graceful close fades first; the caller is
// expected to call Release once the fades have run.
func (p *VoicePool) Close(abrupt bool) time.Duration {
	if abrupt {
		p.Release()
		return 0
	}
	return p.Silence(TOGGLE_OFF_RAMP)
}

// Release drops every voice from the sink immediately.
func (p *VoicePool) Release() {
	for _, v := range p.voices {
		v.Release()
	}
}

func (p *VoicePool) now() time.Duration {
	if p.sink == nil {
		return 0
	}
	return p.sink.CurrentTime()
}
