// chime_automation.go - Click-free parameter automation primitives

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

// Minimum ramp lengths. A parameter on a voice that is or was recently
// audible is never moved faster than these.
const (
	FREQ_RAMP_MIN    = 20 * time.Millisecond
	GAIN_ATTACK_MIN  = 20 * time.Millisecond
	GAIN_RELEASE_MIN = 50 * time.Millisecond
	TOGGLE_OFF_RAMP  = 150 * time.Millisecond
)

const (
	LEVEL_RAMP      = 250 * time.Millisecond // volume change on a held voice
	PAD_RETUNE_RAMP = 300 * time.Millisecond // hour glide
)

// Curve is one linear automation segment. Segments passed together are laid
// end to end starting at the sink's current time.
type Curve struct {
	Target   float64
	Duration time.Duration
}

// minimumRamp returns the shortest legal duration for a move on p.
// falling is true when the gain is heading towards silence.
func minimumRamp(p Param, falling bool) time.Duration {
	switch {
	case p == PARAM_FREQUENCY:
		return FREQ_RAMP_MIN
	case falling:
		return GAIN_RELEASE_MIN
	default:
		return GAIN_ATTACK_MIN
	}
}

func clampRamp(p Param, falling bool, d time.Duration) time.Duration {
	return max(d, minimumRamp(p, falling))
}

// supersede cancels whatever is in flight on the parameter and schedules the
// curves in order. It returns the sink time at which the last curve ends.
func supersede(sink RenderSink, ch Channel, p Param, curves ...Curve) time.Duration {
	return supersedeFrom(sink, ch, p, 0, curves...)
}

// supersedeFrom is supersede with the first curve held back until sink time
// from. The parameter keeps its current value until then.
func supersedeFrom(sink RenderSink, ch Channel, p Param, from time.Duration, curves ...Curve) time.Duration {
	now := sink.CurrentTime()
	sink.Cancel(ch, p, now)
	at := max(now, from)
	for _, c := range curves {
		d := clampRamp(p, p == PARAM_GAIN && c.Target <= 0, c.Duration)
		sink.Ramp(ch, p, c.Target, at, d)
		at += d
	}
	return at
}

// rampFrequency glides a voice to hz and returns the sink time the glide ends.
func rampFrequency(sink RenderSink, ch Channel, hz float64, d time.Duration) time.Duration {
	return supersede(sink, ch, PARAM_FREQUENCY, Curve{Target: hz, Duration: d})
}

// rampGain moves a voice's gain to target. Fades to zero are held to the
// release minimum so a mute can never be instantaneous.
func rampGain(sink RenderSink, ch Channel, target float64, d time.Duration) {
	supersede(sink, ch, PARAM_GAIN, Curve{Target: max(target, 0), Duration: d})
}
