// chime_scheduler.go - Maps extrapolated wall time onto channel updates

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

const (
	SECOND_TICK       = time.Second
	QUARTER_TICK      = 250 * time.Millisecond
	MAX_EXTRAPOLATION = 2 * time.Second
)

// Scheduler turns the latest time sample and settings into channel updates.
// It is owned by the engine loop and is not safe for concurrent use.
//
// The time it acts on is the last sample plus the wall time elapsed since it
// arrived, capped at MAX_EXTRAPOLATION. Digits are always those of the second
// that extrapolated time is in.
type Scheduler struct {
	pool     *VoicePool
	guard    *ResumeGuard
	settings Settings

	sample     TimeSample
	receivedAt time.Time
	hasSample  bool

	applied    TimeSample
	hasApplied bool
	dirty      bool
}

func NewScheduler(pool *VoicePool, guard *ResumeGuard, settings Settings) *Scheduler {
	return &Scheduler{pool: pool, guard: guard, settings: settings.Clamped()}
}

// SetTime records a new sample as received now.
func (s *Scheduler) SetTime(sample TimeSample, now time.Time) {
	s.sample = sample.Add(0)
	s.receivedAt = now
	s.hasSample = true
}

// SetSettings replaces the settings snapshot.
func (s *Scheduler) SetSettings(settings Settings) {
	s.settings = settings.Clamped()
}

func (s *Scheduler) Settings() Settings { return s.settings }

// Dirty reports whether a tick was skipped and state must be reapplied.
func (s *Scheduler) Dirty() bool { return s.dirty }

// Applied returns the time last pushed to the voices.
func (s *Scheduler) Applied() (TimeSample, bool) { return s.applied, s.hasApplied }

// TimeAt extrapolates the last sample to now.
func (s *Scheduler) TimeAt(now time.Time) (TimeSample, bool) {
	if !s.hasSample {
		return TimeSample{}, false
	}
	elapsed := min(max(now.Sub(s.receivedAt), 0), MAX_EXTRAPOLATION)
	return s.sample.Add(elapsed), true
}

// SecondTick updates the held pads and the minute pair.
func (s *Scheduler) SecondTick(now time.Time) { s.tick(now, false) }

// QuarterTick updates the second pair.
func (s *Scheduler) QuarterTick(now time.Time) { s.tick(now, true) }

// Refresh reapplies every channel.
func (s *Scheduler) Refresh(now time.Time) {
	s.dirty = true
	s.tick(now, false)
}

func (s *Scheduler) tick(now time.Time, quarter bool) {
	t, ok := s.TimeAt(now)
	if !ok {
		return
	}
	if s.guard != nil && !s.guard.Ready() {
		s.dirty = true
		return
	}
	full := s.dirty
	s.dirty = false
	if !quarter || full {
		s.applyPads(t)
		s.applyMinutes(t)
	}
	if quarter || full {
		s.applySeconds(t)
	}
	s.applied, s.hasApplied = t, true
}

func (s *Scheduler) applyPads(t TimeSample) {
	s.pool.UpdateChannel(CH_REFERENCE, s.settings.Enabled(GROUP_REFERENCE),
		s.settings.EffectiveVolume(GROUP_REFERENCE), REFERENCE_VALUE)
	s.pool.UpdateChannel(CH_HOUR, s.settings.Enabled(GROUP_HOUR),
		s.settings.EffectiveVolume(GROUP_HOUR), t.Hours)
}

func (s *Scheduler) applyMinutes(t TimeSample) {
	s.applyPair(GROUP_MINUTE, CH_MINUTE_TENS, CH_MINUTE_ONES, MinuteOnesLive(t), t.MinuteTens(), t.MinuteOnes())
}

func (s *Scheduler) applySeconds(t TimeSample) {
	s.applyPair(GROUP_SECOND, CH_SECOND_TENS, CH_SECOND_ONES, SecondOnesLive(t), t.SecondTens(), t.SecondOnes())
}

// applyPair mutes the outgoing sub-channel before activating the incoming one
// so the two never hold gain at the same time.
func (s *Scheduler) applyPair(g ChannelGroup, tens, ones Channel, onesLive bool, tensDigit, onesDigit int) {
	live, idle, digit := tens, ones, tensDigit
	if onesLive {
		live, idle, digit = ones, tens, onesDigit
	}
	enabled := s.settings.Enabled(g)
	volume := s.settings.EffectiveVolume(g)
	s.pool.UpdateChannel(idle, enabled, volume, 0)
	s.pool.UpdateChannel(live, enabled, volume, digit)
}

// MinuteOnesLive reports whether the minute pair sounds its ones digit:
// tens on even seconds, ones on odd.
func MinuteOnesLive(t TimeSample) bool { return t.Seconds%2 == 1 }

// SecondOnesLive reports whether the second pair sounds its ones digit:
// quarters 0 and 2 play tens, 1 and 3 play ones.
func SecondOnesLive(t TimeSample) bool { return t.Quarter()%2 == 1 }
