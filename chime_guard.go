// chime_guard.go - Audio device lifecycle checks and resume attempts

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

import "log/slog"

// ResumeGuard gates every scheduled mutation on the device state. A suspended
// device gets one asynchronous resume attempt at a time; its result comes
// back on Results and must be passed to HandleResult by the owner's loop.
type ResumeGuard struct {
	sink    RenderSink
	logger  *slog.Logger
	results chan error
	quit    <-chan struct{}

	state    DeviceState
	pending  bool
	attempts int
	reported bool
}

func NewResumeGuard(sink RenderSink, logger *slog.Logger, quit <-chan struct{}) *ResumeGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResumeGuard{
		sink:    sink,
		logger:  logger,
		results: make(chan error),
		quit:    quit,
		state:   DEVICE_RUNNING,
	}
}

// Results delivers the outcome of resume attempts.
func (g *ResumeGuard) Results() <-chan error { return g.results }

// State is the device state seen by the last Ready or Check.
func (g *ResumeGuard) State() DeviceState { return g.state }

// Pending reports whether a resume attempt is in flight.
func (g *ResumeGuard) Pending() bool { return g.pending }

// Attempts counts resume attempts since the device was last running.
func (g *ResumeGuard) Attempts() int { return g.attempts }

// Ready reports whether mutations may be applied now. A suspended device
// triggers a resume attempt; an absent or closed one is reported once.
func (g *ResumeGuard) Ready() bool {
	g.observe()
	switch g.state {
	case DEVICE_RUNNING:
		return true
	case DEVICE_SUSPENDED:
		g.requestResume()
		return false
	default:
		if !g.reported {
			g.reported = true
			g.logger.Warn("audio output disabled", "state", g.state, "err", ErrDeviceUnavailable)
		}
		return false
	}
}

// Check is the periodic device health check.
func (g *ResumeGuard) Check() {
	g.Ready()
}

// NotifyUserActivity uses a user gesture as an extra chance to resume.
func (g *ResumeGuard) NotifyUserActivity() {
	g.observe()
	if g.state == DEVICE_SUSPENDED {
		g.requestResume()
	}
}

// HandleResult records a finished attempt and reports whether the device is
// running again.
func (g *ResumeGuard) HandleResult(err error) bool {
	g.pending = false
	if err != nil {
		g.logger.Warn("audio resume failed", "attempt", g.attempts, "err", err)
		return false
	}
	attempts := g.attempts
	g.observe()
	if g.state != DEVICE_RUNNING {
		return false
	}
	g.logger.Info("audio resumed", "attempts", attempts)
	return true
}

func (g *ResumeGuard) observe() {
	prev := g.state
	if g.sink == nil {
		g.state = DEVICE_UNAVAILABLE
	} else {
		g.state = g.sink.State()
	}
	if g.state == DEVICE_RUNNING {
		g.attempts = 0
		if g.reported && prev != DEVICE_RUNNING {
			g.reported = false
			g.logger.Info("audio output available")
		}
	}
}

func (g *ResumeGuard) requestResume() {
	if g.pending {
		return
	}
	g.pending = true
	g.attempts++
	sink, results, quit := g.sink, g.results, g.quit
	go func() {
		err := sink.Resume()
		select {
		case results <- err:
		case <-quit:
		}
	}()
}
