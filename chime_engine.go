// chime_engine.go - Chime engine actor loop and public API

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
	"sync"
	"sync/atomic"
	"time"
)

const (
	QUARTER_ALIGN_TOLERANCE = 20 * time.Millisecond
	DRAIN_TICKS             = int(TOGGLE_OFF_RAMP/QUARTER_TICK) + 2
)

// EngineSnapshot is a consistent copy of the engine state, taken on the loop.
type EngineSnapshot struct {
	Time           TimeSample
	HasTime        bool
	Settings       Settings
	Device         DeviceState
	Dirty          bool
	Frequencies    [NUM_CHANNELS]float64
	Gains          [NUM_CHANNELS]float64
	MinuteOnesLive bool
	SecondOnesLive bool
}

type stopRequest struct {
	abrupt bool
}

// Engine owns the voices, the scheduler and the resume guard. All of their
// state is touched only from the loop goroutine; the public methods post
// closures to it.
type Engine struct {
	sink   RenderSink
	clock  Clock
	logger *slog.Logger

	pool  *VoicePool
	guard *ResumeGuard
	sched *Scheduler

	secondTicker  Ticker
	quarterTicker Ticker
	quarterAt     time.Time
	stopping      bool

	cmds chan func()
	quit chan stopRequest
	done chan struct{}

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewEngine builds an engine around sink. The voices are opened immediately;
// nothing sounds until the first time sample arrives.
func NewEngine(sink RenderSink, clock Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		sink:   sink,
		clock:  clock,
		logger: logger,
		cmds:   make(chan func()),
		quit:   make(chan stopRequest),
		done:   make(chan struct{}),
	}
	e.pool = NewVoicePool(sink, logger)
	e.guard = NewResumeGuard(sink, logger, e.done)
	e.sched = NewScheduler(e.pool, e.guard, DefaultSettings())
	return e
}

// Start launches the loop. Further calls, and calls after Stop, are no-ops.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.secondTicker = e.clock.NewTicker(SECOND_TICK)
		e.quarterTicker = e.clock.NewTicker(QUARTER_TICK)
		e.quarterAt = e.clock.Now()
		e.started.Store(true)
		go e.run()
	})
}

// Stop fades every voice out, releases them and waits for the loop to exit.
func (e *Engine) Stop() { e.stop(false) }

// StopAbrupt releases every voice without a fade.
func (e *Engine) StopAbrupt() { e.stop(true) }

// An engine stopped before Start releases its voices, closes Done and can
// no longer be started.
func (e *Engine) stop(abrupt bool) {
	e.stopOnce.Do(func() {
		e.startOnce.Do(func() {
			e.pool.Close(true)
			close(e.done)
		})
		if !e.started.Load() {
			return
		}
		select {
		case e.quit <- stopRequest{abrupt: abrupt}:
		case <-e.done:
		}
		<-e.done
	})
}

// Done is closed once the loop has exited.
func (e *Engine) Done() <-chan struct{} { return e.done }

// UpdateTime delivers a new wall-clock sample.
func (e *Engine) UpdateTime(sample TimeSample) {
	e.do(func() {
		if e.stopping {
			return
		}
		now := e.clock.Now()
		first := !e.sched.hasSample
		e.sched.SetTime(sample, now)
		if e.started.Load() {
			e.alignQuarter(sample, now, first)
			e.sched.Refresh(now)
		}
	})
}

// UpdateSettings replaces the settings and reapplies every channel.
func (e *Engine) UpdateSettings(settings Settings) {
	e.do(func() {
		if e.stopping {
			return
		}
		e.sched.SetSettings(settings)
		e.logger.Debug("settings applied", "master", settings.Master)
		if e.started.Load() {
			e.sched.Refresh(e.clock.Now())
		}
	})
}

// NotifyUserActivity forwards a UI gesture to the resume guard.
func (e *Engine) NotifyUserActivity() {
	if !e.started.Load() {
		return
	}
	e.do(func() {
		if !e.stopping {
			e.guard.NotifyUserActivity()
		}
	})
}

// Snapshot returns the current engine state.
func (e *Engine) Snapshot() EngineSnapshot {
	var snap EngineSnapshot
	e.do(func() { snap = e.snapshot() })
	return snap
}

// do runs fn on the loop. Before Start it runs inline, so configuration done
// before Start must not race with it. After the loop has exited fn is dropped.
func (e *Engine) do(fn func()) {
	if !e.started.Load() {
		fn()
		return
	}
	reply := make(chan struct{})
	select {
	case e.cmds <- func() { fn(); close(reply) }:
		<-reply
	case <-e.done:
	}
}

func (e *Engine) snapshot() EngineSnapshot {
	snap := EngineSnapshot{
		Settings: e.sched.Settings(),
		Device:   e.guard.State(),
		Dirty:    e.sched.Dirty(),
	}
	snap.Time, snap.HasTime = e.sched.TimeAt(e.clock.Now())
	for ch := range Channel(NUM_CHANNELS) {
		snap.Frequencies[ch] = e.pool.Frequency(ch)
		snap.Gains[ch] = e.pool.TargetGain(ch)
	}
	snap.MinuteOnesLive = MinuteOnesLive(snap.Time)
	snap.SecondOnesLive = SecondOnesLive(snap.Time)
	return snap
}

func (e *Engine) run() {
	defer close(e.done)
	defer func() {
		e.secondTicker.Stop()
		e.quarterTicker.Stop()
	}()

	e.guard.Check()
	e.sched.Refresh(e.clock.Now())
	for {
		select {
		case now := <-e.secondTicker.C():
			e.guard.Check()
			e.sched.SecondTick(now)
		case now := <-e.quarterTicker.C():
			e.quarterAt = now
			e.sched.QuarterTick(now)
		case fn := <-e.cmds:
			fn()
		case err := <-e.guard.Results():
			if e.guard.HandleResult(err) {
				e.sched.Refresh(e.clock.Now())
			}
		case req := <-e.quit:
			e.shutdown(req.abrupt)
			return
		}
	}
}

// shutdown runs on the loop. A graceful stop keeps ticking until the fades
// have run on the sink or DRAIN_TICKS quarters have passed, whichever is
// first, so a stalled device cannot hold the engine open. Commands are still
// served meanwhile but no longer touch the voices.
func (e *Engine) shutdown(abrupt bool) {
	e.stopping = true
	e.secondTicker.Stop()
	settleAt := e.pool.Close(abrupt)
	if abrupt {
		e.logger.Debug("engine stopped", "abrupt", true)
		return
	}
	for ticks := 0; ticks < DRAIN_TICKS && !e.pool.Settled(settleAt); {
		select {
		case <-e.quarterTicker.C():
			ticks++
		case fn := <-e.cmds:
			fn()
		}
	}
	e.pool.Release()
	e.logger.Debug("engine stopped", "abrupt", false)
}

// alignQuarter restarts the quarter ticker when its ticks have drifted away
// from the quarter boundaries of wall time and a restart now would land
// closer to them.
func (e *Engine) alignQuarter(sample TimeSample, now time.Time, first bool) {
	offset := time.Duration(sample.Milliseconds%250) * time.Millisecond
	phase := (offset - now.Sub(e.quarterAt)%QUARTER_TICK + QUARTER_TICK) % QUARTER_TICK
	if !first && (phase <= QUARTER_ALIGN_TOLERANCE || offset >= phase) {
		return
	}
	if first && offset == phase {
		return
	}
	e.quarterTicker.Stop()
	e.quarterTicker = e.clock.NewTicker(QUARTER_TICK)
	e.quarterAt = now
}
