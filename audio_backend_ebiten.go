//go:build !headless

// audio_backend_ebiten.go - Ebiten audio output backend

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
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

type EbitenPlayer struct {
	ctx     *audio.Context
	player  *audio.Player
	src     SampleSource
	err     error
	started bool
	paused  bool
	mutex   sync.Mutex
}

// NewEbitenPlayer creates the process-wide ebiten audio context. Ebiten allows
// only one per process.
func NewEbitenPlayer(sampleRate int) (*EbitenPlayer, error) {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	} else if ctx.SampleRate() != sampleRate {
		return nil, ErrDeviceUnavailable
	}
	return &EbitenPlayer{ctx: ctx}, nil
}

func (ep *EbitenPlayer) SetupPlayer(src SampleSource) {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()

	ep.src = src
	player, err := ep.ctx.NewPlayerF32(src)
	if err != nil {
		ep.err = err
		return
	}
	ep.player = player
}

func (ep *EbitenPlayer) Start() {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()

	if !ep.started && ep.player != nil {
		ep.player.Play()
		ep.started = true
		ep.paused = false
	}
}

func (ep *EbitenPlayer) Stop() {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()

	if ep.started && ep.player != nil {
		ep.player.Pause()
		ep.started = false
	}
}

func (ep *EbitenPlayer) Close() {
	ep.Stop()
	ep.mutex.Lock()
	defer ep.mutex.Unlock()

	if ep.player != nil {
		ep.player.Close()
		ep.player = nil
	}
}

// IsStarted also waits for the context to become ready; until then ebiten
// drops audio.
func (ep *EbitenPlayer) IsStarted() bool {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()
	return ep.started && !ep.paused && ep.ctx.IsReady()
}

func (ep *EbitenPlayer) Suspend() error {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()
	if ep.player == nil {
		return ErrSinkClosed
	}
	ep.player.Pause()
	ep.paused = true
	return nil
}

func (ep *EbitenPlayer) Resume() error {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()
	if ep.player == nil {
		return ErrSinkClosed
	}
	ep.player.Play()
	ep.started = true
	ep.paused = false
	return nil
}

func (ep *EbitenPlayer) Err() error {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()
	return ep.err
}
