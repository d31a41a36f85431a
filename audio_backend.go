// audio_backend.go - Output backend selection and the device-less outputs

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
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	BACKEND_OTO       = "oto"
	BACKEND_EBITEN    = "ebiten"
	BACKEND_PORTAUDIO = "portaudio"
	BACKEND_ALSA      = "alsa"
	BACKEND_HEADLESS  = "headless"

	NULL_OUTPUT_CHUNK = 10 * time.Millisecond
)

// AudioOutput is a device pulling frames from a SampleSource.
type AudioOutput interface {
	SetupPlayer(src SampleSource)
	Start()
	Stop()
	Close()
	IsStarted() bool
	Suspend() error
	Resume() error
	Err() error
}

// NewAudioOutput opens the named backend and wires src into it. The output is
// not started.
func NewAudioOutput(backend string, sampleRate int, src SampleSource, logger *slog.Logger) (AudioOutput, error) {
	var (
		out AudioOutput
		err error
	)
	switch backend {
	case BACKEND_OTO, "":
		out, err = NewOtoPlayer(sampleRate)
	case BACKEND_EBITEN:
		out, err = NewEbitenPlayer(sampleRate)
	case BACKEND_PORTAUDIO:
		out, err = NewPortAudioPlayer(sampleRate)
	case BACKEND_ALSA:
		out, err = NewALSAPlayer(sampleRate)
	case BACKEND_HEADLESS:
		out = NewNullOutput(sampleRate)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", backend, err)
	}
	out.SetupPlayer(src)
	if logger != nil {
		logger.Debug("audio backend ready", "backend", backend, "rate", sampleRate)
	}
	return out, nil
}

// NullOutput pulls and discards audio in real time, so the sink clock runs
// without a device.
type NullOutput struct {
	mu         sync.Mutex
	sampleRate int
	src        SampleSource
	started    bool
	stop       chan struct{}
	done       chan struct{}
}

func NewNullOutput(sampleRate int) *NullOutput {
	return &NullOutput{sampleRate: sampleRate}
}

func (n *NullOutput) SetupPlayer(src SampleSource) {
	n.mu.Lock()
	n.src = src
	n.mu.Unlock()
}

func (n *NullOutput) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started || n.src == nil {
		return
	}
	n.started = true
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.pull(n.src, n.stop, n.done)
}

func (n *NullOutput) pull(src SampleSource, stop, done chan struct{}) {
	defer close(done)
	frames := int(int64(n.sampleRate) * int64(NULL_OUTPUT_CHUNK) / int64(time.Second))
	buf := make([]float32, frames*MIXER_CHANNELS)
	ticker := time.NewTicker(NULL_OUTPUT_CHUNK)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			src.Render(buf)
		}
	}
}

func (n *NullOutput) Stop() {
	n.mu.Lock()
	if !n.started {
		n.mu.Unlock()
		return
	}
	n.started = false
	stop, done := n.stop, n.done
	n.mu.Unlock()
	close(stop)
	<-done
}

func (n *NullOutput) Close() { n.Stop() }

func (n *NullOutput) IsStarted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.started
}

func (n *NullOutput) Suspend() error {
	n.Stop()
	return nil
}

func (n *NullOutput) Resume() error {
	n.Start()
	return nil
}

func (n *NullOutput) Err() error { return nil }

// OfflineOutput is a device that never pulls; the owner renders frames
// itself. It reports running once started.
type OfflineOutput struct {
	mu      sync.Mutex
	src     SampleSource
	started bool
}

func (o *OfflineOutput) SetupPlayer(src SampleSource) {
	o.mu.Lock()
	o.src = src
	o.mu.Unlock()
}

func (o *OfflineOutput) Start() {
	o.mu.Lock()
	o.started = true
	o.mu.Unlock()
}

func (o *OfflineOutput) Stop() {
	o.mu.Lock()
	o.started = false
	o.mu.Unlock()
}

func (o *OfflineOutput) Close() { o.Stop() }

func (o *OfflineOutput) IsStarted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}

func (o *OfflineOutput) Suspend() error {
	o.Stop()
	return nil
}

func (o *OfflineOutput) Resume() error {
	o.Start()
	return nil
}

func (o *OfflineOutput) Err() error { return nil }
