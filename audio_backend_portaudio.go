//go:build portaudio && !headless

// audio_backend_portaudio.go - PortAudio callback output backend

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

	"github.com/gordonklaus/portaudio"
)

const PORTAUDIO_FRAMES = 512

type PortAudioPlayer struct {
	stream     *portaudio.Stream
	sampleRate int
	src        SampleSource
	err        error
	started    bool
	mutex      sync.Mutex
}

func NewPortAudioPlayer(sampleRate int) (*PortAudioPlayer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	return &PortAudioPlayer{sampleRate: sampleRate}, nil
}

func (pp *PortAudioPlayer) SetupPlayer(src SampleSource) {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()

	pp.src = src
	stream, err := portaudio.OpenDefaultStream(0, MIXER_CHANNELS, float64(pp.sampleRate), PORTAUDIO_FRAMES, pp.processAudio)
	if err != nil {
		pp.err = err
		return
	}
	pp.stream = stream
}

// processAudio runs on the PortAudio callback thread.
func (pp *PortAudioPlayer) processAudio(out []float32) {
	pp.src.Render(out)
}

func (pp *PortAudioPlayer) Start() {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()

	if !pp.started && pp.stream != nil {
		if err := pp.stream.Start(); err != nil {
			pp.err = err
			return
		}
		pp.started = true
	}
}

func (pp *PortAudioPlayer) Stop() {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()

	if pp.started && pp.stream != nil {
		pp.stream.Stop()
		pp.started = false
	}
}

func (pp *PortAudioPlayer) Close() {
	pp.Stop()
	pp.mutex.Lock()
	defer pp.mutex.Unlock()

	if pp.stream != nil {
		pp.stream.Close()
		pp.stream = nil
		portaudio.Terminate()
	}
}

func (pp *PortAudioPlayer) IsStarted() bool {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()
	return pp.started
}

func (pp *PortAudioPlayer) Suspend() error {
	pp.Stop()
	return nil
}

func (pp *PortAudioPlayer) Resume() error {
	pp.Start()
	return pp.Err()
}

func (pp *PortAudioPlayer) Err() error {
	pp.mutex.Lock()
	defer pp.mutex.Unlock()
	return pp.err
}
