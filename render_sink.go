// render_sink.go - Contract between the chime engine and the audio rendering subsystem

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
	"errors"
	"time"
)

// DeviceState mirrors the lifecycle of the output device behind a sink.
type DeviceState int

const (
	DEVICE_RUNNING DeviceState = iota
	DEVICE_SUSPENDED
	DEVICE_CLOSED
	DEVICE_UNAVAILABLE
)

func (s DeviceState) String() string {
	switch s {
	case DEVICE_RUNNING:
		return "running"
	case DEVICE_SUSPENDED:
		return "suspended"
	case DEVICE_CLOSED:
		return "closed"
	default:
		return "unavailable"
	}
}

// Param selects one automatable voice parameter.
type Param int

const (
	PARAM_FREQUENCY Param = iota
	PARAM_GAIN
)

func (p Param) String() string {
	if p == PARAM_FREQUENCY {
		return "frequency"
	}
	return "gain"
}

var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrSinkClosed        = errors.New("render sink closed")
	ErrUnknownBackend    = errors.New("unknown audio backend")
)

// RenderSink is the write-only, eventually consistent audio graph the engine
// drives. Times are on the sink's own clock as returned by CurrentTime.
//
// Cancel drops every automation segment on the parameter that starts at or
// after at and holds the value the parameter has at that instant. Ramp appends
// a linear segment from the held value to target, starting at at.
type RenderSink interface {
	State() DeviceState
	Resume() error
	CurrentTime() time.Duration
	OpenVoice(ch Channel, kind VoiceKind) error
	Cancel(ch Channel, p Param, at time.Duration)
	Ramp(ch Channel, p Param, target float64, at, dur time.Duration)
	CloseVoice(ch Channel)
	Close() error
}
