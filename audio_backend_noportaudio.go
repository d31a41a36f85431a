//go:build !portaudio || headless

package main

type PortAudioPlayer struct {
	OfflineOutput
}

func NewPortAudioPlayer(sampleRate int) (*PortAudioPlayer, error) {
	return nil, ErrDeviceUnavailable
}
