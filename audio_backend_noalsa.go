//go:build !linux || !alsa || headless

package main

type ALSAPlayer struct {
	OfflineOutput
}

func NewALSAPlayer(sampleRate int) (*ALSAPlayer, error) {
	return nil, ErrDeviceUnavailable
}
