//go:build headless

package main

type OtoPlayer struct {
	OfflineOutput
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

type EbitenPlayer struct {
	OfflineOutput
}

func NewEbitenPlayer(sampleRate int) (*EbitenPlayer, error) {
	return &EbitenPlayer{}, nil
}
