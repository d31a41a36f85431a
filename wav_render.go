// wav_render.go - Offline rendering of the chime to a WAV file

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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"
)

const (
	RENDER_STEP = QUARTER_TICK
	WAV_BITS    = 16
	MAX_RENDER  = time.Hour
)

var ErrInvalidDuration = errors.New("invalid render duration")

type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// RenderFile renders duration of chime starting at start and writes it to
// path as 16-bit stereo PCM.
func RenderFile(path string, start TimeSample, settings Settings, duration time.Duration, sampleRate int, logger *slog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderWAV(f, start, settings, duration, sampleRate, logger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderWAV drives an engine on a virtual clock, pulling audio from the
// mixer in lockstep with it, and writes the result as WAV. A fresh time
// sample is fed every second the way the wall-clock source would. The fade
// out after duration is included.
func RenderWAV(w io.Writer, start TimeSample, settings Settings, duration time.Duration, sampleRate int, logger *slog.Logger) error {
	if duration <= 0 || duration > MAX_RENDER {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}
	if logger == nil {
		logger = slog.Default()
	}

	mixer := NewMixerSink(sampleRate)
	out := &OfflineOutput{}
	out.SetupPlayer(mixer)
	mixer.AttachOutput(out)
	out.Start()

	clock := NewVirtualClock(time.Unix(0, 0))
	engine := NewEngine(mixer, clock, logger)
	engine.UpdateSettings(settings)
	engine.Start()
	engine.UpdateTime(start)

	frames := int(int64(mixer.SampleRate()) * int64(RENDER_STEP) / int64(time.Second))
	buf := make([]float32, frames*MIXER_CHANNELS)
	raw := make([]byte, len(buf)*WAV_BITS/8)
	var pcm bytes.Buffer

	step := func() {
		mixer.Render(buf)
		pcm.Write(pcm16(raw, buf))
		clock.Advance(RENDER_STEP)
		engine.Snapshot()
	}

	for elapsed := time.Duration(0); elapsed < duration; elapsed += RENDER_STEP {
		step()
		if (elapsed+RENDER_STEP)%time.Second == 0 {
			engine.UpdateTime(start.Add(elapsed + RENDER_STEP))
		}
	}

	stopped := make(chan struct{})
	go func() {
		engine.Stop()
		close(stopped)
	}()
tail:
	for {
		select {
		case <-stopped:
			break tail
		default:
			step()
		}
	}
	mixer.Close()

	logger.Debug("render complete", "duration", duration, "bytes", pcm.Len())
	return writeWAV(w, mixer.SampleRate(), pcm.Bytes())
}

// pcm16 converts samples to 16-bit little-endian PCM in dst and returns the
// filled part of it.
func pcm16(dst []byte, samples []float32) []byte {
	for i, s := range samples {
		v := int16(math.Round(float64(clampSample(float64(s))) * math.MaxInt16))
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(v))
	}
	return dst[:2*len(samples)]
}

func writeWAV(w io.Writer, sampleRate int, data []byte) error {
	blockAlign := MIXER_CHANNELS * WAV_BITS / 8
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(data)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   MIXER_CHANNELS,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: WAV_BITS,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(data)),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
