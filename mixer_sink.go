// mixer_sink.go - PCM render sink mixing the six chime voices

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
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	SAMPLE_RATE      = 44100
	MIXER_CHANNELS   = 2
	BYTES_PER_FRAME  = MIXER_CHANNELS * 4
	VOICE_MIX_LEVEL  = 0.32
	REVERB_MIX       = 0.18
	REVERB_ATTENUATE = 0.25
	PRE_DELAY_MS     = 12
	ALLPASS_COEF     = 0.5
	MAX_SAMPLE       = 1.0
	MIN_SAMPLE       = -1.0
)

var (
	combDelays   = [4]int{1687, 1601, 2053, 2251}
	combDecays   = [4]float64{0.87, 0.85, 0.83, 0.81}
	allpassDelay = [2]int{389, 307}
)

// channelPan spreads the digit pairs across the stereo field; the pads stay
// centred.
var channelPan = [NUM_CHANNELS]float64{
	CH_REFERENCE:   0,
	CH_HOUR:        0,
	CH_MINUTE_TENS: -0.35,
	CH_MINUTE_ONES: 0.35,
	CH_SECOND_TENS: -0.55,
	CH_SECOND_ONES: 0.55,
}

// SampleSource is what an output backend pulls audio from: interleaved
// stereo frames, either as float32 LE bytes or as samples.
type SampleSource interface {
	Read(p []byte) (int, error)
	Render(out []float32) int
}

type combFilter struct {
	buffer []float64
	pos    int
	decay  float64
}

// MixerSink is the production RenderSink. Automation is kept per voice as a
// timeline in frames and evaluated sample by sample as the output pulls audio.
// Its clock is the number of frames rendered so far.
type MixerSink struct {
	mu         sync.Mutex
	sampleRate int
	output     AudioOutput
	voices     [NUM_CHANNELS]*mixerVoice
	frames     int64
	closed     bool

	preDelay    []float64
	preDelayPos int
	combs       [4]combFilter
	allpass     [2][]float64
	allpassPos  [2]int
}

func NewMixerSink(sampleRate int) *MixerSink {
	if sampleRate <= 0 {
		sampleRate = SAMPLE_RATE
	}
	m := &MixerSink{
		sampleRate: sampleRate,
		preDelay:   make([]float64, sampleRate*PRE_DELAY_MS/1000),
	}
	for i := range m.combs {
		m.combs[i] = combFilter{buffer: make([]float64, combDelays[i]), decay: combDecays[i]}
	}
	for i := range m.allpass {
		m.allpass[i] = make([]float64, allpassDelay[i])
	}
	return m
}

// AttachOutput binds the device whose lifecycle the sink reports.
func (m *MixerSink) AttachOutput(out AudioOutput) {
	m.mu.Lock()
	m.output = out
	m.mu.Unlock()
}

func (m *MixerSink) SampleRate() int { return m.sampleRate }

func (m *MixerSink) State() DeviceState {
	m.mu.Lock()
	out, closed := m.output, m.closed
	m.mu.Unlock()
	switch {
	case closed:
		return DEVICE_CLOSED
	case out == nil || out.Err() != nil:
		return DEVICE_UNAVAILABLE
	case !out.IsStarted():
		return DEVICE_SUSPENDED
	default:
		return DEVICE_RUNNING
	}
}

func (m *MixerSink) Resume() error {
	m.mu.Lock()
	out, closed := m.output, m.closed
	m.mu.Unlock()
	if closed {
		return ErrSinkClosed
	}
	if out == nil {
		return ErrDeviceUnavailable
	}
	return out.Resume()
}

// Suspend pauses the device the way a host would.
func (m *MixerSink) Suspend() error {
	m.mu.Lock()
	out := m.output
	m.mu.Unlock()
	if out == nil {
		return ErrDeviceUnavailable
	}
	return out.Suspend()
}

func (m *MixerSink) CurrentTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameTime(m.frames)
}

func (m *MixerSink) OpenVoice(ch Channel, kind VoiceKind) error {
	if ch < 0 || ch >= NUM_CHANNELS {
		return fmt.Errorf("open voice %d: channel out of range", ch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrSinkClosed
	}
	m.voices[ch] = newMixerVoice(kind, channelPan[ch])
	return nil
}

func (m *MixerSink) Cancel(ch Channel, p Param, at time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.voice(ch); v != nil {
		v.timeline(p).cancel(max(m.toFrame(at), m.frames))
	}
}

func (m *MixerSink) Ramp(ch Channel, p Param, target float64, at, dur time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.voice(ch); v != nil {
		start := max(m.toFrame(at), m.frames)
		v.timeline(p).ramp(target, start, start+m.toFrame(dur))
	}
}

func (m *MixerSink) CloseVoice(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch >= 0 && ch < NUM_CHANNELS {
		m.voices[ch] = nil
	}
}

// Close drops every voice and closes the device.
func (m *MixerSink) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.voices = [NUM_CHANNELS]*mixerVoice{}
	out := m.output
	m.mu.Unlock()
	if out != nil {
		out.Close()
	}
	return nil
}

// Read fills p with float32 LE stereo frames.
func (m *MixerSink) Read(p []byte) (int, error) {
	n := len(p) / BYTES_PER_FRAME
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		l, r := m.mixFrame()
		binary.LittleEndian.PutUint32(p[i*BYTES_PER_FRAME:], math.Float32bits(l))
		binary.LittleEndian.PutUint32(p[i*BYTES_PER_FRAME+4:], math.Float32bits(r))
	}
	return n * BYTES_PER_FRAME, nil
}

// Render fills out with interleaved stereo samples and returns the number of
// frames written.
func (m *MixerSink) Render(out []float32) int {
	n := len(out) / MIXER_CHANNELS
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		out[2*i], out[2*i+1] = m.mixFrame()
	}
	return n
}

// VoiceLevels returns the instantaneous gain of each voice.
func (m *MixerSink) VoiceLevels() [NUM_CHANNELS]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var levels [NUM_CHANNELS]float64
	for ch, v := range m.voices {
		if v != nil {
			levels[ch] = v.gain.value
		}
	}
	return levels
}

func (m *MixerSink) mixFrame() (float32, float32) {
	frame := m.frames
	m.frames++
	if m.closed {
		return 0, 0
	}
	rate := float64(m.sampleRate)
	var l, r, mono float64
	for _, v := range m.voices {
		if v == nil {
			continue
		}
		s := v.sample(frame, rate) * VOICE_MIX_LEVEL
		angle := (v.pan + 1) * math.Pi / 4
		l += s * math.Cos(angle)
		r += s * math.Sin(angle)
		mono += s
	}
	wet := m.reverb(mono) * REVERB_MIX
	return clampSample(softSat(l + wet)), clampSample(softSat(r + wet))
}

// reverb is a pre-delayed bank of four parallel combs into two allpasses.
func (m *MixerSink) reverb(in float64) float64 {
	delayed := in
	if len(m.preDelay) > 0 {
		delayed = m.preDelay[m.preDelayPos]
		m.preDelay[m.preDelayPos] = in
		m.preDelayPos = (m.preDelayPos + 1) % len(m.preDelay)
	}

	var out float64
	for i := range m.combs {
		c := &m.combs[i]
		d := c.buffer[c.pos]
		c.buffer[c.pos] = delayed + d*c.decay
		out += d
		c.pos = (c.pos + 1) % len(c.buffer)
	}
	for i := range m.allpass {
		buf, pos := m.allpass[i], m.allpassPos[i]
		d := buf[pos]
		buf[pos] = out + d*ALLPASS_COEF
		out = d - out
		m.allpassPos[i] = (pos + 1) % len(buf)
	}
	return out * REVERB_ATTENUATE
}

func (m *MixerSink) voice(ch Channel) *mixerVoice {
	if m.closed || ch < 0 || ch >= NUM_CHANNELS {
		return nil
	}
	return m.voices[ch]
}

// toFrame and frameTime split off whole seconds first so neither product
// can overflow on a sink that runs for days.
func (m *MixerSink) toFrame(d time.Duration) int64 {
	rate := int64(m.sampleRate)
	secs, rem := int64(d/time.Second), int64(d%time.Second)
	return secs*rate + rem*rate/int64(time.Second)
}

func (m *MixerSink) frameTime(frames int64) time.Duration {
	rate := int64(m.sampleRate)
	secs, rem := frames/rate, frames%rate
	return time.Duration(secs)*time.Second + time.Duration(rem*int64(time.Second)/rate)
}

func clampSample(x float64) float32 {
	return float32(math.Max(math.Min(x, MAX_SAMPLE), MIN_SAMPLE))
}
