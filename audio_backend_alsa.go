//go:build linux && alsa && !headless

// audio_backend_alsa.go - ALSA audio output implementation

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

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate, unsigned int channels) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, channels);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drop(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

const ALSA_PERIOD_FRAMES = 441

// ALSAPlayer pumps frames from the source into the default PCM device. The
// blocking write paces the pump.
type ALSAPlayer struct {
	handle  *C.snd_pcm_t
	src     SampleSource
	err     error
	started bool
	mutex   sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	samples []float32
}

func NewALSAPlayer(sampleRate int) (*ALSAPlayer, error) {
	var err C.int
	device := C.CString("default")
	defer C.free(unsafe.Pointer(device))
	handle := C.openPCM(device, &err)
	if err < 0 {
		return nil, fmt.Errorf("failed to open PCM device: %s", C.GoString(C.snd_strerror(err)))
	}

	if err = C.setupPCM(handle, C.uint(sampleRate), C.uint(MIXER_CHANNELS)); err < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("failed to setup PCM: %s", C.GoString(C.snd_strerror(err)))
	}

	return &ALSAPlayer{
		handle:  handle,
		samples: make([]float32, ALSA_PERIOD_FRAMES*MIXER_CHANNELS),
	}, nil
}

func (ap *ALSAPlayer) SetupPlayer(src SampleSource) {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	ap.src = src
}

func (ap *ALSAPlayer) IsStarted() bool {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	return ap.started
}

// write sends one period, recovering once from an underrun.
func (ap *ALSAPlayer) write() error {
	buf := (*C.float)(unsafe.Pointer(&ap.samples[0]))
	frames := C.writePCM(ap.handle, buf, C.int(ALSA_PERIOD_FRAMES))
	if frames == -C.EPIPE {
		C.snd_pcm_prepare(ap.handle)
		frames = C.writePCM(ap.handle, buf, C.int(ALSA_PERIOD_FRAMES))
	}
	if frames < 0 {
		return fmt.Errorf("write failed: %s", C.GoString(C.snd_strerror(C.int(frames))))
	}
	return nil
}

func (ap *ALSAPlayer) pump(src SampleSource, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		src.Render(ap.samples)
		if err := ap.write(); err != nil {
			ap.mutex.Lock()
			ap.err = err
			ap.started = false
			ap.mutex.Unlock()
			return
		}
	}
}

func (ap *ALSAPlayer) Start() {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if ap.started || ap.handle == nil || ap.src == nil || ap.err != nil {
		return
	}
	ap.started = true
	ap.stop = make(chan struct{})
	ap.done = make(chan struct{})
	go ap.pump(ap.src, ap.stop, ap.done)
}

func (ap *ALSAPlayer) Stop() {
	ap.mutex.Lock()
	stop, done := ap.stop, ap.done
	ap.started = false
	ap.stop, ap.done = nil, nil
	ap.mutex.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (ap *ALSAPlayer) Close() {
	ap.Stop()
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if ap.handle != nil {
		C.closePCM(ap.handle)
		ap.handle = nil
	}
}

func (ap *ALSAPlayer) Suspend() error {
	ap.Stop()
	return nil
}

func (ap *ALSAPlayer) Resume() error {
	ap.Start()
	return ap.Err()
}

func (ap *ALSAPlayer) Err() error {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	return ap.err
}
