package audio

import (
	"fmt"
)

// Source is the interface which is implemented by an audio source. This
// could be a local audio device (e.g. microphone) or a local file. Read
// blocks until one buffer of audio frames is available.
type Source interface {
	Start() error
	Stop() error
	Close() error
	Read() (Msg, error)
}

// LoudnessFunc converts an audio segment into a single loudness value.
type LoudnessFunc func(Msg) (float32, error)

// Msg contains an audio buffer with it's metadata
type Msg struct {
	Data       []float32 // interleaved samples in the range [-1 ... 1]
	Samplerate float64
	Channels   int
	Frames     int // Number of Frames in the buffer
}

// Duration returns the amount of audio contained in the buffer.
func (m Msg) Duration() float64 {
	if m.Samplerate == 0 {
		return 0
	}
	return float64(m.Frames) / m.Samplerate
}

// DeviceError is returned when an audio source can no longer deliver
// audio frames.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
