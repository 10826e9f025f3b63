package audio

import (
	"errors"
	"io"
)

// fakeSource hands out the configured buffers and then returns err.
type fakeSource struct {
	buffers []Msg
	err     error
	starts  int
	stops   int
	closes  int
}

func (f *fakeSource) Start() error { f.starts++; return nil }
func (f *fakeSource) Stop() error  { f.stops++; return nil }
func (f *fakeSource) Close() error { f.closes++; return nil }

func (f *fakeSource) Read() (Msg, error) {
	if len(f.buffers) == 0 {
		if f.err != nil {
			return Msg{}, f.err
		}
		return Msg{}, io.EOF
	}
	msg := f.buffers[0]
	f.buffers = f.buffers[1:]
	return msg, nil
}

var errUnplugged = errors.New("device unplugged")

func buffer(v float32, frames int) Msg {
	data := make([]float32, frames)
	for i := range data {
		data[i] = v
	}
	return Msg{Data: data, Samplerate: 8000, Channels: 1, Frames: frames}
}
