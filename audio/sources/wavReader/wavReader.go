package wavReader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dh1tw/gosamplerate"
	"github.com/dh1tw/soundmeter/audio"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
)

// WavReader implements the audio.Source interface and is used to read
// audio frames from a wav file instead of a sound card. Once all frames
// have been read, Read returns io.EOF.
type WavReader struct {
	sync.Mutex
	options    Options
	file       *os.File
	dec        *wav.Decoder
	buf        *ga.IntBuffer
	channels   int
	samplerate float64
	maxValue   float32
	src        *src
}

// src contains a samplerate converter and its needed variables
type src struct {
	gosamplerate.Src
	ratio float64
}

// NewWavReader opens a wav file and returns a WavReader object which
// implements the audio.Source interface. If a Samplerate option is provided
// which differs from the file's samplerate, the audio is converted.
func NewWavReader(path string, opts ...Option) (*WavReader, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(f)

	if !dec.IsValidFile() {
		f.Close()
		return nil, errors.New("invalid WAV file")
	}

	format := dec.Format()

	w := &WavReader{
		options: Options{
			FramesPerBuffer: DefaultFramesPerBuffer,
		},
		file:       f,
		dec:        dec,
		channels:   format.NumChannels,
		samplerate: float64(format.SampleRate),
		maxValue:   float32(int(1) << (dec.BitDepth - 1)),
	}

	for _, o := range opts {
		o(&w.options)
	}

	w.buf = &ga.IntBuffer{
		Data:   make([]int, w.options.FramesPerBuffer*w.channels),
		Format: format,
	}

	if w.options.Samplerate != 0 && w.options.Samplerate != w.samplerate {
		srConv, err := gosamplerate.New(gosamplerate.SRC_SINC_FASTEST,
			w.channels, 65536)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("WavReader samplerate converter: %v", err)
		}
		w.src = &src{
			Src:   srConv,
			ratio: w.options.Samplerate / w.samplerate,
		}
	}

	return w, nil
}

// Read returns the next buffer of audio frames from the file. Samples are
// normalized to [-1 ... 1] according to the file's bit depth.
func (w *WavReader) Read() (audio.Msg, error) {
	w.Lock()
	defer w.Unlock()

	if w.dec == nil {
		return audio.Msg{}, errors.New("wav reader closed")
	}

	n, err := w.dec.PCMBuffer(w.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return audio.Msg{}, err
	}

	if n == 0 {
		return audio.Msg{}, io.EOF
	}

	data := make([]float32, n)
	for i, v := range w.buf.Data[:n] {
		data[i] = float32(v) / w.maxValue
	}

	samplerate := w.samplerate

	if w.src != nil {
		data, err = w.src.Process(data, w.src.ratio, false)
		if err != nil {
			return audio.Msg{}, err
		}
		samplerate = w.options.Samplerate
	}

	msg := audio.Msg{
		Data:       data,
		Samplerate: samplerate,
		Channels:   w.channels,
		Frames:     len(data) / w.channels,
	}

	return msg, nil
}

// Samplerate returns the samplerate of the audio provided by Read.
func (w *WavReader) Samplerate() float64 {
	if w.src != nil {
		return w.options.Samplerate
	}
	return w.samplerate
}

// Start is a no-op; a file is always ready to be read.
func (w *WavReader) Start() error {
	return nil
}

// Stop is a no-op.
func (w *WavReader) Stop() error {
	return nil
}

// Close closes the wav file and releases the samplerate converter.
func (w *WavReader) Close() error {
	w.Lock()
	defer w.Unlock()

	if w.dec == nil {
		return nil
	}
	w.dec = nil

	if w.src != nil {
		gosamplerate.Delete(w.src.Src)
		w.src = nil
	}

	return w.file.Close()
}
