package audio

import (
	"errors"
	"io"
	"sync"
	"time"
)

// Segmenter turns an audio Source into a sequence of fixed length audio
// segments. For every segment the source is started, the required amount
// of buffers is read and the source is stopped again.
type Segmenter struct {
	src       Source
	buffers   int
	closeOnce sync.Once
	closeErr  error
}

// BuffersPerSegment returns how many buffers of framesPerBuffer frames
// make up one segment of the given length. At least one buffer is
// always read.
func BuffersPerSegment(samplerate float64, framesPerBuffer int, length time.Duration) int {
	if framesPerBuffer <= 0 {
		return 1
	}
	n := int(samplerate / float64(framesPerBuffer) * length.Seconds())
	if n < 1 {
		return 1
	}
	return n
}

// NewSegmenter returns a Segmenter which reads buffersPerSegment buffers
// from src for each segment.
func NewSegmenter(src Source, buffersPerSegment int) *Segmenter {
	if buffersPerSegment < 1 {
		buffersPerSegment = 1
	}
	return &Segmenter{
		src:     src,
		buffers: buffersPerSegment,
	}
}

// Next blocks until a complete segment has been captured. When the source
// runs out of data (io.EOF) a partially filled segment is returned first;
// the following call returns io.EOF. Any other failure of the source is
// returned as a *DeviceError.
func (s *Segmenter) Next() (Msg, error) {

	if err := s.src.Start(); err != nil {
		return Msg{}, &DeviceError{Op: "start", Err: err}
	}

	seg := Msg{}

	for i := 0; i < s.buffers; i++ {
		msg, err := s.src.Read()
		if err != nil {
			s.src.Stop()
			if errors.Is(err, io.EOF) {
				if len(seg.Data) > 0 {
					return seg, nil
				}
				return Msg{}, io.EOF
			}
			return Msg{}, &DeviceError{Op: "read", Err: err}
		}

		if seg.Data == nil {
			seg.Data = make([]float32, 0, len(msg.Data)*s.buffers)
			seg.Samplerate = msg.Samplerate
			seg.Channels = msg.Channels
		}
		seg.Data = append(seg.Data, msg.Data...)
		seg.Frames += msg.Frames
	}

	if err := s.src.Stop(); err != nil {
		return Msg{}, &DeviceError{Op: "stop", Err: err}
	}

	return seg, nil
}

// Close releases the underlying source. Only the first call has an effect.
func (s *Segmenter) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.src.Close()
	})
	return s.closeErr
}
