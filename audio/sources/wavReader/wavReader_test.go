package wavReader

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWav creates a mono 16 bit wav file containing the given samples.
func writeWav(t *testing.T, samplerate int, samples []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, samplerate, 16, 1, 1)
	buf := &ga.IntBuffer{
		Format:         &ga.Format{NumChannels: 1, SampleRate: samplerate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())

	return path
}

func TestWavReaderRead(t *testing.T) {
	samples := make([]int, 250)
	for i := range samples {
		samples[i] = 16384
	}
	path := writeWav(t, 8000, samples)

	r, err := NewWavReader(path, FramesPerBuffer(100))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 8000.0, r.Samplerate())
	require.NoError(t, r.Start())

	var frames []int
	for {
		msg, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, 1, msg.Channels)
		assert.Equal(t, 8000.0, msg.Samplerate)
		assert.InDelta(t, 0.5, msg.Data[0], 0.0001)
		frames = append(frames, msg.Frames)
	}

	assert.Equal(t, []int{100, 100, 50}, frames)
	require.NoError(t, r.Stop())
}

func TestWavReaderInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a riff file"), 0o644))

	_, err := NewWavReader(path)
	assert.Error(t, err)
}

func TestWavReaderMissingFile(t *testing.T) {
	_, err := NewWavReader(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestWavReaderCloseTwice(t *testing.T) {
	path := writeWav(t, 8000, make([]int, 10))

	r, err := NewWavReader(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.Read()
	assert.Error(t, err)
}
