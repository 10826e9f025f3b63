package audio

import (
	"errors"

	"github.com/chewxy/math32"
)

// FullScale maps normalized float32 samples onto the 16 bit PCM range, so
// that RMS values are comparable with the integer values reported by
// codec libraries for 16 bit audio.
const FullScale float32 = 32768

// RMS calculates the root mean square over all (interleaved) samples of
// an audio segment, scaled to FullScale. Multiple channels are not
// separated; the result is one loudness value for the whole segment.
func RMS(msg Msg) (float32, error) {

	if len(msg.Data) == 0 {
		return 0, errors.New("empty audio segment")
	}

	var sum float64
	for _, el := range msg.Data {
		sum += float64(el) * float64(el)
	}

	mean := float32(sum / float64(len(msg.Data)))

	return math32.Sqrt(mean) * FullScale, nil
}
