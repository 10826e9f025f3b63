package meter

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		raw  string
		want Threshold
	}{
		{"+252", Threshold{Value: 252, Bound: Upper}},
		{"-144", Threshold{Value: 144, Bound: Lower}},
		{"300", Threshold{Value: 300, Bound: Upper}},
		{"0", Threshold{Value: 0, Bound: Upper}},
		{"-0", Threshold{Value: 0, Bound: Lower}},
		{"+007", Threshold{Value: 7, Bound: Upper}},
		{"18446744073709551615", Threshold{Value: math.MaxUint64, Bound: Upper}},
		{"18446744073709551616", Threshold{Value: math.MaxUint64, Bound: Upper}},
		{"+99999999999999999999999", Threshold{Value: math.MaxUint64, Bound: Upper}},
		{"-99999999999999999999999", Threshold{Value: math.MaxUint64, Bound: Lower}},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseThreshold(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseThresholdInvalid(t *testing.T) {
	for _, raw := range []string{"", "+", "-", "abc", "+-5", "--5", "12a", " 12", "1.5", "+1e3", "٣"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseThreshold(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidThreshold)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "threshold", cfgErr.Parm)
		})
	}
}

func TestThresholdString(t *testing.T) {
	assert.Equal(t, "+252", Threshold{Value: 252}.String())
	assert.Equal(t, "-144", Threshold{Value: 144, Bound: Lower}.String())
	assert.Equal(t, "lower", Lower.String())
	assert.Equal(t, "upper", Upper.String())
}

func TestThresholdSatisfied(t *testing.T) {
	upper := Threshold{Value: 100, Bound: Upper}
	assert.True(t, upper.Satisfied(100.5))
	assert.False(t, upper.Satisfied(100))
	assert.False(t, upper.Satisfied(20))

	lower := Threshold{Value: 100, Bound: Lower}
	assert.True(t, lower.Satisfied(99.5))
	assert.False(t, lower.Satisfied(100))
	assert.False(t, lower.Satisfied(150))
}

// fired returns the (1-based) positions of the readings on which the
// evaluator fired.
func fired(e *Evaluator, readings ...float32) []int {
	res := []int{}
	for i, r := range readings {
		if e.Evaluate(r) {
			res = append(res, i+1)
		}
	}
	return res
}

func TestEvaluator(t *testing.T) {
	tests := []struct {
		name      string
		threshold Threshold
		num       int
		readings  []float32
		want      []int
	}{
		{
			name:      "reset by a quiet segment",
			threshold: Threshold{Value: 100},
			num:       3,
			readings:  []float32{150, 150, 50, 150, 150, 150},
			want:      []int{6},
		},
		{
			name:      "run shorter than num never fires",
			threshold: Threshold{Value: 100},
			num:       3,
			readings:  []float32{150, 150, 50, 150, 150, 50},
			want:      []int{},
		},
		{
			name:      "fires once per sustained run",
			threshold: Threshold{Value: 100},
			num:       2,
			readings:  []float32{150, 150, 150, 150, 50, 150, 150},
			want:      []int{2, 7},
		},
		{
			name:      "single segment",
			threshold: Threshold{Value: 100},
			num:       1,
			readings:  []float32{150, 50, 150, 150},
			want:      []int{1, 3},
		},
		{
			name:      "lower bound",
			threshold: Threshold{Value: 100, Bound: Lower},
			num:       2,
			readings:  []float32{50, 150, 50, 50},
			want:      []int{4},
		},
		{
			name:      "unset num never fires",
			threshold: Threshold{Value: 100},
			num:       0,
			readings:  []float32{150, 150, 150},
			want:      []int{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEvaluator(tc.threshold, tc.num)
			assert.Equal(t, tc.want, fired(e, tc.readings...))
		})
	}
}

func TestEvaluatorHits(t *testing.T) {
	e := NewEvaluator(Threshold{Value: 10}, 5)
	e.Evaluate(20)
	e.Evaluate(20)
	assert.Equal(t, 2, e.Hits())
	e.Evaluate(5)
	assert.Equal(t, 0, e.Hits())
	assert.Equal(t, Threshold{Value: 10}, e.Threshold())
}
