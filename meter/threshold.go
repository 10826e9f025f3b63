package meter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Bound determines on which side of the threshold value a reading
// triggers.
type Bound int

const (
	// Upper triggers when a reading is above the threshold value.
	Upper Bound = iota
	// Lower triggers when a reading is below the threshold value.
	Lower
)

func (b Bound) String() string {
	if b == Lower {
		return "lower"
	}
	return "upper"
}

// Threshold is a RMS value together with its bound.
type Threshold struct {
	Value uint64
	Bound Bound
}

// ParseThreshold interprets strings like "+252", "-144" or "300". A "+"
// prefix or no prefix results in an upper bound, a "-" prefix in a lower
// bound. The remainder must consist of decimal digits only.
func ParseThreshold(raw string) (Threshold, error) {

	t := Threshold{Bound: Upper}
	digits := raw

	if len(raw) > 0 {
		switch raw[0] {
		case '+':
			digits = raw[1:]
		case '-':
			digits = raw[1:]
			t.Bound = Lower
		}
	}

	if !isDigits(digits) {
		return Threshold{}, &ConfigError{
			Parm: "threshold",
			Err:  fmt.Errorf("%w %q", ErrInvalidThreshold, raw),
		}
	}

	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		// out of range; RMS readings stay far below MaxUint64
		if !errors.Is(err, strconv.ErrRange) {
			return Threshold{}, &ConfigError{
				Parm: "threshold",
				Err:  fmt.Errorf("%w %q: %v", ErrInvalidThreshold, raw, err),
			}
		}
		v = math.MaxUint64
	}
	t.Value = v

	return t, nil
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Satisfied reports whether the reading lies beyond the threshold.
func (t Threshold) Satisfied(reading float32) bool {
	if t.Bound == Lower {
		return float64(reading) < float64(t.Value)
	}
	return float64(reading) > float64(t.Value)
}

func (t Threshold) String() string {
	if t.Bound == Lower {
		return fmt.Sprintf("-%d", t.Value)
	}
	return fmt.Sprintf("+%d", t.Value)
}

// Evaluator counts consecutive readings beyond a threshold. It is not
// safe for concurrent use; the meter loop is its only user.
type Evaluator struct {
	threshold Threshold
	num       int
	hits      int
}

// NewEvaluator returns an Evaluator which fires once num consecutive
// readings satisfied the threshold. With num < 1 it never fires.
func NewEvaluator(t Threshold, num int) *Evaluator {
	return &Evaluator{
		threshold: t,
		num:       num,
	}
}

// Evaluate registers a reading. It returns true exactly when this reading
// is the num-th consecutive one beyond the threshold. Any reading which
// does not satisfy the threshold resets the count.
func (e *Evaluator) Evaluate(reading float32) bool {
	if !e.threshold.Satisfied(reading) {
		e.hits = 0
		return false
	}
	e.hits++
	return e.num > 0 && e.hits == e.num
}

// Hits returns the current number of consecutive readings beyond the
// threshold.
func (e *Evaluator) Hits() int {
	return e.hits
}

// Threshold returns the threshold the evaluator compares against.
func (e *Evaluator) Threshold() Threshold {
	return e.threshold
}
