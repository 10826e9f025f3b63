package meter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidThreshold is wrapped by the ConfigError returned from
	// ParseThreshold.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrAlreadyRunning is returned by Run when another meter is active in
	// this process, or when the meter has already been run.
	ErrAlreadyRunning = errors.New("a meter is already running")
)

// ConfigError is returned for configuration values which can not be used.
// It is always returned before any audio device is touched.
type ConfigError struct {
	Parm string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %v", e.Parm, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
