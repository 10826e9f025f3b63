package wavReader

const (
	DefaultFramesPerBuffer int = 2048
)

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for initializing a wav Reader.
type Options struct {
	FramesPerBuffer int
	Samplerate      float64
}

// FramesPerBuffer is a functional option which sets the amount of audio frames
// the wavReader will provide on each read.
// Example: A buffer with 960 frames at 48000kHz / stereo contains
// 1920 samples and results in 20ms Audio.
func FramesPerBuffer(s int) Option {
	return func(args *Options) {
		args.FramesPerBuffer = s
	}
}

// Samplerate is a functional option to convert the audio of the file
// into the given samplerate. By default the file's samplerate is kept.
func Samplerate(s float64) Option {
	return func(args *Options) {
		args.Samplerate = s
	}
}
