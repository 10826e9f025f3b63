package scReader

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dh1tw/soundmeter/audio"
	pa "github.com/gordonklaus/portaudio"
)

// ScReader implements the audio.Source interface and is used to read (record)
// audio from a local sound card (e.g. microphone). The portaudio stream is
// opened in blocking mode; each call to Read returns one buffer.
type ScReader struct {
	sync.Mutex
	options    Options
	deviceInfo *pa.DeviceInfo
	stream     *pa.Stream
	in         []float32
	running    bool
}

// NewScReader returns a soundcard reader which reads audio from a local
// audio device (e.g. a microphone). Portaudio is initialized here and
// terminated again when the reader is closed.
func NewScReader(opts ...Option) (*ScReader, error) {

	if err := pa.Initialize(); err != nil {
		return nil, err
	}

	r, err := newScReader(opts...)
	if err != nil {
		pa.Terminate()
		return nil, err
	}

	return r, nil
}

func newScReader(opts ...Option) (*ScReader, error) {

	r := &ScReader{
		options: Options{
			HostAPI:         "default",
			DeviceName:      "default",
			Channels:        DefaultChannels,
			Samplerate:      DefaultSamplerate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			Latency:         time.Millisecond * 50,
		},
		deviceInfo: nil,
	}

	for _, option := range opts {
		option(&r.options)
	}

	var hostAPI *pa.HostApiInfo

	if r.options.HostAPI == "default" {
		switch runtime.GOOS {
		case "windows":
			// try to use WASAPI since it provides lower latency than the
			// other windows audio apis
			ha, err := pa.HostApi(pa.WASAPI)
			if err != nil {
				// try to fallback to the default API
				ha, err = pa.DefaultHostApi()
				if err != nil {
					return nil, fmt.Errorf("unable to determine the default host api - please provide a specific host api")
				}
			}
			hostAPI = ha
		default:
			// all other OS
			ha, err := pa.DefaultHostApi()
			if err != nil {
				return nil, fmt.Errorf("unable to determine the default host api - please provide a specific host api")
			}
			hostAPI = ha
		}
	} else {
		ha, err := getHostAPI(r.options.HostAPI)
		if err != nil {
			return nil, err
		}
		hostAPI = ha
	}

	if r.options.DeviceName == "default" {
		r.deviceInfo = hostAPI.DefaultInputDevice
	} else {
		dev, err := getPaDevice(r.options.DeviceName, hostAPI)
		if err != nil {
			return nil, err
		}
		r.deviceInfo = dev
	}

	if r.deviceInfo == nil {
		return nil, fmt.Errorf("no input device available for host api %s", hostAPI.Name)
	}

	// portaudio fills this buffer on every call to stream.Read()
	r.in = make([]float32, r.options.FramesPerBuffer*r.options.Channels)

	streamDeviceParam := pa.StreamDeviceParameters{
		Device:   r.deviceInfo,
		Channels: r.options.Channels,
		Latency:  r.options.Latency,
	}

	streamParm := pa.StreamParameters{
		FramesPerBuffer: r.options.FramesPerBuffer,
		Input:           streamDeviceParam,
		SampleRate:      r.options.Samplerate,
	}

	stream, err := pa.OpenStream(streamParm, r.in)
	if err != nil {
		return nil,
			fmt.Errorf("unable to open recording audio stream on device %s: %s",
				r.deviceInfo.Name, err)
	}
	r.stream = stream

	log.Printf("input sound device: %s, HostAPI: %s\n", r.deviceInfo.Name, r.deviceInfo.HostApi.Name)
	return r, nil
}

// Read blocks until a full buffer of audio frames has been recorded.
func (r *ScReader) Read() (audio.Msg, error) {
	r.Lock()
	defer r.Unlock()

	if r.stream == nil {
		return audio.Msg{}, fmt.Errorf("portaudio stream not initialized")
	}

	if err := r.stream.Read(); err != nil {
		if err != pa.InputOverflowed {
			return audio.Msg{}, err
		}
		log.Println("InputOverflow")
	}

	// a deep copy is necessary, since portaudio reuses the slice "in"
	buf := make([]float32, len(r.in))
	copy(buf, r.in)

	msg := audio.Msg{
		Data:       buf,
		Samplerate: r.options.Samplerate,
		Channels:   r.options.Channels,
		Frames:     r.options.FramesPerBuffer,
	}

	return msg, nil
}

// Start will start streaming audio from a local soundcard device.
func (r *ScReader) Start() error {
	r.Lock()
	defer r.Unlock()
	if r.stream == nil {
		return fmt.Errorf("portaudio stream not initialized")
	}
	if r.running {
		return nil
	}
	if err := r.stream.Start(); err != nil {
		return err
	}
	r.running = true
	return nil
}

// Stop stops streaming audio.
func (r *ScReader) Stop() error {
	r.Lock()
	defer r.Unlock()
	if r.stream == nil {
		return fmt.Errorf("portaudio stream not initialized")
	}
	if !r.running {
		return nil
	}
	r.running = false
	return r.stream.Stop()
}

// Close shutsdown properly the soundcard reader and terminates portaudio.
func (r *ScReader) Close() error {
	r.Lock()
	defer r.Unlock()
	if r.stream == nil {
		return fmt.Errorf("portaudio stream not initialized")
	}
	if r.running {
		r.stream.Abort()
		r.running = false
	}
	err := r.stream.Close()
	r.stream = nil
	pa.Terminate()
	return err
}

// getHostAPI takes the name of a supported portaudio host api and returns
// the corresponding portaudio hostApiInfo object
func getHostAPI(name string) (*pa.HostApiInfo, error) {

	var hostAPIType pa.HostApiType

	switch strings.ToLower(name) {
	case "indevelopment":
		hostAPIType = pa.InDevelopment
	case "directsound":
		hostAPIType = pa.DirectSound
	case "mme":
		hostAPIType = pa.MME
	case "asio":
		hostAPIType = pa.ASIO
	case "soundmanager":
		hostAPIType = pa.SoundManager
	case "coreaudio":
		hostAPIType = pa.CoreAudio
	case "oss":
		hostAPIType = pa.OSS
	case "alsa":
		hostAPIType = pa.ALSA
	case "al":
		hostAPIType = pa.AL
	case "beos":
		hostAPIType = pa.BeOS
	case "wdmks":
		hostAPIType = pa.WDMkS
	case "jack":
		hostAPIType = pa.JACK
	case "wasapi":
		hostAPIType = pa.WASAPI
	case "audiosciencehpi":
		hostAPIType = pa.AudioScienceHPI
	default:
		return nil, fmt.Errorf("unknown host api type: %s", name)
	}

	hostAPIInfo, err := pa.HostApi(hostAPIType)
	if err != nil {
		return nil, fmt.Errorf("unable to load host api %s: %s", name, err.Error())
	}

	return hostAPIInfo, nil

}

// getPaDevice checks if the Audio Devices actually exist and
// then returns it
func getPaDevice(name string, hostAPI *pa.HostApiInfo) (*pa.DeviceInfo, error) {
	for _, device := range hostAPI.Devices {
		if strings.EqualFold(device.Name, name) && device.MaxInputChannels > 0 {
			return device, nil
		}
	}
	return nil, fmt.Errorf("unknown audio input device '%s'", name)
}
