package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cskr/pubsub"
	"github.com/dh1tw/soundmeter/audio"
	"github.com/dh1tw/soundmeter/audio/sources/scReader"
	"github.com/dh1tw/soundmeter/audio/sources/wavReader"
	"github.com/dh1tw/soundmeter/events"
	"github.com/dh1tw/soundmeter/meter"
	"github.com/dh1tw/soundmeter/publisher"
	"github.com/dh1tw/soundmeter/webserver"
	daemon "github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	RootCmd.Flags().BoolP("collect", "c", false, "collect min, max and avg RMS values")
	RootCmd.Flags().Float64P("seconds", "s", 0, "number of seconds to run the meter (0 = forever)")
	RootCmd.Flags().StringP("action", "a", "none", "action when triggered (stop, exec-stop, exec)")
	RootCmd.Flags().StringP("threshold", "t", "", "trigger threshold, e.g. +252 (above) or -144 (below)")
	RootCmd.Flags().IntP("num", "n", 1, "consecutive segments beyond the threshold before triggering")
	RootCmd.Flags().StringP("exec", "e", "", "script executed by the exec and exec-stop actions")
	RootCmd.Flags().Duration("segment-length", time.Millisecond*500, "length of the audio segment for one RMS value")
	RootCmd.Flags().String("log", "", "log file")
	RootCmd.Flags().BoolP("daemonize", "d", false, "run the meter in the background")
	RootCmd.Flags().BoolP("verbose", "v", false, "verbose mode")

	RootCmd.Flags().String("host-api", "default", "audio host API (see enumerate)")
	RootCmd.Flags().StringP("input-device", "i", "default", "input device")
	RootCmd.Flags().Int("channels", scReader.DefaultChannels, "input channels")
	RootCmd.Flags().Float64("samplerate", scReader.DefaultSamplerate, "input device samplerate")
	RootCmd.Flags().Int("frames-per-buffer", scReader.DefaultFramesPerBuffer, "frames per audio buffer")
	RootCmd.Flags().Duration("latency", time.Millisecond*50, "input device latency")
	RootCmd.Flags().StringP("input-file", "f", "", "meter a wav file instead of an input device")

	RootCmd.Flags().StringP("web-address", "w", "", "serve the live meter on this address (e.g. :8080)")

	RootCmd.Flags().StringP("broker-url", "u", "", "publish readings to this NATS broker")
	RootCmd.Flags().IntP("broker-port", "p", 4222, "NATS broker port")
	RootCmd.Flags().StringP("username", "U", "", "NATS username")
	RootCmd.Flags().StringP("password", "P", "", "NATS password")
	RootCmd.Flags().String("subject", publisher.DefaultSubject, "NATS subject prefix")

	viper.BindPFlag("meter.collect", RootCmd.Flags().Lookup("collect"))
	viper.BindPFlag("meter.seconds", RootCmd.Flags().Lookup("seconds"))
	viper.BindPFlag("meter.action", RootCmd.Flags().Lookup("action"))
	viper.BindPFlag("meter.threshold", RootCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("meter.num", RootCmd.Flags().Lookup("num"))
	viper.BindPFlag("meter.script", RootCmd.Flags().Lookup("exec"))
	viper.BindPFlag("meter.segment-length", RootCmd.Flags().Lookup("segment-length"))
	viper.BindPFlag("meter.log", RootCmd.Flags().Lookup("log"))
	viper.BindPFlag("meter.daemonize", RootCmd.Flags().Lookup("daemonize"))
	viper.BindPFlag("meter.verbose", RootCmd.Flags().Lookup("verbose"))

	viper.BindPFlag("input-device.host-api", RootCmd.Flags().Lookup("host-api"))
	viper.BindPFlag("input-device.device-name", RootCmd.Flags().Lookup("input-device"))
	viper.BindPFlag("input-device.channels", RootCmd.Flags().Lookup("channels"))
	viper.BindPFlag("input-device.samplerate", RootCmd.Flags().Lookup("samplerate"))
	viper.BindPFlag("input-device.frames-per-buffer", RootCmd.Flags().Lookup("frames-per-buffer"))
	viper.BindPFlag("input-device.latency", RootCmd.Flags().Lookup("latency"))
	viper.BindPFlag("input-file", RootCmd.Flags().Lookup("input-file"))

	viper.BindPFlag("web.address", RootCmd.Flags().Lookup("web-address"))

	viper.BindPFlag("nats.broker-url", RootCmd.Flags().Lookup("broker-url"))
	viper.BindPFlag("nats.broker-port", RootCmd.Flags().Lookup("broker-port"))
	viper.BindPFlag("nats.username", RootCmd.Flags().Lookup("username"))
	viper.BindPFlag("nats.password", RootCmd.Flags().Lookup("password"))
	viper.BindPFlag("nats.subject", RootCmd.Flags().Lookup("subject"))
}

func runMeter(cmd *cobra.Command, args []string) {

	// Try to read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error parsing config file %v: %v\n",
				viper.ConfigFileUsed(), err)
			os.Exit(1)
		}
	}

	cfg := loadConfig()

	// check if values from config file / pflags are valid
	if err := checkParameterValues(cfg); err != nil {
		exit(err)
	}

	if cfg.Daemonize {
		dctx, isParent, err := daemonize()
		if err != nil {
			exit(err)
		}
		if isParent {
			return
		}
		defer dctx.Release()
	}

	// already validated by checkParameterValues
	action, _ := meter.ParseAction(cfg.Action)

	evPS := pubsub.New(100)
	defer evPS.Shutdown()

	opts := []meter.Option{
		meter.Collect(cfg.Collect),
		meter.RunTime(time.Duration(cfg.Seconds * float64(time.Second))),
		meter.Trigger(action, cfg.Threshold, cfg.Num),
		meter.Script(cfg.Script),
		meter.Verbose(cfg.Verbose),
	}
	opts = append(opts, eventHooks(evPS)...)

	if cfg.Log != "" {
		f, err := os.OpenFile(cfg.Log, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			exit(fmt.Errorf("open log file: %w", err))
		}
		defer f.Close()
		opts = append(opts, meter.LogTo(log.New(f, "", log.LstdFlags)))
	}

	// the configuration is validated before the audio device is opened
	m, err := meter.New(opts...)
	if err != nil {
		exit(err)
	}

	src, err := openSource(cfg)
	if err != nil {
		exit(err)
	}

	stopWatching := events.WatchSystemEvents(evPS)
	defer stopWatching()

	exitCh := evPS.Sub(events.OsExit)
	go func() {
		for range exitCh {
			meter.Interrupt()
		}
	}()

	if !daemon.WasReborn() {
		go events.CaptureKeyboard(os.Stdin, evPS)
	}

	if cfg.WebAddress != "" {
		web := webserver.New(webserver.Settings{
			Address: cfg.WebAddress,
			Events:  evPS,
			Stop:    meter.Interrupt,
		})
		go func() {
			if err := web.Start(); err != nil {
				log.Println("webserver:", err)
			}
		}()
	}

	var pub *publisher.Publisher
	if cfg.BrokerURL != "" {
		pub = publisher.New(
			publisher.BrokerURL(cfg.BrokerURL),
			publisher.BrokerPort(cfg.BrokerPort),
			publisher.Username(cfg.Username),
			publisher.Password(cfg.Password),
			publisher.Subject(cfg.Subject),
		)
		if err := pub.Connect(); err != nil {
			src.Close()
			exit(err)
		}
		pub.Start(evPS)
	}

	if cfg.Verbose {
		fmt.Println(m)
	}

	runErr := m.Run(context.Background(), src)

	if pub != nil {
		select {
		case <-pub.Done():
		case <-time.After(time.Second):
			log.Println("publisher: timeout while sending the last events")
		}
		pub.Close()
	}

	if runErr != nil {
		exit(runErr)
	}
}

// eventHooks publishes the readings, triggers and the final summary of
// the meter on the event bus. Readings and triggers are dropped for
// subscribers which can not keep up, so that a slow webserver or broker
// never stalls the meter loop. The summary is published once after the
// loop has ended and is always delivered.
func eventHooks(evPS *pubsub.PubSub) []meter.Option {
	return []meter.Option{
		meter.Monitor(func(reading float32) {
			evPS.TryPub(reading, events.Reading)
		}),
		meter.OnTrigger(func(a meter.Action, reading float32) {
			evPS.TryPub(events.TriggerEvent{Action: string(a), Reading: reading}, events.Triggered)
		}),
		meter.OnStop(func(s meter.Summary) {
			evPS.Pub(s, events.Stopped)
		}),
	}
}

// openSource opens the wav file or the audio device and returns a
// Segmenter providing segments of the configured length.
func openSource(cfg config) (*audio.Segmenter, error) {

	if cfg.InputFile != "" {
		opts := []wavReader.Option{wavReader.FramesPerBuffer(cfg.FramesPerBuffer)}
		if viper.IsSet("input-device.samplerate") {
			opts = append(opts, wavReader.Samplerate(cfg.Samplerate))
		}
		r, err := wavReader.NewWavReader(cfg.InputFile, opts...)
		if err != nil {
			return nil, fmt.Errorf("input file %s: %w", cfg.InputFile, err)
		}
		n := audio.BuffersPerSegment(r.Samplerate(), cfg.FramesPerBuffer, cfg.SegmentLength)
		return audio.NewSegmenter(r, n), nil
	}

	r, err := scReader.NewScReader(
		scReader.HostAPI(cfg.HostAPI),
		scReader.DeviceName(cfg.DeviceName),
		scReader.Channels(cfg.Channels),
		scReader.Samplerate(cfg.Samplerate),
		scReader.FramesPerBuffer(cfg.FramesPerBuffer),
		scReader.Latency(cfg.Latency),
	)
	if err != nil {
		return nil, err
	}

	n := audio.BuffersPerSegment(cfg.Samplerate, cfg.FramesPerBuffer, cfg.SegmentLength)
	return audio.NewSegmenter(r, n), nil
}
