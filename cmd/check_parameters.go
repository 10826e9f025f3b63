package cmd

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dh1tw/soundmeter/meter"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// config holds the settings of a meter run, read from the config file,
// the environment and the pflags.
type config struct {
	Collect       bool          `parm:"meter.collect"`
	Seconds       float64       `parm:"meter.seconds" validate:"gte=0"`
	Action        string        `parm:"meter.action" validate:"omitempty,oneof=none stop exec-stop exec"`
	Threshold     string        `parm:"meter.threshold"`
	Num           int           `parm:"meter.num" validate:"gte=1"`
	Script        string        `parm:"meter.script"`
	SegmentLength time.Duration `parm:"meter.segment-length" validate:"gt=0"`
	Log           string        `parm:"meter.log"`
	Daemonize     bool          `parm:"meter.daemonize"`
	Verbose       bool          `parm:"meter.verbose"`

	HostAPI         string        `parm:"input-device.host-api"`
	DeviceName      string        `parm:"input-device.device-name"`
	Channels        int           `parm:"input-device.channels" validate:"min=1,max=2"`
	Samplerate      float64       `parm:"input-device.samplerate" validate:"gt=0"`
	FramesPerBuffer int           `parm:"input-device.frames-per-buffer" validate:"gte=16"`
	Latency         time.Duration `parm:"input-device.latency" validate:"gte=0"`
	InputFile       string        `parm:"input-file" validate:"omitempty,file"`

	WebAddress string `parm:"web.address" validate:"omitempty,hostname_port|startswith=:"`

	BrokerURL  string `parm:"nats.broker-url"`
	BrokerPort int    `parm:"nats.broker-port" validate:"min=1,max=65535"`
	Username   string `parm:"nats.username"`
	Password   string `parm:"nats.password"`
	Subject    string `parm:"nats.subject" validate:"required,excludesall= *>"`
}

func loadConfig() config {
	return config{
		Collect:         viper.GetBool("meter.collect"),
		Seconds:         viper.GetFloat64("meter.seconds"),
		Action:          viper.GetString("meter.action"),
		Threshold:       viper.GetString("meter.threshold"),
		Num:             viper.GetInt("meter.num"),
		Script:          viper.GetString("meter.script"),
		SegmentLength:   viper.GetDuration("meter.segment-length"),
		Log:             viper.GetString("meter.log"),
		Daemonize:       viper.GetBool("meter.daemonize"),
		Verbose:         viper.GetBool("meter.verbose"),
		HostAPI:         viper.GetString("input-device.host-api"),
		DeviceName:      viper.GetString("input-device.device-name"),
		Channels:        viper.GetInt("input-device.channels"),
		Samplerate:      viper.GetFloat64("input-device.samplerate"),
		FramesPerBuffer: viper.GetInt("input-device.frames-per-buffer"),
		Latency:         viper.GetDuration("input-device.latency"),
		InputFile:       viper.GetString("input-file"),
		WebAddress:      viper.GetString("web.address"),
		BrokerURL:       viper.GetString("nats.broker-url"),
		BrokerPort:      viper.GetInt("nats.broker-port"),
		Username:        viper.GetString("nats.username"),
		Password:        viper.GetString("nats.password"),
		Subject:         viper.GetString("nats.subject"),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("parm")
	})
	return v
}

// checkParameterValues validates the configuration. The action related
// values are checked by the meter package so that the same rules apply
// to every caller.
func checkParameterValues(c config) error {

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	action, err := meter.ParseAction(c.Action)
	if err != nil {
		return asParmError(err)
	}

	if action != meter.None {
		if _, err := meter.ParseThreshold(c.Threshold); err != nil {
			return asParmError(err)
		}
	}

	if (action == meter.Exec || action == meter.ExecStop) && c.Script == "" {
		return &parmError{
			parm: "meter.script",
			msg:  fmt.Sprintf("the %s action requires a script (--exec)", action),
		}
	}

	return nil
}

func fieldError(fe validator.FieldError) error {
	p := &parmError{parm: fe.Field()}
	switch fe.Tag() {
	case "oneof":
		p.msg = fmt.Sprintf("allowed values are [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		p.msg = fmt.Sprintf("value must be >= %s", fe.Param())
	case "max", "lte":
		p.msg = fmt.Sprintf("value must be <= %s", fe.Param())
	case "gt":
		p.msg = fmt.Sprintf("value must be > %s", fe.Param())
	case "file":
		p.msg = fmt.Sprintf("file %q does not exist", fe.Value())
	case "required":
		p.msg = "value must not be empty"
	default:
		p.msg = fmt.Sprintf("invalid value %v", fe.Value())
	}
	return p
}

func asParmError(err error) error {
	var cerr *meter.ConfigError
	if errors.As(err, &cerr) {
		return &parmError{parm: "meter." + cerr.Parm, msg: cerr.Err.Error()}
	}
	return err
}

type parmError struct {
	parm string
	msg  string
}

func (p *parmError) Error() string {
	return fmt.Sprintf("%v: %v", p.parm, p.msg)
}
