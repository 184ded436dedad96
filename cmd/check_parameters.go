package cmd

import (
	"fmt"

	"github.com/dh1tw/graphAudio/audio/sources"
	"github.com/dh1tw/graphAudio/engine"
	"github.com/dh1tw/graphAudio/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var engineTypes = []string{"speaker", "wav"}

func checkParameterValues() error {

	if !utils.StringInSlice(viper.GetString("engine.type"), engineTypes) {
		return &parmError{
			parm: "engine.type",
			msg:  "allowed values are [speaker, wav]",
		}
	}

	if viper.GetInt("engine.frames-per-buffer") <= 0 {
		return &parmError{
			parm: "engine.frames-per-buffer",
			msg:  "value must be > 0",
		}
	}

	if _, err := sources.ParseQuality(viper.GetString("engine.resampler")); err != nil {
		return &parmError{
			parm: "engine.resampler",
			msg:  "allowed values are [linear, sinc-fastest, sinc-medium, sinc-best]",
		}
	}

	if viper.GetFloat64("output-device.samplerate") < 0 {
		return &parmError{
			parm: "output-device.samplerate",
			msg:  "value must be >= 0 (0 selects the device default)",
		}
	}

	if _, err := getSampleFormat(viper.GetString("output-device.sample-format")); err != nil {
		return &parmError{
			parm: "output-device.sample-format",
			msg:  "allowed values are [f32, i16]",
		}
	}

	if viper.GetString("engine.type") == "wav" {
		if viper.GetString("wav.path") == "" {
			return &parmError{
				parm: "wav.path",
				msg:  "a file path is required for the wav engine",
			}
		}
		if viper.GetFloat64("wav.samplerate") <= 0 {
			return &parmError{
				parm: "wav.samplerate",
				msg:  "value must be > 0",
			}
		}
		if bd := viper.GetInt("wav.bit-depth"); bd != 16 && bd != 24 {
			return &parmError{
				parm: "wav.bit-depth",
				msg:  "allowed values are [16, 24]",
			}
		}
	}

	if viper.GetBool("http.enabled") {
		if port := viper.GetInt("http.port"); port < 1 || port > 65535 {
			return &parmError{
				parm: "http.port",
				msg:  "allowed values are [1...65535]",
			}
		}
	}

	if viper.GetBool("nats.enabled") {
		if port := viper.GetInt("nats.broker-port"); port < 1 || port > 65535 {
			return &parmError{
				parm: "nats.broker-port",
				msg:  "allowed values are [1...65535]",
			}
		}
		if viper.GetString("nats.subject") == "" {
			return &parmError{
				parm: "nats.subject",
				msg:  "subject must not be empty",
			}
		}
	}

	if _, err := logrus.ParseLevel(viper.GetString("log.level")); err != nil {
		return &parmError{
			parm: "log.level",
			msg:  "allowed values are [trace, debug, info, warn, error, fatal, panic]",
		}
	}

	return nil
}

type parmError struct {
	parm string
	msg  string
}

func (p *parmError) Error() string {
	return fmt.Sprintf("%v: %v\n", p.parm, p.msg)
}

// getSampleFormat returns the sample format of the speaker engine for
// its name (typically read from application settings)
func getSampleFormat(name string) (engine.SampleFormat, error) {
	switch name {
	case "f32", "":
		return engine.F32, nil
	case "i16":
		return engine.I16, nil
	}
	return engine.F32, fmt.Errorf("unknown sample format '%s'", name)
}
