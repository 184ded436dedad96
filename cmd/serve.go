// Copyright © 2016 Tobias Wellnitz, DH1TW <Tobias.Wellnitz@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dh1tw/graphAudio/audio/sinks/scWriter"
	"github.com/dh1tw/graphAudio/audio/sinks/wavWriter"
	"github.com/dh1tw/graphAudio/audio/sources"
	"github.com/dh1tw/graphAudio/control"
	"github.com/dh1tw/graphAudio/control/natsServer"
	"github.com/dh1tw/graphAudio/engine"
	"github.com/dh1tw/graphAudio/events"
	"github.com/dh1tw/graphAudio/graph"
	glog "github.com/dh1tw/graphAudio/log"
	"github.com/dh1tw/graphAudio/webserver"
	"github.com/gordonklaus/portaudio"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the audio engine and its control interfaces",
	Long: `Start the audio engine and its control interfaces

The audio graph is rendered either on a local sound card (speaker) or
into a wav file (wav). It starts with a single empty master node and can be
modified through the REST / websocket API and through nats requests.
`,
	Run: serve,
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("engine", "e", "speaker", "engine which renders the graph [speaker, wav]")
	serveCmd.Flags().IntP("frames-per-buffer", "b", 512, "amount of frames rendered per buffer")
	serveCmd.Flags().String("resampler", "linear", "resampler for sources with a different samplerate [linear, sinc-fastest, sinc-medium, sinc-best]")

	serveCmd.Flags().StringP("output-device-name", "o", "default", "output device")
	serveCmd.Flags().String("output-host-api", "default", "host api of the output device")
	serveCmd.Flags().Float64("output-device-samplerate", 0, "output device samplerate (0 = device default)")
	serveCmd.Flags().Duration("output-device-latency", 0, "output latency (0 = device default)")
	serveCmd.Flags().String("output-device-sample-format", "f32", "sample format of the output device [f32, i16]")

	serveCmd.Flags().String("wav-path", "graphAudio.wav", "file written by the wav engine")
	serveCmd.Flags().Float64("wav-samplerate", 48000, "samplerate of the wav file")
	serveCmd.Flags().Int("wav-bit-depth", 16, "bit depth of the wav file [16, 24]")

	serveCmd.Flags().Bool("http", true, "enable the REST / websocket API")
	serveCmd.Flags().String("http-host", "127.0.0.1", "Host (use '0.0.0.0' to listen on all network adapters)")
	serveCmd.Flags().IntP("http-port", "k", 9090, "Port to access the REST / websocket API")

	serveCmd.Flags().Bool("nats", false, "enable the nats control interface")
	serveCmd.Flags().StringP("broker-url", "u", "localhost", "Broker URL")
	serveCmd.Flags().IntP("broker-port", "p", 4222, "Broker Port")
	serveCmd.Flags().StringP("password", "P", "", "NATS Password")
	serveCmd.Flags().StringP("username", "U", "", "NATS Username")
	serveCmd.Flags().String("subject", "graphAudio", "NATS subject prefix of the control requests")

	viper.BindPFlag("engine.type", serveCmd.Flags().Lookup("engine"))
	viper.BindPFlag("engine.frames-per-buffer", serveCmd.Flags().Lookup("frames-per-buffer"))
	viper.BindPFlag("engine.resampler", serveCmd.Flags().Lookup("resampler"))

	viper.BindPFlag("output-device.device-name", serveCmd.Flags().Lookup("output-device-name"))
	viper.BindPFlag("output-device.host-api", serveCmd.Flags().Lookup("output-host-api"))
	viper.BindPFlag("output-device.samplerate", serveCmd.Flags().Lookup("output-device-samplerate"))
	viper.BindPFlag("output-device.latency", serveCmd.Flags().Lookup("output-device-latency"))
	viper.BindPFlag("output-device.sample-format", serveCmd.Flags().Lookup("output-device-sample-format"))

	viper.BindPFlag("wav.path", serveCmd.Flags().Lookup("wav-path"))
	viper.BindPFlag("wav.samplerate", serveCmd.Flags().Lookup("wav-samplerate"))
	viper.BindPFlag("wav.bit-depth", serveCmd.Flags().Lookup("wav-bit-depth"))

	viper.BindPFlag("http.enabled", serveCmd.Flags().Lookup("http"))
	viper.BindPFlag("http.host", serveCmd.Flags().Lookup("http-host"))
	viper.BindPFlag("http.port", serveCmd.Flags().Lookup("http-port"))

	viper.BindPFlag("nats.enabled", serveCmd.Flags().Lookup("nats"))
	viper.BindPFlag("nats.broker-url", serveCmd.Flags().Lookup("broker-url"))
	viper.BindPFlag("nats.broker-port", serveCmd.Flags().Lookup("broker-port"))
	viper.BindPFlag("nats.password", serveCmd.Flags().Lookup("password"))
	viper.BindPFlag("nats.username", serveCmd.Flags().Lookup("username"))
	viper.BindPFlag("nats.subject", serveCmd.Flags().Lookup("subject"))
}

func serve(cmd *cobra.Command, args []string) {

	if err := checkParameterValues(); err != nil {
		exit(err)
	}

	// viper settings need to be copied in local variables
	// since viper lookups allocate of each lookup a copy
	// and are quite unperformant

	engineType := viper.GetString("engine.type")
	framesPerBuffer := viper.GetInt("engine.frames-per-buffer")

	// values checked before
	quality, _ := sources.ParseQuality(viper.GetString("engine.resampler"))
	sampleFormat, _ := getSampleFormat(viper.GetString("output-device.sample-format"))

	oDeviceName := viper.GetString("output-device.device-name")
	oHostAPI := viper.GetString("output-device.host-api")
	oSamplerate := viper.GetFloat64("output-device.samplerate")
	oLatency := viper.GetDuration("output-device.latency")

	wavPath := viper.GetString("wav.path")
	wavSamplerate := viper.GetFloat64("wav.samplerate")
	wavBitDepth := viper.GetInt("wav.bit-depth")

	httpEnabled := viper.GetBool("http.enabled")
	httpHost := viper.GetString("http.host")
	httpPort := viper.GetInt("http.port")

	natsEnabled := viper.GetBool("nats.enabled")
	natsUsername := viper.GetString("nats.username")
	natsPassword := viper.GetString("nats.password")
	natsBrokerURL := viper.GetString("nats.broker-url")
	natsBrokerPort := viper.GetInt("nats.broker-port")
	natsSubject := viper.GetString("nats.subject")

	logger := glog.GetLogger()
	if err := glog.SetLevel(logger, viper.GetString("log.level")); err != nil {
		exit(err)
	}
	log := glog.Component(logger, "serve")

	var eng engine.AudioEngine

	switch engineType {
	case "wav":
		w, err := wavWriter.NewWavWriter(wavPath,
			wavWriter.Samplerate(wavSamplerate),
			wavWriter.BitDepth(wavBitDepth),
			wavWriter.FramesPerBuffer(framesPerBuffer),
			wavWriter.Realtime(true),
			wavWriter.Logger(logger),
		)
		if err != nil {
			exit(err)
		}
		eng = w

	default:
		if err := portaudio.Initialize(); err != nil {
			exit(err)
		}
		defer portaudio.Terminate()

		s, err := scWriter.NewScWriter(
			scWriter.HostAPI(oHostAPI),
			scWriter.DeviceName(oDeviceName),
			scWriter.Samplerate(oSamplerate),
			scWriter.Latency(oLatency),
			scWriter.FramesPerBuffer(framesPerBuffer),
			scWriter.SampleFormat(sampleFormat),
			scWriter.Logger(logger),
		)
		if err != nil {
			exit(err)
		}
		eng = s
	}

	defer runExitHooks()
	onExit(func() {
		if err := eng.Close(); err != nil {
			log.WithError(err).Error("unable to close engine")
		}
	})

	g := graph.NewShared()

	bg, err := eng.RunAsync(g)
	if err != nil {
		exit(err)
	}

	log.WithFields(logrus.Fields{
		"engine":     engineType,
		"samplerate": bg.SampleHz,
		"resampler":  quality.String(),
	}).Info("engine started")

	svc := control.NewGraphService(g, bg,
		glog.Component(logger, "control"), sources.WithQuality(quality))

	if httpEnabled {
		web, err := webserver.NewWebServer(fmt.Sprintf("%s:%d", httpHost, httpPort),
			svc, webserver.Logger(logger))
		if err != nil {
			exit(err)
		}
		go func() {
			if err := web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				exit(err)
			}
		}()
		onExit(func() { web.Close() })
	}

	if natsEnabled {
		// start from default nats config and add the common options
		nopts := nats.GetDefaultOptions()
		nopts.Servers = []string{fmt.Sprintf("nats://%s:%v", natsBrokerURL, natsBrokerPort)}
		nopts.User = natsUsername
		nopts.Password = natsPassword

		// we want to set the nats.Options.Name so that we can distinguish
		// the connection when monitoring the nats server with nats-top
		nopts.Name = natsServer.ValidateSubject(natsSubject) + ":control"

		nopts.DisconnectedErrCB = func(conn *nats.Conn, err error) {
			log.WithError(err).Warn("disconnected from nats broker")
		}
		nopts.ReconnectedCB = func(conn *nats.Conn) {
			log.WithField("url", conn.ConnectedUrl()).Info("reconnected to nats broker")
		}
		nopts.AsyncErrorCB = func(conn *nats.Conn, sub *nats.Subscription, err error) {
			log.WithError(err).WithField("subject", sub.Subject).Error("nats error")
		}

		nc, err := nopts.Connect()
		if err != nil {
			exit(fmt.Errorf("unable to connect to nats broker: %w", err))
		}
		onExit(nc.Close)

		ns := natsServer.NewServer(nc, svc,
			natsServer.Subject(natsSubject),
			natsServer.Logger(logger),
		)
		if err := ns.Start(); err != nil {
			exit(err)
		}
		onExit(func() { ns.Close() })
	}

	sig := <-events.WatchSystemEvents(context.Background())
	log.WithField("signal", sig.String()).Info("shutting down")
}
