// Command adas runs the ranging and threat-classification engine: it samples
// the three ultrasonic zones over the sensor serial port, publishes a status
// record every cycle, and serves the record over HTTP JSON plus an optional
// MQTT feed.
package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/real-ds/IOT-ADAS/internal/api"
	"github.com/real-ds/IOT-ADAS/internal/config"
	"github.com/real-ds/IOT-ADAS/internal/hazard"
	"github.com/real-ds/IOT-ADAS/internal/publisher"
	"github.com/real-ds/IOT-ADAS/internal/rangefinder"
	"github.com/real-ds/IOT-ADAS/internal/timeutil"
	"github.com/real-ds/IOT-ADAS/internal/units"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	flags := parseFlags(os.Args[1:])

	if flags.listen == "" {
		log.Fatal("Listen address is required")
	}
	if !units.IsValid(flags.units) {
		log.Fatalf("Invalid units %q, valid values: %s", flags.units, units.GetValidUnitsString())
	}

	// .env supplies broker credentials in deployments that use the MQTT
	// feed; absence is fine.
	_ = godotenv.Load()

	tuning := config.EmptyTuningConfig()
	if flags.configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(flags.configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	var sampler hazard.RangeSampler
	if flags.devMode {
		// Dev mode replays a canned obstacle pass so the dashboard and API
		// can be exercised without hardware.
		sampler = devSampler()
	} else {
		serialSampler, err := rangefinder.Open(flags.serialPort, rangefinder.DefaultSerialPortMode(), tuning.GetEchoTimeout())
		if err != nil {
			log.Fatalf("failed to open rangefinder port: %v", err)
		}
		defer serialSampler.Close()
		sampler = serialSampler
	}

	clock := timeutil.RealClock{}
	thresholds := tuning.Thresholds()

	var engines [3]*hazard.ZoneEngine
	for i, zone := range hazard.Zones {
		denoiser, err := hazard.NewDenoiser(sampler, clock, tuning.GetSamplesPerReading(), tuning.GetSamplePause())
		if err != nil {
			log.Fatalf("failed to build denoiser: %v", err)
		}
		engines[i] = hazard.NewZoneEngine(zone, denoiser, thresholds)
	}

	var sinks []publisher.Sink
	if flags.mqttBroker != "" {
		sink, err := publisher.NewMQTTSink(publisher.MQTTConfig{
			Broker:   flags.mqttBroker,
			ClientID: "iot-adas",
			Username: os.Getenv("MQTT_USERNAME"),
			Password: os.Getenv("MQTT_PASSWORD"),
			Topic:    flags.mqttTopic,
		})
		if err != nil {
			log.Fatalf("failed to connect MQTT sink: %v", err)
		}
		defer sink.Close()
		sinks = append(sinks, sink)
	}

	pub, err := publisher.New(engines, thresholds, clock, tuning.GetPublishInterval(), sinks...)
	if err != nil {
		log.Fatalf("failed to build publisher: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the publish loop: sample the three zones, aggregate, snapshot
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := pub.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("publish loop failed: %v", err)
		}
		log.Print("publish loop terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		apiMux := api.NewServer(pub, tuning, clock, flags.units).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		// read static files from the embedded filesystem in production or
		// from the local directory in dev for easier iteration
		var staticHandler http.Handler
		if flags.devMode {
			staticHandler = http.FileServer(http.Dir("./cmd/adas/static"))
		} else {
			sub, err := fs.Sub(staticFiles, "static")
			if err != nil {
				log.Fatalf("failed to mount embedded static files: %v", err)
			}
			staticHandler = http.FileServer(http.FS(sub))
		}
		mux.Handle("/", staticHandler)

		server := &http.Server{
			Addr:    flags.listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// devSampler replays an obstacle drifting through the center zone while the
// flanks stay clear.
func devSampler() *hazard.ScriptedSampler {
	sampler := hazard.NewScriptedSampler(map[hazard.Zone][]float64{
		hazard.ZoneLeft:   {210, 211, 209, 212, 210, 208},
		hazard.ZoneCenter: {120, 95, 60, 35, 18, 9, 9, 18, 35, 60, 95, 120},
		hazard.ZoneRight:  {hazard.NoObjectCM, hazard.NoObjectCM, 380, 385, hazard.NoObjectCM, hazard.NoObjectCM},
	})
	sampler.Loop = true
	return sampler
}
