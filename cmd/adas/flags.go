package main

import (
	"flag"
	"log"

	"github.com/real-ds/IOT-ADAS/internal/publisher"
	"github.com/real-ds/IOT-ADAS/internal/units"
)

type cliFlags struct {
	devMode    bool
	listen     string
	serialPort string
	configPath string
	units      string
	mqttBroker string
	mqttTopic  string
}

// parseFlags parses the command line into a cliFlags. Split out of main so
// the defaults stay testable.
func parseFlags(args []string) *cliFlags {
	flags := &cliFlags{}
	fs := newFlagSet(flags)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}
	return flags
}

func newFlagSet(flags *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("adas", flag.ContinueOnError)
	fs.BoolVar(&flags.devMode, "dev", false, "Run in dev mode with a scripted sampler instead of hardware")
	fs.StringVar(&flags.listen, "listen", ":8080", "Listen address")
	fs.StringVar(&flags.serialPort, "port", "/dev/ttyUSB0", "Sensor serial port (ignored in dev mode)")
	fs.StringVar(&flags.configPath, "config", "", "Path to tuning config JSON (optional)")
	fs.StringVar(&flags.units, "units", units.CM, "Display units for distances (cm, mm, m, in)")
	fs.StringVar(&flags.mqttBroker, "mqtt-broker", "", "MQTT broker URL; empty disables the MQTT feed")
	fs.StringVar(&flags.mqttTopic, "mqtt-topic", publisher.DefaultStatusTopic, "MQTT topic for status records")
	return fs
}
