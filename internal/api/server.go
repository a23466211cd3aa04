// Package api serves the HTTP JSON boundary: the latest status record, the
// effective configuration, and a liveness probe. Handlers only read the
// published snapshot; they never trigger sampling.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/real-ds/IOT-ADAS/internal/config"
	"github.com/real-ds/IOT-ADAS/internal/hazard"
	"github.com/real-ds/IOT-ADAS/internal/httputil"
	"github.com/real-ds/IOT-ADAS/internal/timeutil"
	"github.com/real-ds/IOT-ADAS/internal/units"
	"github.com/real-ds/IOT-ADAS/internal/version"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// StatusSource provides the latest published record. Nil means no publish
// cycle has completed yet.
type StatusSource interface {
	Latest() *hazard.StatusRecord
}

type Server struct {
	source StatusSource
	tuning *config.TuningConfig
	clock  timeutil.Clock
	units  string
}

// NewServer creates the API server. The units value is the default display
// unit for distances; requests may override it per call.
func NewServer(source StatusSource, tuning *config.TuningConfig, clock timeutil.Clock, displayUnits string) *Server {
	return &Server{
		source: source,
		tuning: tuning,
		clock:  clock,
		units:  displayUnits,
	}
}

// ServeMux returns the API route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.showStatus)
	mux.HandleFunc("/config", s.showConfig)
	mux.HandleFunc("/healthz", s.showHealth)
	return mux
}

func (s *Server) showStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	targetUnits := s.units
	if u := r.URL.Query().Get("units"); u != "" {
		if !units.IsValid(u) {
			httputil.BadRequest(w, "invalid units, valid values: "+units.GetValidUnitsString())
			return
		}
		targetUnits = u
	}

	record := s.source.Latest()
	if record == nil {
		httputil.ServiceUnavailable(w, "no status yet")
		return
	}

	httputil.WriteJSONOK(w, convertRecord(*record, targetUnits))
}

// convertRecord returns a copy of the record with distances converted from
// canonical cm to the target units, keeping one decimal place. The sentinel
// scales with the conversion, so it stays larger than every converted
// threshold.
func convertRecord(record hazard.StatusRecord, targetUnits string) hazard.StatusRecord {
	for i := range record.Zones {
		record.Zones[i].DistanceCM = hazard.Round1(units.ConvertDistance(record.Zones[i].DistanceCM, targetUnits))
	}
	return record
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	thresholds := s.tuning.Thresholds()
	httputil.WriteJSONOK(w, map[string]interface{}{
		"units":               s.units,
		"unsafe_cm":           thresholds.UnsafeCM,
		"careful_cm":          thresholds.CarefulCM,
		"safe_cm":             thresholds.SafeCM,
		"samples_per_reading": s.tuning.GetSamplesPerReading(),
		"sample_pause":        s.tuning.GetSamplePause().String(),
		"echo_timeout":        s.tuning.GetEchoTimeout().String(),
		"publish_interval":    s.tuning.GetPublishInterval().String(),
		"zones":               hazard.Zones,
	})
}

func (s *Server) showHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	record := s.source.Latest()
	if record == nil {
		httputil.WriteJSONOK(w, map[string]interface{}{
			"status":  "starting",
			"version": version.Version,
		})
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":         "ok",
		"version":        version.Version,
		"last_cycle_id":  record.CycleID,
		"last_cycle_age": s.clock.Since(record.CapturedAt).String(),
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
