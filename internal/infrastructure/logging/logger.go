package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/ccsd/internal/infrastructure/config"
)

// Logger wraps slog.Logger with ccsd-specific functionality.
//
// Every Logger shares a System: its threshold follows System.SetPriority and
// loggers obtained through Subsystem carry that subsystem's facility.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
	sys *System
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Output format (JSON for production, text for development)
//   - Initial priority threshold from cfg.Level
//   - Default fields (service name, version)
//
// Parameters:
//   - cfg: Logging configuration from ccsd.yaml
//   - version: Application version for default field
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}
	return newLogger(output, cfg, version)
}

func newLogger(output io.Writer, cfg config.LoggingConfig, version string) *Logger {
	sys := NewSystem(levelPriority(parseLevel(cfg.Level)))

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: sys.Leveler(),
	}

	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "ccsd"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
		sys:    sys,
	}
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// System returns the facility and priority settings shared by this logger.
func (l *Logger) System() *System {
	return l.sys
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	mqttLogger := logger.With("component", "mqtt")
//	mqttLogger.Info("connected") // Includes component=mqtt
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		sys:    l.sys,
	}
}

// Subsystem returns a logger whose records carry subsystem and its current
// facility name. A later SetFacility for the subsystem is picked up by
// records logged after it.
func (l *Logger) Subsystem(name string) *Logger {
	h := &facilityHandler{
		Handler:   l.Logger.Handler(),
		sys:       l.sys,
		subsystem: name,
	}
	return &Logger{
		Logger: slog.New(h),
		sys:    l.sys,
	}
}

// facilityHandler stamps subsystem and facility on each record.
type facilityHandler struct {
	slog.Handler
	sys       *System
	subsystem string
}

func (h *facilityHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("subsystem", h.subsystem),
		slog.String("facility", FacilityName(h.sys.Facility(h.subsystem))),
	)
	return h.Handler.Handle(ctx, r)
}

func (h *facilityHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &facilityHandler{Handler: h.Handler.WithAttrs(attrs), sys: h.sys, subsystem: h.subsystem}
}

func (h *facilityHandler) WithGroup(name string) slog.Handler {
	return &facilityHandler{Handler: h.Handler.WithGroup(name), sys: h.sys, subsystem: h.subsystem}
}

// Default creates a default logger for use before configuration is loaded.
//
// This logger outputs to stdout in JSON format at info level.
// It should only be used during early startup before config is available.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
