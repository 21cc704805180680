// Package logging provides structured logging for ccsd.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//   - Syslog-style facilities per subsystem and a global priority threshold
//     (see System), adjustable at runtime from cluster.conf
//
// # Configuration
//
// Logging is configured via the LoggingConfig in ccsd.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	ccs := logger.Subsystem(logging.DefaultSubsystem)
//	logger.System().SetPriority(logging.PriorityDebug)
//	ccs.Info("starting service", "node", "node-a")
//	logger.Error("failed to connect", "error", err)
//
// # Security
//
// Never log secrets, tokens, passwords, or API keys.
// Use field redaction for sensitive data:
//
//	logger.Info("API key used", "key_prefix", key[:8]+"...")
//
package logging
