// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) selected through the configured level.
//
// # Run Awareness
//
// The WithRun helper attaches the run identifier and the HIT being reconciled
// to every entry, so that all logs of one invocation can be correlated with the
// archived run report.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json or console
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.WithRun(log, runID, "pilot")
//	l.Info("Reconciliation finished")
package logger
