// Package reporter implements core.Reporter with structured logging,
// so raw AMI traffic and engine diagnostics land in the same place a
// deployment already watches for everything else.
package reporter

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"calltranslator/internal/config"
	"calltranslator/internal/core"
)

// Logger wraps a zerolog.Logger as a core.Reporter. TraceAMI is logged
// at debug level since it fires on every single raw event; TraceMsg
// carries the engine's own diagnostics (expected-missing lookups,
// connection milestones) at info level.
type Logger struct {
	log zerolog.Logger
}

// New builds a Logger from the reporter section of the configuration.
func New(cfg config.ReporterConfig) *Logger {
	var w io.Writer = os.Stdout
	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	log := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
	return &Logger{log: log}
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// TraceAMI logs one raw AMI event at debug level.
func (l *Logger) TraceAMI(event core.RawEvent) {
	evt := l.log.Debug().Str("event", event["Event"])
	for k, v := range event {
		if k == "Event" {
			continue
		}
		evt = evt.Str(k, v)
	}
	evt.Msg("ami event")
}

// TraceMsg logs a free-form diagnostic message at info level.
func (l *Logger) TraceMsg(msg string) {
	l.log.Info().Msg(msg)
}

// Zerolog exposes the underlying logger so other sinks (the console
// subscriber, in particular) can share the same output and formatting
// instead of building a second one.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.log
}
