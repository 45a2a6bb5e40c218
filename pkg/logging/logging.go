// Package logging owns the process-wide zerolog logger of pg-keybench.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ConsoleTimeFormat is the timestamp layout of human-readable output.
const ConsoleTimeFormat = "15:04:05.000"

var (
	logger = New(os.Stderr, false)
	pretty bool
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// New returns a timestamped logger writing JSON lines to w, or console
// output when human is set.
func New(w io.Writer, human bool) *zerolog.Logger {
	if human {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: ConsoleTimeFormat}
	}
	l := zerolog.New(w).With().Timestamp().Logger()
	return &l
}

// Init replaces the global logger with one on stderr. debug lowers the
// global level to Debug.
func Init(debug, human bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	pretty = human
	logger = New(os.Stderr, human)
}

// IsPrettyMode reports whether events carry human-readable companions
// (duration_h, eta_h) next to raw values.
func IsPrettyMode() bool {
	return pretty
}

// SetPrettyMode toggles the companions without replacing the logger.
func SetPrettyMode(on bool) {
	pretty = on
}

// L returns the global logger.
func L() *zerolog.Logger {
	return logger
}

// SetLogger replaces the global logger, typically with one writing to a
// test buffer.
func SetLogger(l zerolog.Logger) {
	logger = &l
}
