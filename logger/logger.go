// Package logger provides the configurable logger shared by every package
// in this module.
//
// The default logger uses github.com/rs/zerolog with a console writer on
// stdout. Test binaries run silent unless the debug build tag is set, so
// property runners do not interleave warnings with their reports.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/snarkcore/relations/debug"
)

var root zerolog.Logger

func init() {
	w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	root = zerolog.New(w).With().Timestamp().Logger()

	if !debug.Debug && strings.HasSuffix(os.Args[0], ".test") {
		root = zerolog.Nop()
	}
}

// Logger returns the global logger
func Logger() zerolog.Logger {
	return root
}

// ForField returns a sublogger tagged with the scalar field size, the
// convention constraint system builders log under
func ForField(bits int) zerolog.Logger {
	return root.With().Int("fieldBits", bits).Logger()
}

// SetOutput changes the output of the global logger
func SetOutput(w io.Writer) {
	root = root.Output(w)
}

// Set allows a user to override the global logger
func Set(l zerolog.Logger) {
	root = l
}

// Disable disables logging
func Disable() {
	root = zerolog.Nop()
}
