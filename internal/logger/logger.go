// Package logger builds the console logger used by the CLI.
package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w at the given level. Unknown
// levels fall back to info.
func New(w io.Writer, level string, noColor bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05", NoColor: noColor}
	output.FormatLevel = func(i any) string {
		l, ok := i.(string)
		if !ok {
			return "| ??? |"
		}

		if noColor {
			return fmt.Sprintf("| %-5s |", l)
		}

		return fmt.Sprintf("| %s |", colorize(fmt.Sprintf("%-5s", l), levelColor(l)))
	}

	return zerolog.New(output).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel converts a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func levelColor(level string) int {
	switch level {
	case "debug", "trace":
		return 36 // cyan
	case "info":
		return 34 // blue
	case "warn":
		return 33 // yellow
	case "error":
		return 31 // red
	case "fatal":
		return 35 // magenta
	default:
		return 37 // white
	}
}

func colorize(s string, color int) string {
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, s)
}
