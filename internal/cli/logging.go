package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a slog logger backed by a charm handler writing to w.
// --verbose forces debug level; json format switches the handler to JSON
// lines so stderr stays machine readable.
func newLogger(w io.Writer, level string, verbose bool, format string) *slog.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "cooksync",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	l.SetLevel(lvl)

	if format == "json" {
		l.SetFormatter(log.JSONFormatter)
	}
	return slog.New(l)
}
