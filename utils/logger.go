package utils

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const logFilePermission = 0644

// LoggerConfig selects where diagnostic output goes
type LoggerConfig struct {
	Level  string    // trace, debug, info, warn, error
	Path   string    // append-only log file; empty means Writer or stdout
	Writer io.Writer // used when Path is empty
	Pretty bool      // human readable console output (development)
}

// NewLogger builds the structured logger shared by the service.
// The returned close func releases the log file, if one was opened.
func NewLogger(cfg LoggerConfig) (zerolog.Logger, func() error, error) {
	var w io.Writer = os.Stdout
	if cfg.Writer != nil {
		w = cfg.Writer
	}
	closeFn := func() error { return nil }

	if cfg.Path != "" {
		file, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePermission)
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		w = zerolog.SyncWriter(file)
		closeFn = file.Close
	} else if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closeFn, nil
}
