package slog

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	SOURCE_FIELD_NAME = "src"

	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	TraceLevel = zerolog.TraceLevel
)

func init() {
	//configure zerolog fields

	zerolog.DurationFieldInteger = false
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.MessageFieldName = "msg"
	zerolog.LevelFieldName = "lvl"
	zerolog.TimestampFieldName = "tm"
}

// NewLogger returns a logger writing human readable lines to w, level is a zerolog
// level name; an empty level disables logging.
func NewLogger(w io.Writer, level string, colorize bool) (zerolog.Logger, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.Nop(), nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	writer := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !colorize,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}

func ChildLoggerForSource(logger zerolog.Logger, src string) zerolog.Logger {
	return logger.With().Str(SOURCE_FIELD_NAME, src).Logger()
}
