package loadbench

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type LogLevelType uint8

const (
	LevelVerbose LogLevelType = 50
	LevelDebug   LogLevelType = 40
	LevelInfo    LogLevelType = 30
	LevelWarn    LogLevelType = 20
	LevelError   LogLevelType = 10
	LevelQuiet   LogLevelType = 0
)

var (
	nameToLevels = map[string]LogLevelType{
		"verbose": LevelVerbose,
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"quiet":   LevelQuiet,
	}
	levelToZerolog = map[LogLevelType]zerolog.Level{
		LevelVerbose: zerolog.TraceLevel,
		LevelDebug:   zerolog.DebugLevel,
		LevelInfo:    zerolog.InfoLevel,
		LevelWarn:    zerolog.WarnLevel,
		LevelError:   zerolog.ErrorLevel,
		LevelQuiet:   zerolog.Disabled,
	}
)

var (
	logLevel LogLevelType = LevelWarn
	logger                = newLogger(os.Stderr, logLevel)
)

func newLogger(w io.Writer, level LogLevelType) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}).
		Level(levelToZerolog[level]).
		With().
		Timestamp().
		Logger()
}

// SetLogLevel changes the level by one of the names "verbose", "debug",
// "info", "warn", "error" and "quiet".
func SetLogLevel(name string) error {
	level, ok := nameToLevels[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown log level %q", name)
	}
	logLevel = level
	logger = logger.Level(levelToZerolog[level])
	return nil
}

// SetLogOutput redirects log lines to w.
func SetLogOutput(w io.Writer) {
	logger = newLogger(w, logLevel)
}

// Logger returns the process logger, for callers that attach fields.
func Logger() *zerolog.Logger {
	return &logger
}

func Logf(level LogLevelType, format string, args ...interface{}) {
	if level > logLevel {
		return
	}
	logger.WithLevel(levelToZerolog[level]).Msgf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logf(LevelError, format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logf(LevelWarn, format, args...)
}

func Infof(format string, args ...interface{}) {
	Logf(LevelInfo, format, args...)
}

func Debugf(format string, args ...interface{}) {
	Logf(LevelDebug, format, args...)
}

func Verbosef(format string, args ...interface{}) {
	Logf(LevelVerbose, format, args...)
}

func Fprintf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
	fmt.Fprintln(w, "")
}

func Printf(format string, args ...interface{}) {
	Fprintf(os.Stdout, format, args...)
}

func EPrintf(format string, args ...interface{}) {
	Fprintf(os.Stderr, format, args...)
}
