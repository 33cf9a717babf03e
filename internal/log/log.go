package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, LevelInfo)
	level  = LevelInfo
)

func newLogger(w io.Writer, l Level) zerolog.Logger {
	return zerolog.New(w).
		Level(toZerolog(l)).
		With().
		Timestamp().
		Str("service", "odincal").
		Logger()
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// ParseLevel maps a config/flag string onto a Level; unknown values are INFO.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	logger = logger.Level(toZerolog(l))
}

// SetOutput redirects all log output, e.g. to a console writer for the CLI
// or to a buffer in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, level)
}

// Console switches to zerolog's human-readable writer on stderr.
func Console() {
	SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

func Debug(msg string, kv ...any) {
	current().Debug().Fields(pairs(kv)).Msg(msg)
}

func Info(msg string, kv ...any) {
	current().Info().Fields(pairs(kv)).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	current().Error().Err(err).Fields(pairs(kv)).Msg(msg)
}

func current() *zerolog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	return &l
}

// pairs drops non-string keys and a dangling odd value so zerolog never
// sees a malformed field list.
func pairs(kv []any) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		if _, ok := kv[i].(string); !ok {
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}
