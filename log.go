package insider

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs a console logger at the given level. Unknown or
// empty levels fall back to info.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
