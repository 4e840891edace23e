package logger

import (
	"context"
	"os"
	"strings"
	"time"

	appCtx "github.com/baechuer/eventboard/internal/pkg/context"
	"github.com/rs/zerolog"
)

// Logger is the process-wide root logger. Init must run before first use.
var Logger zerolog.Logger

func Init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	Logger = zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// WithCtx returns the root logger enriched with the request id, if any.
// The pointer return keeps level methods chainable (zerolog level methods
// take a pointer receiver).
func WithCtx(ctx context.Context) *zerolog.Logger {
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		l := Logger.With().Str("request_id", rid).Logger()
		return &l
	}
	return &Logger
}
