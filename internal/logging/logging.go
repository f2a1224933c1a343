// Package logging provides structured logging configuration.
package logging

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration options.
type Config struct {
	Level  string // debug|info|warn|error
	Format string // json|console
}

// New creates a new configured zap logger. Logs go to stderr so command
// output on stdout stays machine readable.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if cfg.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			return nil, err
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "console"
	}

	var zcfg zap.Config
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.LevelKey = "level"
	zcfg.EncoderConfig.MessageKey = "msg"
	zcfg.EncoderConfig.CallerKey = "caller"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", "mealie")), nil
}

// Sync flushes any buffered log entries.
func Sync(logger *zap.Logger) {
	_ = logger.Sync()
}

// Component returns a zap field for the component name.
func Component(name string) zap.Field { return zap.String("component", name) }

// Method returns a zap field for an HTTP method.
func Method(method string) zap.Field { return zap.String("method", method) }

// URL returns a zap field for a request URL. Callers must redact secrets.
func URL(u string) zap.Field { return zap.String("url", u) }

// Status returns a zap field for an HTTP status code.
func Status(code int) zap.Field { return zap.Int("status", code) }

// RequestID returns a zap field for the X-Request-ID of a call.
func RequestID(id string) zap.Field { return zap.String("request_id", id) }

// Duration returns a zap field for elapsed time.
func Duration(d time.Duration) zap.Field { return zap.Duration("duration", d) }

// Body returns a zap field for a (truncated) response body.
func Body(body string) zap.Field { return zap.String("body", body) }

// BaseURL returns a zap field for a server base URL.
func BaseURL(u string) zap.Field { return zap.String("base_url", u) }

// Store returns a zap field for a session store kind.
func Store(kind string) zap.Field { return zap.String("store", kind) }

// Slug returns a zap field for a recipe slug.
func Slug(slug string) zap.Field { return zap.String("slug", slug) }
