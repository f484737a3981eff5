package logging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// GormLogger routes GORM logs through zerolog.
type GormLogger struct {
	LogLevel logger.LogLevel
}

func NewGormLogger(logQueries bool) *GormLogger {
	level := logger.Warn
	if logQueries {
		level = logger.Info
	}
	return &GormLogger{LogLevel: level}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &GormLogger{LogLevel: level}
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		ctxLogger(ctx).Info().Interface("data", data).Msg(msg)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		ctxLogger(ctx).Warn().Interface("data", data).Msg(msg)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		ctxLogger(ctx).Error().Interface("data", data).Msg(msg)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	operation := "Query"
	if i := strings.IndexByte(sql, ' '); i > 0 {
		operation = sql[:i]
	}

	zl := ctxLogger(ctx)
	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound) && l.LogLevel >= logger.Error:
		zl.Error().Err(err).Str("sql", sql).Dur("latency", elapsed).Int64("rows", rows).Msg("SQL " + operation + " error")
	case elapsed > slowQueryThreshold && l.LogLevel >= logger.Warn:
		zl.Warn().Str("sql", sql).Dur("latency", elapsed).Int64("rows", rows).Msg("SQL " + operation + " slow")
	case l.LogLevel >= logger.Info:
		zl.Debug().Str("sql", sql).Dur("latency", elapsed).Int64("rows", rows).Msg("SQL " + operation)
	}
}

func ctxLogger(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &log.Logger
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}
