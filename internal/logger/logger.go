package logger

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// Setup initializes Logrus via a rotating file and returns the rotator so the
// HTTP access log can share it.
func Setup(file, level string) io.Writer {
	// 1) Lumberjack for file rotation
	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 7,  // keep up to 7 old files
		MaxAge:     7,  // days
		Compress:   true,
	}

	// 2) Configure Logrus to write to that file
	logrus.SetOutput(rotator)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.SetLevel(ParseLevel(level))
	return rotator
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// GormLogger routes GORM's log through the standard Logrus logger. Failed
// queries are logged at error level, slow ones at warn, and SQL statements
// show up at debug level only.
func GormLogger() gormlogger.Interface {
	lvl := gormlogger.Warn
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		lvl = gormlogger.Info
	}
	return &gormLogrus{
		log:           logrus.StandardLogger(),
		level:         lvl,
		slowThreshold: 200 * time.Millisecond,
	}
}

type gormLogrus struct {
	log           *logrus.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func (g *gormLogrus) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLogrus) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.WithContext(ctx).Infof(msg, data...)
	}
}

func (g *gormLogrus) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.WithContext(ctx).Warnf(msg, data...)
	}
}

func (g *gormLogrus) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.WithContext(ctx).Errorf(msg, data...)
	}
}

func (g *gormLogrus) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		g.entry(ctx, elapsed, rows).WithError(err).Error(sql)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.entry(ctx, elapsed, rows).Warnf("slow query: %s", sql)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.entry(ctx, elapsed, rows).Debug(sql)
	}
}

func (g *gormLogrus) entry(ctx context.Context, elapsed time.Duration, rows int64) *logrus.Entry {
	return g.log.WithContext(ctx).WithFields(logrus.Fields{
		"elapsed_ms": float64(elapsed.Microseconds()) / 1000,
		"rows":       rows,
		"source":     utils.FileWithLineNum(),
	})
}
