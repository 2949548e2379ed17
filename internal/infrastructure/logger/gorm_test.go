package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func selectDocuments() (string, int64) {
	return "SELECT * FROM documents WHERE document_no = 'INV-0001'", 1
}

func TestNewGormLogger_Defaults(t *testing.T) {
	l, _ := newObservedGorm(gormlogger.Warn)
	assert.Equal(t, gormlogger.Warn, l.level)
	assert.Equal(t, defaultSlowThreshold, l.slowThreshold)
	assert.Equal(t, defaultMaxSQLLength, l.maxSQLLength)
	assert.False(t, l.logNotFound)

	l, _ = newObservedGorm(gormlogger.Info,
		WithSlowThreshold(time.Second),
		WithMaxSQLLength(10),
		WithRecordNotFound(true),
	)
	assert.Equal(t, time.Second, l.slowThreshold)
	assert.Equal(t, 10, l.maxSQLLength)
	assert.True(t, l.logNotFound)
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	l, _ := newObservedGorm(gormlogger.Info)
	changed, ok := l.LogMode(gormlogger.Error).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, changed.level)
	assert.Equal(t, gormlogger.Info, l.level)
}

func TestGormLogger_Messages(t *testing.T) {
	tests := []struct {
		name  string
		level gormlogger.LogLevel
		log   func(l *GormLogger)
		want  zapcore.Level
		none  bool
	}{
		{
			name:  "info at info",
			level: gormlogger.Info,
			log:   func(l *GormLogger) { l.Info(context.Background(), "migrated %d tables", 2) },
			want:  zapcore.InfoLevel,
		},
		{
			name:  "info suppressed at warn",
			level: gormlogger.Warn,
			log:   func(l *GormLogger) { l.Info(context.Background(), "x") },
			none:  true,
		},
		{
			name:  "warn at warn",
			level: gormlogger.Warn,
			log:   func(l *GormLogger) { l.Warn(context.Background(), "pool %s", "busy") },
			want:  zapcore.WarnLevel,
		},
		{
			name:  "error at error",
			level: gormlogger.Error,
			log:   func(l *GormLogger) { l.Error(context.Background(), "boom") },
			want:  zapcore.ErrorLevel,
		},
		{
			name:  "error suppressed when silent",
			level: gormlogger.Silent,
			log:   func(l *GormLogger) { l.Error(context.Background(), "boom") },
			none:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, recorded := newObservedGorm(tt.level)
			tt.log(l)
			if tt.none {
				assert.Zero(t, recorded.Len())
				return
			}
			require.Equal(t, 1, recorded.Len())
			assert.Equal(t, tt.want, recorded.All()[0].Level)
		})
	}
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormLoggerOption
		elapsed time.Duration
		err     error
		want    zapcore.Level
		message string
		none    bool
	}{
		{
			name:    "query at info is debug",
			level:   gormlogger.Info,
			want:    zapcore.DebugLevel,
			message: "SQL query",
		},
		{
			name:    "slow query warns",
			level:   gormlogger.Warn,
			opts:    []GormLoggerOption{WithSlowThreshold(time.Millisecond)},
			elapsed: time.Second,
			want:    zapcore.WarnLevel,
			message: "Slow SQL >= 1ms",
		},
		{
			name:    "slow threshold zero disables",
			level:   gormlogger.Warn,
			opts:    []GormLoggerOption{WithSlowThreshold(0)},
			elapsed: time.Second,
			none:    true,
		},
		{
			name:    "error",
			level:   gormlogger.Error,
			err:     errors.New("duplicate key value violates unique constraint"),
			want:    zapcore.ErrorLevel,
			message: "SQL error",
		},
		{
			name:  "record not found skipped",
			level: gormlogger.Info,
			err:   gormlogger.ErrRecordNotFound,
			none:  true,
		},
		{
			name:    "record not found logged on request",
			level:   gormlogger.Info,
			opts:    []GormLoggerOption{WithRecordNotFound(true)},
			err:     gormlogger.ErrRecordNotFound,
			want:    zapcore.ErrorLevel,
			message: "SQL error",
		},
		{
			name:  "silent",
			level: gormlogger.Silent,
			err:   errors.New("boom"),
			none:  true,
		},
		{
			name:  "plain query at warn",
			level: gormlogger.Warn,
			none:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, recorded := newObservedGorm(tt.level, tt.opts...)
			l.Trace(context.Background(), time.Now().Add(-tt.elapsed), selectDocuments, tt.err)

			if tt.none {
				assert.Zero(t, recorded.Len())
				return
			}
			require.Equal(t, 1, recorded.Len())
			entry := recorded.All()[0]
			assert.Equal(t, tt.want, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, int64(1), entry.ContextMap()["rows"])
		})
	}
}

func TestGormLogger_TraceContextFields(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Info)

	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")
	ctx = WithDocumentNumber(ctx, "INV-0001")
	l.Trace(ctx, time.Now(), selectDocuments, nil)

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "INV-0001", fields["document_number"])
	assert.NotContains(t, fields, "trace_id")
}

func TestGormLogger_TruncatesSQL(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Info, WithMaxSQLLength(16))
	long := "INSERT INTO document_items VALUES " + strings.Repeat("(?, ?, ?),", 50)
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return long, 50 }, nil)

	sql := recorded.All()[0].ContextMap()["sql"].(string)
	assert.True(t, strings.HasPrefix(sql, "INSERT INTO docu"))
	assert.Contains(t, sql, "bytes)")
	assert.Less(t, len(sql), len(long))

	l, recorded = newObservedGorm(gormlogger.Info, WithMaxSQLLength(0))
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return long, 50 }, nil)
	assert.Equal(t, long, recorded.All()[0].ContextMap()["sql"])
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"INFO", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"verbose", gormlogger.Warn},
		{"", gormlogger.Warn},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, MapGormLogLevel(tt.level))
		})
	}
}
