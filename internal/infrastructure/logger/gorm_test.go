package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFunc(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, WithSlowThreshold(50*time.Millisecond))
	ctx := WithIdentity(context.Background(), "tenant-1", "user-1")

	gl.Trace(ctx, time.Now(), sqlFunc("SELECT 1", 1), nil)
	gl.Trace(ctx, time.Now().Add(-time.Second), sqlFunc("SELECT * FROM stock_batches", 3), nil)
	gl.Trace(ctx, time.Now(), sqlFunc("UPDATE sales", 0), errors.New("deadlock detected"))
	gl.Trace(ctx, time.Now(), sqlFunc("SELECT * FROM sales", 0), gormlogger.ErrRecordNotFound)

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "SQL", logs.All()[0].Message)

	slow := logs.FilterMessage("Slow SQL").All()
	require.Len(t, slow, 1)
	assert.Equal(t, "tenant-1", slow[0].ContextMap()["tenant_id"])
	assert.Equal(t, int64(3), slow[0].ContextMap()["rows"])

	assert.Equal(t, 1, logs.FilterMessage("SQL error").Len())
}

func TestGormLogger_LevelsAndMode(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)

	gl.Info(context.Background(), "hidden %d", 1)
	gl.Warn(context.Background(), "shown %d", 2)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown 2", logs.All()[0].Message)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Error(context.Background(), "muted")
	silent.Trace(context.Background(), time.Now(), sqlFunc("SELECT 1", 1), errors.New("x"))
	assert.Equal(t, 1, logs.Len())
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info)
	_, params := gl.ParamsFilter(context.Background(), "SELECT ?", 42)
	assert.Nil(t, params)

	full := NewGormLogger(zap.NewNop(), gormlogger.Info, WithFullSQL(true))
	_, params = full.ParamsFilter(context.Background(), "SELECT ?", 42)
	assert.Equal(t, []any{42}, params)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
