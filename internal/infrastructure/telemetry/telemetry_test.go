package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func findMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	tp, err := NewTracerProvider(ctx, Config{}, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{}, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, LogsConfig{}, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.Core("ledger", zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(ProfilerConfig{}, logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())

	_, err = NewProfiler(ProfilerConfig{Enabled: true}, logger)
	assert.Error(t, err)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestStartSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), "sale.process", WithAttribute(SpanAttrTenantID, "t-1"))
	SetAttribute(span, SpanAttrOutcome, "rejected")
	RecordError(span, errors.New("insufficient stock"))
	span.End()

	_, ok := StartSpan(context.Background(), "transfer.ship")
	SetOK(ok)
	ok.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "sale.process", spans[0].Name())
	assert.Equal(t, "Error", spans[0].Status().Code.String())
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "Ok", spans[1].Status().Code.String())
}

type countingProcessor struct {
	records int
}

func (p *countingProcessor) OnEmit(context.Context, *sdklog.Record) error {
	p.records++
	return nil
}
func (p *countingProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }
func (p *countingProcessor) Shutdown(context.Context) error                         { return nil }
func (p *countingProcessor) ForceFlush(context.Context) error                       { return nil }

func TestLoggerProvider_Core(t *testing.T) {
	proc := &countingProcessor{}
	lp := NewLoggerProviderWithProcessor(proc)
	require.True(t, lp.IsEnabled())

	logger := zap.New(lp.Core("inventory-ledger", zapcore.WarnLevel)).With(zap.String("tenant_id", "t-1"))
	logger.Info("below the bridge level")
	logger.Warn("stock alert created")
	logger.Error("scan failed")

	assert.Equal(t, 2, proc.records)
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestInstrumentDB(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	type probe struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&probe{}))

	m, err := InstrumentDB(db, DBConfig{TraceEnabled: true, SlowQueryThreshold: time.Nanosecond}, mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&probe{Name: "a"}).Error)
	var got []probe
	require.NoError(t, db.WithContext(ctx).Find(&got).Error)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.True(t, findMetric(rm, "db_query_total"))
	assert.True(t, findMetric(rm, "db_query_duration_seconds"))
	assert.True(t, findMetric(rm, "db_slow_query_total"))

	m.StartPoolStatsCollection(ctx)
	m.Stop()
	m.Stop()

	none, err := InstrumentDB(db, DBConfig{}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "SELECT", operationOf("  select * from sales"))
	assert.Equal(t, "UPDATE", operationOf("UPDATE stock_batches SET quantity = quantity - 1"))
	assert.Equal(t, "OTHER", operationOf("WITH x AS (SELECT 1) SELECT * FROM x"))
}

func TestSanitizeLabels(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	pairs := sanitizeLabels(map[string]string{
		ProfilingLabelRoute:     "/api/v1/sales",
		"user_id":               "u-1",
		"empty":                 "",
		ProfilingLabelOperation: string(long),
	})
	require.Len(t, pairs, 4)
	assert.Equal(t, ProfilingLabelOperation, pairs[0])
	assert.Len(t, pairs[1], maxLabelValueLength)
	assert.Equal(t, ProfilingLabelRoute, pairs[2])

	ran := false
	WithProfilingLabels(context.Background(), nil, func(context.Context) { ran = true })
	assert.True(t, ran)
}
