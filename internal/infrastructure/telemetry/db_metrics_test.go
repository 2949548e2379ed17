package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func metricsByName(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumTotal(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewDBMetrics_Defaults(t *testing.T) {
	_, provider := newTestMeter(t)

	m, err := NewDBMetrics(provider.Meter("test"), DBMetricsConfig{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 200*time.Millisecond, m.config.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, m.config.PoolStatsInterval)
	assert.Equal(t, "sqlite", m.config.DBSystem)
	assert.NotNil(t, m.logger)
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()

	m, err := NewDBMetrics(provider.Meter("test"), DBMetricsConfig{
		Enabled:            true,
		SlowQueryThreshold: 100 * time.Millisecond,
		DBSystem:           "postgresql",
	}, zap.NewNop())
	require.NoError(t, err)

	m.RecordQuery(ctx, "select", "documents", 10*time.Millisecond, nil)
	m.RecordQuery(ctx, "INSERT", "documents", 250*time.Millisecond, nil)
	m.RecordQuery(ctx, "", "", 300*time.Millisecond, errors.New("deadlock"))
	m.RecordQuery(ctx, "SELECT", "documents", time.Millisecond, gorm.ErrRecordNotFound)

	got := metricsByName(t, reader)
	assert.Equal(t, int64(4), sumTotal(t, got["db_query_total"]))
	assert.Equal(t, int64(1), sumTotal(t, got["db_query_errors_total"]))
	assert.Equal(t, int64(2), sumTotal(t, got["db_slow_query_total"]))

	ops := map[string]bool{}
	for _, dp := range got["db_query_total"].Data.(metricdata.Sum[int64]).DataPoints {
		op, _ := dp.Attributes.Value(AttrDBOperation)
		ops[op.AsString()] = true
		system, _ := dp.Attributes.Value(AttrDBSystem)
		assert.Equal(t, "postgresql", system.AsString())
	}
	assert.Equal(t, map[string]bool{"SELECT": true, "INSERT": true, "UNKNOWN": true}, ops)

	tables := map[string]bool{}
	for _, dp := range got["db_slow_query_total"].Data.(metricdata.Sum[int64]).DataPoints {
		table, _ := dp.Attributes.Value(AttrDBTable)
		tables[table.AsString()] = true
	}
	assert.Equal(t, map[string]bool{"documents": true, "unknown": true}, tables)
}

func TestDBMetrics_ConcurrentRecordQuery(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewDBMetrics(provider.Meter("test"), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordQuery(context.Background(), "SELECT", "documents", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), sumTotal(t, metricsByName(t, reader)["db_query_total"]))
}

func TestDBMetrics_PoolStats(t *testing.T) {
	reader, provider := newTestMeter(t)
	db := setupTracedDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(3)

	m, err := NewDBMetrics(provider.Meter("test"), DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 10 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)

	t.Run("no pool set", func(t *testing.T) {
		m.StartPoolStatsCollection(context.Background())
		m.collectPoolStats(context.Background())
	})

	m.SetSQLDB(sqlDB)
	m.StartPoolStatsCollection(context.Background())

	assert.Eventually(t, func() bool {
		got := metricsByName(t, reader)
		g, ok := got["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
		if !ok || len(g.DataPoints) == 0 {
			return false
		}
		_, hasPool := got["db_pool_connections"]
		return g.DataPoints[0].Value == 3 && hasPool
	}, time.Second, 10*time.Millisecond)

	m.Stop()
	m.Stop()
}

func TestDBMetrics_StopOnContextCancel(t *testing.T) {
	_, provider := newTestMeter(t)
	db := setupTracedDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := NewDBMetrics(provider.Meter("test"), DBMetricsConfig{PoolStatsInterval: time.Hour}, zap.NewNop())
	require.NoError(t, err)
	m.SetSQLDB(sqlDB)

	ctx, cancel := context.WithCancel(context.Background())
	m.StartPoolStatsCollection(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after cancel")
	}
}

func TestDBMetricsPlugin(t *testing.T) {
	reader, provider := newTestMeter(t)
	db := setupTracedDB(t)

	m, err := NewDBMetrics(provider.Meter("test"), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)
	plugin := NewDBMetricsPlugin(m, nil)
	assert.Equal(t, "db_metrics", plugin.Name())
	require.NoError(t, db.Use(plugin))

	require.NoError(t, db.Create(&tracedRow{Name: "QT-000001"}).Error)
	var rows []tracedRow
	require.NoError(t, db.Find(&rows).Error)
	require.NoError(t, db.Model(&tracedRow{}).Where("name = ?", "QT-000001").Update("name", "QT-000002").Error)
	require.NoError(t, db.Exec("DELETE FROM traced_rows").Error)

	ops := map[string]int64{}
	for _, dp := range metricsByName(t, reader)["db_query_total"].Data.(metricdata.Sum[int64]).DataPoints {
		op, _ := dp.Attributes.Value(AttrDBOperation)
		ops[op.AsString()] += dp.Value
	}
	assert.Equal(t, int64(1), ops["INSERT"])
	assert.Equal(t, int64(1), ops["SELECT"])
	assert.Equal(t, int64(1), ops["UPDATE"])
	assert.Equal(t, int64(1), ops["DELETE"])
}

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM documents", "SELECT"},
		{"  select count(*) from documents", "SELECT"},
		{"WITH x AS (SELECT 1) SELECT * FROM x", "SELECT"},
		{"INSERT INTO documents VALUES (1)", "INSERT"},
		{"update document_sequences set last_value = 2", "UPDATE"},
		{"DELETE FROM document_items", "DELETE"},
		{"CREATE TABLE t (id int)", "OTHER"},
		{"", "OTHER"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectOperationType(tt.sql), tt.sql)
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	db := setupTracedDB(t)
	logger := zap.NewNop()

	t.Run("disabled config", func(t *testing.T) {
		m, err := RegisterDBMetrics(db, nil, DBMetricsConfig{Enabled: false}, logger)
		assert.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("nil meter provider", func(t *testing.T) {
		m, err := RegisterDBMetrics(db, nil, DefaultDBMetricsConfig(), logger)
		assert.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("disabled meter provider", func(t *testing.T) {
		mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, logger)
		require.NoError(t, err)
		m, err := RegisterDBMetrics(db, mp, DefaultDBMetricsConfig(), nil)
		assert.NoError(t, err)
		assert.Nil(t, m)
	})
}
