package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/oteladapters"
	"github.com/AntonStoeckl/lending-ledger-go/lending"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
	"github.com/AntonStoeckl/lending-ledger-go/testutil/ledgerfake"
)

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// setup
	reader, provider := setupMeter(t)
	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	// act
	collector.RecordDuration("ledger_tx_duration_seconds", 150*time.Millisecond, map[string]string{"status": "committed"})

	// assert
	m := findMetric(t, collect(t, reader), "ledger_tx_duration_seconds")
	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)
	assert.Equal(t, "s", m.Unit)

	expected := attribute.NewSet(attribute.String("status", "committed"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expected))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// setup
	reader, provider := setupMeter(t)
	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))
	labels := map[string]string{"action": "commit", "error_type": "conflict"}

	// act
	collector.IncrementCounter("ledger_conflicts_total", labels)
	collector.IncrementCounterContext(context.Background(), "ledger_conflicts_total", labels)

	// assert
	sum, ok := findMetric(t, collect(t, reader), "ledger_conflicts_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	assert.True(t, sum.IsMonotonic)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// setup
	reader, provider := setupMeter(t)
	collector := oteladapters.NewMetricsCollector(provider.Meter("test"))

	// act
	collector.RecordValue("ledger_outstanding_fines", 3, nil)
	collector.RecordValue("ledger_outstanding_fines", 1, nil)

	// assert
	gauge, ok := findMetric(t, collect(t, reader), "ledger_outstanding_fines").Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 1.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_WiredIntoEngine(t *testing.T) {
	// setup
	reader, provider := setupMeter(t)
	collector := oteladapters.NewMetricsCollector(provider.Meter("lending"))

	store := ledgerfake.NewStore()
	store.AddBook(ledger.Book{ISBN: "978-0262510875", Title: "SICP", TotalCopies: 1, AvailableCopies: 1})
	memberID := store.AddMember(ledger.Member{Email: "alyssa@example.org", Status: ledger.MemberActive, BorrowingLimit: 5})

	engine, err := lending.NewEngine(store, lending.WithMetrics(collector))
	require.NoError(t, err)

	// act
	_, err = engine.Borrow(context.Background(), "978-0262510875", memberID, 0)
	require.NoError(t, err)
	_, err = engine.Borrow(context.Background(), "978-0262510875", memberID, 0)
	require.ErrorIs(t, err, ledger.ErrBookNotAvailable)

	// assert
	sum, ok := findMetric(t, collect(t, reader), shell.CommandHandlerCallsMetric).Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byStatus := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value(attribute.Key(shell.LogAttrStatus))
		byStatus[status.AsString()] += dp.Value
	}

	assert.Equal(t, int64(1), byStatus[shell.StatusSuccess])
	assert.Equal(t, int64(1), byStatus[shell.StatusRejected])
}
