package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarcare/inverter-service/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/device", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/device", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/device", "POST", "CONFLICT")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/device|GET|200"])
	assert.Equal(t, int64(20), snap.AvgLatencyMillis["/api/device|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/device|POST|CONFLICT"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, time.Millisecond)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestNewLoggerFallsBackOnBadLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "loud", Encoding: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
