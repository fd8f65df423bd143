// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homematch-workers/internal/common/logger"
)

func TestObservability_ExportsJobMetrics(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := New("homematch-test", reg, logger.NewTestLogger(t))
	defer obs.Shutdown()

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "apply-housing-ranking", "completed")
	obs.RecordJobDuration(ctx, "apply-housing-ranking", 12*time.Millisecond, "completed")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["jobs_processed_total"], "exported families: %v", names)
	assert.True(t, names["jobs_duration_milliseconds"], "exported families: %v", names)
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	obs.RecordJobProcessed(context.Background(), "x", "failed")
	obs.RecordJobDuration(context.Background(), "x", time.Second, "failed")
	obs.Shutdown()
}
