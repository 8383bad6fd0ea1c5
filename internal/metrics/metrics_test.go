package metrics

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
)

func TestObserve(t *testing.T) {
	r := New()

	r.Observe(context.Background(), reconciler.Outcome{State: reconciler.StateApplied, Duration: 10 * time.Millisecond})
	r.Observe(context.Background(), reconciler.Outcome{State: reconciler.StateApplied})
	r.Observe(context.Background(), reconciler.Outcome{State: reconciler.StateRejected, Reason: errors.ReasonMissingIdentifier})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RecordsTotal.WithLabelValues("applied", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RecordsTotal.WithLabelValues("rejected", "MissingIdentifier")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.RecordDuration))
}

func TestObserveRun(t *testing.T) {
	r := New()

	report := reconciler.NewReport()
	report.Synced, report.Skipped, report.Failed = 3, 2, 1
	report.Finalize()

	r.ObserveRun(report, nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.LastRunRecords.WithLabelValues("synced")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.LastRunRecords.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LastRunRecords.WithLabelValues("failed")))
	assert.Equal(t, float64(report.EndTime.Unix()), testutil.ToFloat64(r.LastSuccess))
	assert.Zero(t, testutil.ToFloat64(r.FetchFailures))
}

func TestObserveRunFetchFailure(t *testing.T) {
	r := New()

	report := reconciler.NewReport()
	report.Finalize()
	r.ObserveRun(report, errors.NewFetchError("http://source", stderrors.New("refused")))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.FetchFailures))
	assert.Zero(t, testutil.ToFloat64(r.LastSuccess))
}

func TestRegistryGathers(t *testing.T) {
	r := New()
	r.Observe(context.Background(), reconciler.Outcome{State: reconciler.StateFailed})

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["kolado_records_total"])
	assert.True(t, names["kolado_record_duration_seconds"])
}

func TestPush(t *testing.T) {
	logging.DisableLoggingForTest(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPut, req.Method)
		assert.Equal(t, "/metrics/job/kolado_sync", req.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New()
	r.Observe(context.Background(), reconciler.Outcome{State: reconciler.StateApplied})

	require.NoError(t, r.Push(context.Background(), srv.URL, ""))
	assert.Equal(t, int32(1), calls.Load())
}

func TestPushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := New().Push(context.Background(), srv.URL, "job")
	assert.Error(t, err)
}

func TestPushDisabled(t *testing.T) {
	assert.NoError(t, New().Push(context.Background(), "", ""))
}
