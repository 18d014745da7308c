package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheus(reg).(*promRecorder)

	r.IncStage("predicate", "match")
	r.IncStage("predicate", "match")
	r.IncModelCall("encoder", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.stages.WithLabelValues("predicate", "match")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelCalls.WithLabelValues("encoder", "false")))
}

func TestEnablePrometheusServesMetrics(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetRecorder(prev) })

	h := EnablePrometheus()
	done := TimeAnswer(Default())
	done("graph")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "atai_answer_seconds")
}
