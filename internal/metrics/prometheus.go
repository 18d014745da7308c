package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	stages     *prom.CounterVec
	answers    *prom.HistogramVec
	modelCalls *prom.CounterVec
}

func (p *promRecorder) IncStage(stage, outcome string) {
	p.stages.WithLabelValues(stage, outcome).Inc()
}

func (p *promRecorder) ObserveAnswerSeconds(path string, seconds float64) {
	p.answers.WithLabelValues(path).Observe(seconds)
}

func (p *promRecorder) IncModelCall(model string, success bool) {
	p.modelCalls.WithLabelValues(model, strconv.FormatBool(success)).Inc()
}

// NewPrometheus registers the pipeline collectors on reg.
func NewPrometheus(reg prom.Registerer) Recorder {
	p := &promRecorder{
		stages: prom.NewCounterVec(prom.CounterOpts{
			Name: "atai_pipeline_stage_total",
			Help: "Pipeline stage outcomes",
		}, []string{"stage", "outcome"}),
		answers: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "atai_answer_seconds",
			Help:    "Time to compose an answer by resolution path",
			Buckets: prom.DefBuckets,
		}, []string{"path"}),
		modelCalls: prom.NewCounterVec(prom.CounterOpts{
			Name: "atai_model_calls_total",
			Help: "Calls to tagger and encoder backends",
		}, []string{"model", "success"}),
	}
	reg.MustRegister(p.stages, p.answers, p.modelCalls)
	return p
}

// EnablePrometheus installs a Prometheus recorder as the default and returns
// the scrape handler.
func EnablePrometheus() http.Handler {
	registry := prom.NewRegistry()
	SetRecorder(NewPrometheus(registry))
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
