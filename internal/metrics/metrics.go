// Package metrics exposes a small instrumentation surface with a no-op default
// and a Prometheus-backed implementation.
package metrics

import (
	"sync"
	"time"
)

// Recorder is the metrics surface used by the answer pipeline.
type Recorder interface {
	IncStage(stage, outcome string)
	ObserveAnswerSeconds(path string, seconds float64)
	IncModelCall(model string, success bool)
}

type noopRecorder struct{}

func (noopRecorder) IncStage(string, string)              {}
func (noopRecorder) ObserveAnswerSeconds(string, float64) {}
func (noopRecorder) IncModelCall(string, bool)            {}

var (
	recMu    sync.RWMutex
	recorder Recorder = noopRecorder{}
)

func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	recorder = r
}

// TimeAnswer starts a timer; the returned func records the elapsed time under path.
func TimeAnswer(r Recorder) func(path string) {
	start := time.Now()
	return func(path string) {
		r.ObserveAnswerSeconds(path, time.Since(start).Seconds())
	}
}
