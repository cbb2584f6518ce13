package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[string]int
	documents      map[string]int
	assetBytes     int64
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[string]int{},
		documents:      map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome string) { t.buildOutcomes[outcome]++ }
func (t *testRecorder) IncDocumentsBuilt(kind string)  { t.documents[kind]++ }
func (t *testRecorder) IncAssetsCopied(bytes int64)    { t.assetBytes += bytes }

func TestRecorderImplementations(t *testing.T) {
	for _, r := range []Recorder{NoopRecorder{}, newTestRecorder(), NewPrometheusRecorder(nil)} {
		r.ObserveStageDuration("build", time.Millisecond)
		r.IncStageResult("build", ResultFatal)
		r.IncBuildOutcome("failed")
	}
}
