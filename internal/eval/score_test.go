package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	results := []Result{
		{Index: 1, Expected: "dispatch_agent", Actual: "dispatch_agent", Correct: true},
		{Index: 2, Expected: "dispatch_agent", Actual: "health_agent"},
		{Index: 3, Expected: "report_agent", Error: "timeout"},
		{Index: 4, Expected: "report_agent", Actual: "report_agent", Correct: true},
	}

	s := Summarize(results)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Correct)
	assert.Equal(t, 2, s.Wrong)
	assert.Equal(t, 1, s.Errors)
	assert.InDelta(t, 50.0, s.Accuracy, 1e-9)

	assert.Len(t, s.Misroutes, 1)
	assert.Equal(t, 2, s.Misroutes[0].Index)

	assert.Equal(t, AgentStats{Total: 2, Correct: 1, Accuracy: 50}, s.PerAgent["dispatch_agent"])
	assert.Equal(t, AgentStats{Total: 2, Correct: 1, Accuracy: 50}, s.PerAgent["report_agent"])

	assert.Equal(t, 1, s.Confusion["dispatch_agent"]["health_agent"])
	assert.Equal(t, 1, s.Confusion["report_agent"]["report_agent"])
	_, hasError := s.Confusion["report_agent"][""]
	assert.False(t, hasError)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Accuracy)
	assert.Empty(t, s.Misroutes)
}
