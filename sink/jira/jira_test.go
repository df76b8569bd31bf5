package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airstation/internal/eval"
	"github.com/airstation/sink"
)

func reportWithMisroutes(n int) *eval.Report {
	r := &eval.Report{
		RunID:   "run-1",
		Variant: "handoff",
		Summary: eval.Summary{Total: 20, Correct: 20 - n, Accuracy: float64(20-n) * 5},
	}
	for i := 0; i < n; i++ {
		r.Summary.Misroutes = append(r.Summary.Misroutes, eval.Result{
			Index: i + 1, Question: "提供一些优化建议", Expected: "report_agent", Actual: "energy_analysis_agent",
		})
	}
	return r
}

func newTestSink(t *testing.T, handler http.HandlerFunc) *Sink {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := NewSink(sink.SinkMeta{Name: "tickets"}, &Options{
		URL:      server.URL,
		Username: "user",
		Password: "pass",
		Project:  "OPS",
		Labels:   []string{"routing"},
	})
	require.NoError(t, err)
	return s
}

func TestBuildIssue(t *testing.T) {
	s := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {})

	assert.Nil(t, s.BuildIssue(reportWithMisroutes(0)))

	issue := s.BuildIssue(reportWithMisroutes(2))
	require.NotNil(t, issue)
	assert.Equal(t, "OPS", issue.Fields.Project.Key)
	assert.Equal(t, "Task", issue.Fields.Type.Name)
	assert.Equal(t, "[handoff] 2 个问题路由错误", issue.Fields.Summary)
	assert.Contains(t, issue.Fields.Description, "- 问题2 \"提供一些优化建议\": 预期 report_agent, 实际 energy_analysis_agent")
	assert.Equal(t, []string{"routing"}, issue.Fields.Labels)
}

func TestSink_Publish(t *testing.T) {
	var got map[string]any
	s := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/issue", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "pass", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"10000","key":"OPS-1","self":"http://example/rest/api/2/issue/10000"}`))
	})

	require.NoError(t, s.Publish(context.Background(), reportWithMisroutes(1)))
	fields := got["fields"].(map[string]any)
	assert.Equal(t, "[handoff] 1 个问题路由错误", fields["summary"])
}

func TestSink_PublishSkipsWithoutMisroutes(t *testing.T) {
	called := false
	s := newTestSink(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	require.NoError(t, s.Publish(context.Background(), reportWithMisroutes(0)))
	assert.False(t, called)
}

func TestSink_PublishError(t *testing.T) {
	s := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages":["project is required"]}`))
	})
	err := s.Publish(context.Background(), reportWithMisroutes(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create jira issue")
}
