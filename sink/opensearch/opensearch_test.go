package opensearch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airstation/internal/eval"
	"github.com/airstation/sink"
)

func sampleReport() *eval.Report {
	return &eval.Report{
		RunID:      "run-1",
		Variant:    "handoff",
		FinishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Results: []eval.Result{
			{Index: 1, Question: "停止3号空压机运行", Expected: "dispatch_agent", Actual: "dispatch_agent", Correct: true, Latency: 1500 * time.Millisecond},
			{Index: 2, Question: "订购5个轴承备件", Expected: "maintenance_agent", Error: "timeout"},
		},
	}
}

func TestBuildBulkBody(t *testing.T) {
	body, err := BuildBulkBody(sampleReport())
	require.NoError(t, err)

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"index":{"_id":"run-1-1"}}`, lines[0])

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &doc))
	assert.Equal(t, "handoff", doc.Variant)
	assert.Equal(t, int64(1500), doc.LatencyMS)
	assert.True(t, doc.Correct)

	require.NoError(t, json.Unmarshal([]byte(lines[3]), &doc))
	assert.Equal(t, "timeout", doc.Error)
}

func TestSink_Publish(t *testing.T) {
	var gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"took":1,"errors":false,"items":[]}`))
	}))
	defer server.Close()

	s, err := NewSink(sink.SinkMeta{Name: "search"}, &Options{Addresses: []string{server.URL}, Index: "station-routing"})
	require.NoError(t, err)
	assert.Equal(t, "search", s.Name())
	assert.Equal(t, sink.OpenSearch, s.Type())

	require.NoError(t, s.Publish(context.Background(), sampleReport()))
	assert.Equal(t, "/station-routing/_bulk", gotPath)
	assert.Contains(t, string(gotBody), "run-1-2")
}

func TestSink_PublishItemErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":true}`))
	}))
	defer server.Close()

	s, err := NewSink(sink.SinkMeta{Name: "search"}, &Options{Addresses: []string{server.URL}, Index: "idx"})
	require.NoError(t, err)

	err = s.Publish(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item errors")
}

func TestSink_PublishEmptyReport(t *testing.T) {
	s, err := NewSink(sink.SinkMeta{Name: "search"}, &Options{Addresses: []string{"http://127.0.0.1:1"}, Index: "idx"})
	require.NoError(t, err)
	require.NoError(t, s.Publish(context.Background(), &eval.Report{}))
}
