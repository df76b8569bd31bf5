package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRouting(t *testing.T) {
	m := New()

	m.ObserveRouting("dispatch_agent", "dispatch_agent", true, nil, 200*time.Millisecond)
	m.ObserveRouting("dispatch_agent", "report_agent", false, nil, time.Second)
	m.ObserveRouting("health_agent", "", false, errors.New("timeout"), 3*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutingTotal.WithLabelValues("dispatch_agent", "dispatch_agent", ResultCorrect)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutingTotal.WithLabelValues("dispatch_agent", "report_agent", ResultMisroute)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutingTotal.WithLabelValues("health_agent", "", ResultError)))
	assert.Equal(t, 3, testutil.CollectAndCount(m.RoutingTotal))
}

func TestObserveAgentInvocation(t *testing.T) {
	m := New()

	m.ObserveAgentInvocation("main_agent", 10*time.Millisecond, nil)
	m.ObserveAgentInvocation("main_agent", 10*time.Millisecond, nil)
	m.ObserveAgentInvocation("health_agent", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AgentInvocations.WithLabelValues("main_agent", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgentInvocations.WithLabelValues("health_agent", "error")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.SetAccuracy("handoff", 95)

	path := filepath.Join(t.TempDir(), "station.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `station_routing_accuracy{variant="handoff"} 95`)
}

func TestWriteTextfile_BadPath(t *testing.T) {
	m := New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "station.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics textfile")
}
