// Package metrics 汇总路由评测与 Agent 调用的 Prometheus 指标
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "station"

// 路由结果标签
const (
	ResultCorrect  = "correct"
	ResultMisroute = "misroute"
	ResultError    = "error"
)

// Metrics 路由与 Agent 指标
type Metrics struct {
	registry *prometheus.Registry

	RoutingTotal     *prometheus.CounterVec
	RoutingLatency   prometheus.Histogram
	RoutingAccuracy  *prometheus.GaugeVec
	AgentInvocations *prometheus.CounterVec
	AgentDuration    *prometheus.HistogramVec
}

// New 创建独立 registry 上的指标集合，便于测试和文本导出
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		RoutingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_total",
			Help:      "Routed questions by expected agent, actual agent and result",
		}, []string{"expected", "actual", "result"}),
		RoutingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "routing_latency_seconds",
			Help:      "End-to-end latency of a routed question",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		RoutingAccuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routing_accuracy",
			Help:      "Routing accuracy percentage of the last evaluation run",
		}, []string{"variant"}),
		AgentInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_invocations_total",
			Help:      "Agent runs by agent and status",
		}, []string{"agent", "status"}),
		AgentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_duration_seconds",
			Help:      "Duration of a single agent run",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent"}),
	}

	reg.MustRegister(
		m.RoutingTotal,
		m.RoutingLatency,
		m.RoutingAccuracy,
		m.AgentInvocations,
		m.AgentDuration,
	)
	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRouting 记录一次路由结果
func (m *Metrics) ObserveRouting(expected, actual string, correct bool, err error, latency time.Duration) {
	result := ResultMisroute
	switch {
	case err != nil:
		result = ResultError
	case correct:
		result = ResultCorrect
	}
	m.RoutingTotal.WithLabelValues(expected, actual, result).Inc()
	m.RoutingLatency.Observe(latency.Seconds())
}

// SetAccuracy 记录评测准确率
func (m *Metrics) SetAccuracy(variant string, accuracy float64) {
	m.RoutingAccuracy.WithLabelValues(variant).Set(accuracy)
}

// ObserveAgentInvocation 记录一次 Agent 运行
func (m *Metrics) ObserveAgentInvocation(agent string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.AgentInvocations.WithLabelValues(agent, status).Inc()
	m.AgentDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// WriteTextfile 以 node_exporter textfile 格式导出全部指标
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
