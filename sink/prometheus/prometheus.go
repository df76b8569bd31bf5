package prometheus

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/airstation/internal/eval"
	"github.com/airstation/sink"
)

func init() {
	sink.RegisterOptionsParser(sink.Prometheus, func(meta *toml.MetaData, primitive toml.Primitive) (any, error) {
		return sink.ParseOptions[Options](meta, primitive, sink.Prometheus)
	})

	sink.RegisterSink(sink.Prometheus, func(meta sink.SinkMeta, opts any) (sink.Sink, error) {
		promOpts, ok := opts.(*Options)
		if !ok {
			return nil, fmt.Errorf("invalid prometheus options type, got %T", opts)
		}
		return NewSink(meta, promOpts), nil
	})
}

type Options struct {
	URL     string        `toml:"url" validate:"required,url"`
	Job     string        `toml:"job"`
	Timeout time.Duration `toml:"timeout"`
}

// Sink 把评测结果推送到 Pushgateway，按 variant 分组
type Sink struct {
	name    string
	url     string
	job     string
	timeout time.Duration
	client  *http.Client
}

func NewSink(meta sink.SinkMeta, opts *Options) *Sink {
	job := opts.Job
	if job == "" {
		job = "air_station_eval"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sink{
		name:    meta.Name,
		url:     strings.TrimRight(opts.URL, "/"),
		job:     job,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *Sink) Name() string        { return s.name }
func (s *Sink) Type() sink.SinkType { return sink.Prometheus }

// BuildRegistry 把一次评测转换成一组 gauge
func BuildRegistry(report *eval.Report) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	summary := report.Summary

	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station",
			Subsystem: "eval",
			Name:      name,
			Help:      help,
		})
		g.Set(v)
		reg.MustRegister(g)
	}
	gauge("accuracy_percent", "Routing accuracy of the last evaluation run.", summary.Accuracy)
	gauge("cases", "Number of evaluated cases.", float64(summary.Total))
	gauge("correct", "Number of correctly routed cases.", float64(summary.Correct))
	gauge("errors", "Number of cases whose routing call failed.", float64(summary.Errors))
	gauge("misroutes", "Number of cases routed to the wrong agent.", float64(len(summary.Misroutes)))
	gauge("duration_seconds", "Wall time of the evaluation run.", report.FinishedAt.Sub(report.StartedAt).Seconds())
	gauge("last_run_timestamp_seconds", "Unix time the evaluation run finished.", float64(report.FinishedAt.Unix()))

	perAgent := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "station",
		Subsystem: "eval",
		Name:      "agent_accuracy_percent",
		Help:      "Routing accuracy per expected agent.",
	}, []string{"agent"})
	for agent, stats := range summary.PerAgent {
		perAgent.WithLabelValues(agent).Set(stats.Accuracy)
	}
	reg.MustRegister(perAgent)
	return reg
}

func (s *Sink) Publish(ctx context.Context, report *eval.Report) error {
	variant := report.Variant
	if variant == "" {
		variant = "default"
	}
	pusher := push.New(s.url, s.job).
		Gatherer(BuildRegistry(report)).
		Grouping("variant", variant).
		Client(s.client)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push to %s: %w", s.url, err)
	}
	return nil
}

func (s *Sink) Health(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(healthCtx, http.MethodGet, s.url+"/-/healthy", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushgateway health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushgateway health check failed: %s", resp.Status)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
