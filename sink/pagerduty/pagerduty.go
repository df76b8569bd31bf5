package pagerduty

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/PagerDuty/go-pagerduty"

	"github.com/airstation/internal/eval"
	"github.com/airstation/sink"
)

func init() {
	sink.RegisterOptionsParser(sink.PagerDuty, func(meta *toml.MetaData, primitive toml.Primitive) (any, error) {
		return sink.ParseOptions[Options](meta, primitive, sink.PagerDuty)
	})

	sink.RegisterSink(sink.PagerDuty, func(meta sink.SinkMeta, opts any) (sink.Sink, error) {
		pdOpts, ok := opts.(*Options)
		if !ok {
			return nil, fmt.Errorf("invalid pagerduty options type, got %T", opts)
		}
		return NewSink(meta, pdOpts), nil
	})
}

type Options struct {
	RoutingKey    string  `toml:"routing_key" validate:"required"`
	MinAccuracy   float64 `toml:"min_accuracy" validate:"gte=0,lte=100"`
	ResolveOnPass bool    `toml:"resolve_on_pass"`
	Source        string  `toml:"source"`
	Severity      string  `toml:"severity" validate:"omitempty,oneof=critical error warning info"`
	// EventsURL 覆盖 Events v2 地址，默认 https://events.pagerduty.com
	EventsURL string `toml:"events_url" validate:"omitempty,url"`
}

// Sink 准确率低于阈值时触发 PagerDuty 事件
type Sink struct {
	name   string
	opts   *Options
	client *pagerduty.Client
}

func NewSink(meta sink.SinkMeta, opts *Options) *Sink {
	var clientOpts []pagerduty.ClientOptions
	if opts.EventsURL != "" {
		clientOpts = append(clientOpts, pagerduty.WithV2EventsAPIEndpoint(strings.TrimRight(opts.EventsURL, "/")))
	}
	return &Sink{
		name:   meta.Name,
		opts:   opts,
		client: pagerduty.NewClient("", clientOpts...),
	}
}

func (s *Sink) Name() string        { return s.name }
func (s *Sink) Type() sink.SinkType { return sink.PagerDuty }

// DedupKey 同一路由策略共用一个告警
func DedupKey(variant string) string {
	if variant == "" {
		variant = "default"
	}
	return variant + "-accuracy"
}

// BuildEvent 根据准确率生成 trigger 或 resolve 事件，无需发送时返回 nil
func (s *Sink) BuildEvent(report *eval.Report) *pagerduty.V2Event {
	summary := report.Summary
	if summary.Accuracy < s.opts.MinAccuracy {
		source := s.opts.Source
		if source == "" {
			source = "air-station-eval"
		}
		severity := s.opts.Severity
		if severity == "" {
			severity = "warning"
		}
		misroutes := make([]string, 0, len(summary.Misroutes))
		for _, r := range summary.Misroutes {
			misroutes = append(misroutes, fmt.Sprintf("问题%d: 预期 %s, 实际 %s", r.Index, r.Expected, r.Actual))
		}
		return &pagerduty.V2Event{
			RoutingKey: s.opts.RoutingKey,
			Action:     "trigger",
			DedupKey:   DedupKey(report.Variant),
			Payload: &pagerduty.V2Payload{
				Summary:  fmt.Sprintf("[%s] 路由准确率 %.2f%% 低于阈值 %.2f%%", report.Variant, summary.Accuracy, s.opts.MinAccuracy),
				Source:   source,
				Severity: severity,
				Group:    report.Variant,
				Class:    "routing-accuracy",
				Details: map[string]any{
					"run_id":    report.RunID,
					"model":     report.Model,
					"total":     summary.Total,
					"correct":   summary.Correct,
					"errors":    summary.Errors,
					"misroutes": misroutes,
				},
			},
		}
	}
	if s.opts.ResolveOnPass {
		return &pagerduty.V2Event{
			RoutingKey: s.opts.RoutingKey,
			Action:     "resolve",
			DedupKey:   DedupKey(report.Variant),
		}
	}
	return nil
}

func (s *Sink) Publish(ctx context.Context, report *eval.Report) error {
	event := s.BuildEvent(report)
	if event == nil {
		slog.Debug("sink.pagerduty.skip", "sink", s.name, "accuracy", report.Summary.Accuracy)
		return nil
	}
	resp, err := s.client.ManageEventWithContext(ctx, event)
	if err != nil {
		return fmt.Errorf("send pagerduty event: %w", err)
	}
	slog.Info("sink.pagerduty.sent",
		"sink", s.name,
		"action", event.Action,
		"dedup_key", resp.DedupKey,
	)
	return nil
}

func (s *Sink) Health(ctx context.Context) error {
	if s.opts.RoutingKey == "" {
		return fmt.Errorf("pagerduty routing key not configured")
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
