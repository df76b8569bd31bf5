package sink

import (
	"context"

	"github.com/airstation/internal/eval"
)

type SinkType string

const (
	OpenSearch SinkType = "opensearch"
	PagerDuty  SinkType = "pagerduty"
	Prometheus SinkType = "prometheus"
	Jira       SinkType = "jira"
)

// Sink 评测结果输出端
type Sink interface {
	Name() string
	Type() SinkType
	Publish(ctx context.Context, report *eval.Report) error
	Health(ctx context.Context) error
	Close() error
}
