package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/airstation/internal/eval"
	"github.com/airstation/sink"
)

func init() {
	sink.RegisterOptionsParser(sink.OpenSearch, func(meta *toml.MetaData, primitive toml.Primitive) (any, error) {
		return sink.ParseOptions[Options](meta, primitive, sink.OpenSearch)
	})

	sink.RegisterSink(sink.OpenSearch, func(meta sink.SinkMeta, opts any) (sink.Sink, error) {
		osOpts, ok := opts.(*Options)
		if !ok {
			return nil, fmt.Errorf("invalid opensearch options type, got %T", opts)
		}
		return NewSink(meta, osOpts)
	})
}

type Options struct {
	Addresses []string `toml:"addresses" validate:"required,min=1,dive,url"`
	Username  string   `toml:"username"`
	Password  string   `toml:"password"`
	Index     string   `toml:"index" validate:"required"`
}

// Sink 每道题写入一个文档
type Sink struct {
	name   string
	index  string
	client *opensearch.Client
}

func NewSink(meta sink.SinkMeta, opts *Options) (*Sink, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: opts.Addresses,
		Username:  opts.Username,
		Password:  opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Sink{
		name:   meta.Name,
		index:  opts.Index,
		client: client,
	}, nil
}

func (s *Sink) Name() string        { return s.name }
func (s *Sink) Type() sink.SinkType { return sink.OpenSearch }

// Document 写入 OpenSearch 的单题记录
type Document struct {
	RunID     string    `json:"run_id"`
	Variant   string    `json:"variant"`
	Model     string    `json:"model,omitempty"`
	Index     int       `json:"index"`
	Question  string    `json:"question"`
	Expected  string    `json:"expected"`
	Actual    string    `json:"actual"`
	Correct   bool      `json:"correct"`
	Error     string    `json:"error,omitempty"`
	Path      []string  `json:"path,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"@timestamp"`
}

// BuildBulkBody 生成 _bulk 请求体，文档 id 为 <run_id>-<index>
func BuildBulkBody(report *eval.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, r := range report.Results {
		action := map[string]any{
			"index": map[string]string{"_id": fmt.Sprintf("%s-%d", report.RunID, r.Index)},
		}
		if err := enc.Encode(action); err != nil {
			return nil, err
		}
		doc := Document{
			RunID:     report.RunID,
			Variant:   report.Variant,
			Model:     report.Model,
			Index:     r.Index,
			Question:  r.Question,
			Expected:  r.Expected,
			Actual:    r.Actual,
			Correct:   r.Correct,
			Error:     r.Error,
			Path:      r.Path,
			LatencyMS: r.Latency.Milliseconds(),
			Timestamp: report.FinishedAt,
		}
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
}

func (s *Sink) Publish(ctx context.Context, report *eval.Report) error {
	if len(report.Results) == 0 {
		return nil
	}
	body, err := BuildBulkBody(report)
	if err != nil {
		return fmt.Errorf("encode bulk body: %w", err)
	}

	req := opensearchapi.BulkRequest{
		Index: s.index,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("opensearch bulk: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	var out bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if out.Errors {
		return fmt.Errorf("opensearch bulk reported item errors")
	}
	return nil
}

func (s *Sink) Health(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req := opensearchapi.PingRequest{}
	res, err := req.Do(healthCtx, s.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch health check failed: %s", res.Status())
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
