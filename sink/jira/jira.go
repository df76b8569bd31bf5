package jira

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	jira "github.com/andygrunwald/go-jira"

	"github.com/airstation/internal/eval"
	"github.com/airstation/sink"
)

func init() {
	sink.RegisterOptionsParser(sink.Jira, func(meta *toml.MetaData, primitive toml.Primitive) (any, error) {
		return sink.ParseOptions[Options](meta, primitive, sink.Jira)
	})

	sink.RegisterSink(sink.Jira, func(meta sink.SinkMeta, opts any) (sink.Sink, error) {
		jiraOpts, ok := opts.(*Options)
		if !ok {
			return nil, fmt.Errorf("invalid jira options type, got %T", opts)
		}
		return NewSink(meta, jiraOpts)
	})
}

type Options struct {
	URL       string   `toml:"url" validate:"required,url"`
	Username  string   `toml:"username" validate:"required"`
	Password  string   `toml:"password" validate:"required"`
	Project   string   `toml:"project" validate:"required"`
	IssueType string   `toml:"issue_type"`
	Labels    []string `toml:"labels"`
}

// Sink 出现错路由时创建一个 Jira 问题
type Sink struct {
	name   string
	opts   *Options
	client *jira.Client
}

func NewSink(meta sink.SinkMeta, opts *Options) (*Sink, error) {
	tp := jira.BasicAuthTransport{
		Username: opts.Username,
		Password: opts.Password,
	}
	client, err := jira.NewClient(tp.Client(), opts.URL)
	if err != nil {
		return nil, fmt.Errorf("create jira client: %w", err)
	}
	return &Sink{
		name:   meta.Name,
		opts:   opts,
		client: client,
	}, nil
}

func (s *Sink) Name() string        { return s.name }
func (s *Sink) Type() sink.SinkType { return sink.Jira }

// BuildIssue 生成列出错路由的问题，没有错路由时返回 nil
func (s *Sink) BuildIssue(report *eval.Report) *jira.Issue {
	misroutes := report.Summary.Misroutes
	if len(misroutes) == 0 {
		return nil
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "Run ID: %s\n", report.RunID)
	fmt.Fprintf(&desc, "路由策略: %s\n", report.Variant)
	if report.Model != "" {
		fmt.Fprintf(&desc, "模型: %s\n", report.Model)
	}
	fmt.Fprintf(&desc, "准确率: %.2f%% (%d/%d)\n\n", report.Summary.Accuracy, report.Summary.Correct, report.Summary.Total)
	desc.WriteString("错误详情:\n")
	for _, r := range misroutes {
		fmt.Fprintf(&desc, "- 问题%d \"%s\": 预期 %s, 实际 %s\n", r.Index, r.Question, r.Expected, r.Actual)
	}

	issueType := s.opts.IssueType
	if issueType == "" {
		issueType = "Task"
	}
	return &jira.Issue{
		Fields: &jira.IssueFields{
			Project:     jira.Project{Key: s.opts.Project},
			Type:        jira.IssueType{Name: issueType},
			Summary:     fmt.Sprintf("[%s] %d 个问题路由错误", report.Variant, len(misroutes)),
			Description: desc.String(),
			Labels:      s.opts.Labels,
		},
	}
}

func (s *Sink) Publish(ctx context.Context, report *eval.Report) error {
	issue := s.BuildIssue(report)
	if issue == nil {
		slog.Debug("sink.jira.skip", "sink", s.name, "reason", "no misroutes")
		return nil
	}
	created, _, err := s.client.Issue.CreateWithContext(ctx, issue)
	if err != nil {
		return fmt.Errorf("create jira issue: %w", err)
	}
	slog.Info("sink.jira.created", "sink", s.name, "issue", created.Key)
	return nil
}

func (s *Sink) Health(ctx context.Context) error {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, _, err := s.client.User.GetSelfWithContext(healthCtx); err != nil {
		return fmt.Errorf("jira health check failed: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
