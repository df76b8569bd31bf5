package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/airstation/config"
	"github.com/airstation/internal/eval"
)

type SinkMeta struct {
	Name        string
	Description string
}

type SinkFactory func(meta SinkMeta, opts any) (Sink, error)

var sinkRegistry = struct {
	mu    sync.RWMutex
	sinks map[SinkType]SinkFactory
}{
	sinks: make(map[SinkType]SinkFactory),
}

// RegisterSink 注册 sink 工厂，重复注册时保留第一个
func RegisterSink(sinkType SinkType, factory SinkFactory) {
	sinkRegistry.mu.Lock()
	defer sinkRegistry.mu.Unlock()

	if _, exists := sinkRegistry.sinks[sinkType]; exists {
		slog.Warn("sink.register.duplicate", "type", sinkType)
		return
	}
	sinkRegistry.sinks[sinkType] = factory
}

func getSinkFactory(sinkType SinkType) (SinkFactory, bool) {
	sinkRegistry.mu.RLock()
	defer sinkRegistry.mu.RUnlock()

	factory, ok := sinkRegistry.sinks[sinkType]
	return factory, ok
}

type Registry struct {
	mu    sync.RWMutex
	sinks map[string]Sink
}

func NewRegistry() *Registry {
	return &Registry{
		sinks: make(map[string]Sink),
	}
}

// InitFromConfig 按 [sinks.*] 创建启用的 sink
func (r *Registry) InitFromConfig(loader *config.Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := loader.Get()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	for name, sinkCfg := range cfg.Sinks {
		if !sinkCfg.Enabled {
			slog.Debug("sink.init.skip", "sink", name, "reason", "disabled")
			continue
		}

		primitive, meta, err := loader.GetSinkOptions(name)
		if err != nil {
			return fmt.Errorf("get options for %s: %w", name, err)
		}

		sinkType := SinkType(sinkCfg.Type)
		parser, ok := GetOptionsParser(sinkType)
		if !ok {
			return fmt.Errorf("no parser registered for sink type: %s", sinkType)
		}

		opts, err := parser(meta, primitive)
		if err != nil {
			return fmt.Errorf("parse options for %s: %w", name, err)
		}

		s, err := r.createSink(sinkType, SinkMeta{Name: name, Description: sinkCfg.Description}, opts)
		if err != nil {
			return err
		}
		r.sinks[s.Name()] = s
		slog.Info("sink.init.complete", "sink", name, "type", sinkType)
	}
	return nil
}

func (r *Registry) createSink(sinkType SinkType, meta SinkMeta, opts any) (Sink, error) {
	factory, ok := getSinkFactory(sinkType)
	if !ok {
		return nil, fmt.Errorf("unknown sink type: %s (no factory registered)", sinkType)
	}

	s, err := factory(meta, opts)
	if err != nil {
		return nil, fmt.Errorf("create sink %s: %w", meta.Name, err)
	}
	return s, nil
}

// Add 直接注册一个 sink
func (r *Registry) Add(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[s.Name()] = s
}

// All 按名称排序返回所有 sink
func (r *Registry) All() []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Sink, 0, len(r.sinks))
	for _, s := range r.sinks {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Publish 把报告发给所有 sink，单个失败不影响其余 sink
func (r *Registry) Publish(ctx context.Context, report *eval.Report) error {
	var errs []error
	for _, s := range r.All() {
		if err := s.Publish(ctx, report); err != nil {
			slog.Error("sink.publish.failed", "sink", s.Name(), "type", s.Type(), "error", err)
			errs = append(errs, fmt.Errorf("publish to %s: %w", s.Name(), err))
			continue
		}
		slog.Info("sink.publish.complete", "sink", s.Name(), "type", s.Type(), "run_id", report.RunID)
	}
	return errors.Join(errs...)
}

// CheckHealth 逐个检查 sink 的连通性，返回检查失败的 sink
// 检查失败只记录日志，评测结果仍会尝试发布
func (r *Registry) CheckHealth(ctx context.Context, timeout time.Duration) map[string]error {
	failed := make(map[string]error)
	for _, s := range r.All() {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := s.Health(checkCtx)
		cancel()
		if err != nil {
			slog.Warn("sink.health.failed", "sink", s.Name(), "type", s.Type(), "error", err)
			failed[s.Name()] = err
			continue
		}
		slog.Info("sink.health.ok", "sink", s.Name(), "type", s.Type())
	}
	return failed
}

// Close 关闭所有 sink
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
