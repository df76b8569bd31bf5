package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-kratos/blades"
	"github.com/go-kratos/blades/memory"
	toolkit "github.com/go-kratos/blades/tools"
	"go.opentelemetry.io/otel/attribute"

	"github.com/airstation/agent"
	"github.com/airstation/config"
	"github.com/airstation/internal/consts"
	"github.com/airstation/internal/eval"
	"github.com/airstation/internal/llm"
	"github.com/airstation/internal/logger"
	"github.com/airstation/internal/metrics"
	"github.com/airstation/internal/middleware"
	"github.com/airstation/internal/session"
	"github.com/airstation/internal/summary"
	"github.com/airstation/internal/tracer"
	"github.com/airstation/sink"

	_ "github.com/airstation/sink/jira"
	_ "github.com/airstation/sink/opensearch"
	_ "github.com/airstation/sink/pagerduty"
	_ "github.com/airstation/sink/prometheus"
)

type Application struct {
	cfg      *config.Loader
	conf     *config.Config
	strategy string

	agents      map[string]*config.AgentConfig
	modelReg    *llm.ModelRegistry
	sinks       *sink.Registry
	metrics     *metrics.Metrics
	memoryStore memory.MemoryStore
	store       session.Store
	summarizer  summary.Summarizer
	mainAgent   blades.Agent
	runner      *blades.Runner

	closeLog       func() error
	shutdownTracer tracer.ShutdownFunc

	sharedMu      sync.Mutex
	sharedSession blades.Session
}

// Option 应用启动选项
type Option func(*Application)

// WithStrategy 覆盖配置文件中的路由策略
func WithStrategy(strategy string) Option {
	return func(a *Application) {
		a.strategy = strings.TrimSpace(strategy)
	}
}

// WithModel 为指定 Agent 预置模型，初始化时不再按配置构建
func WithModel(agentName string, model blades.ModelProvider) Option {
	return func(a *Application) {
		a.modelReg.Register(agentName, model)
	}
}

func NewApplication(configPath string, opts ...Option) (*Application, error) {
	a := &Application{
		cfg:      config.NewLoader(configPath),
		modelReg: llm.NewModelRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Application) Initialize(ctx context.Context) error {
	cfg, err := a.cfg.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.strategy != "" {
		cfg.Routing.Strategy = a.strategy
	}
	a.conf = cfg

	if err := validateRules(cfg); err != nil {
		return fmt.Errorf("validate app rules: %w", err)
	}

	closeLog, err := logger.Initialize(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.closeLog = closeLog

	shutdown, err := tracer.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.shutdownTracer = shutdown

	a.agents = make(map[string]*config.AgentConfig)
	for name, acfg := range cfg.Agents {
		if acfg.Enabled {
			a.agents[name] = &acfg
		}
	}

	if err := a.initModels(ctx); err != nil {
		return err
	}
	a.initMemoryStore()
	if err := a.initSessionStore(); err != nil {
		return err
	}
	a.metrics = metrics.New()
	if err := a.initSummarizer(); err != nil {
		return err
	}
	if err := a.initMainAgent(); err != nil {
		return err
	}
	if err := a.initSinks(ctx); err != nil {
		return err
	}
	return nil
}

func validateRules(cfg *config.Config) error {
	mainCfg, ok := cfg.Agents[consts.AgentNameMain]
	if !ok {
		return fmt.Errorf("main agent %s is required but not found", consts.AgentNameMain)
	}
	if !mainCfg.Enabled {
		return fmt.Errorf("main agent %s must be enabled", consts.AgentNameMain)
	}

	for name := range cfg.Agents {
		if !consts.IsKnownAgent(name) {
			return fmt.Errorf("unknown agent %s in config", name)
		}
	}

	enabled := 0
	for _, name := range consts.SpecialistAgents {
		if acfg, ok := cfg.Agents[name]; ok && acfg.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one specialist agent (%s) must be enabled", strings.Join(consts.SpecialistAgents, ", "))
	}

	switch cfg.Routing.Strategy {
	case consts.StrategyHandoff, consts.StrategySwarm, consts.StrategyDelegate:
	default:
		return fmt.Errorf("unsupported routing strategy: %s", cfg.Routing.Strategy)
	}
	return nil
}

func (a *Application) initModels(ctx context.Context) error {
	slog.Info("app.init.models.start")
	factory := llm.NewFactory()

	for name := range a.agents {
		if _, err := a.modelReg.Get(name); err == nil {
			slog.Info("app.init.models.preset", "agent", name)
			continue
		}
		llmCfg := a.conf.ResolveLLM(name)
		m, err := factory.Build(ctx, llmCfg)
		if err != nil {
			return fmt.Errorf("build model for %s: %w", name, err)
		}
		a.modelReg.Register(name, m)
		slog.Info("app.init.models.register",
			"agent", name,
			"provider", llmCfg.Provider,
			"model", llm.DescribeModel(llmCfg),
		)
	}
	slog.Info("app.init.models.complete", "count", len(a.agents))
	return nil
}

func (a *Application) initMemoryStore() {
	a.memoryStore = memory.NewInMemoryStore()
	slog.Info("app.init.memory.store.complete", "type", "in-memory")
}

func (a *Application) initSessionStore() error {
	path := strings.TrimSpace(a.conf.Session.DBPath)
	if path == "" {
		slog.Info("app.init.session.store.skip", "reason", "db_path not set")
		return nil
	}
	store, err := session.NewSQLiteStore(path)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	a.store = store
	slog.Info("app.init.session.store.complete", "type", "sqlite", "path", path)
	return nil
}

func (a *Application) initSummarizer() error {
	name := a.conf.Conversation.SummaryModelAgent
	if name == "" {
		name = consts.AgentNameMain
	}
	model, err := a.modelReg.Get(name)
	if err != nil {
		return fmt.Errorf("summary model: %w", err)
	}
	s, err := summary.NewSummarizer(summary.Config{
		Model:           model,
		MaxOutputTokens: a.conf.Conversation.SummaryMaxOutputTokens,
	})
	if err != nil {
		return fmt.Errorf("create summarizer: %w", err)
	}
	a.summarizer = s
	return nil
}

func (a *Application) initTools() ([]toolkit.Tool, error) {
	memoryTool, err := memory.NewMemoryTool(a.memoryStore)
	if err != nil {
		return nil, fmt.Errorf("create memory tool: %w", err)
	}
	return []toolkit.Tool{memoryTool}, nil
}

func (a *Application) initMainAgent() error {
	slog.Info("app.init.main_agent.start", "strategy", a.conf.Routing.Strategy)

	enabledAgents := make([]string, 0, len(a.agents))
	for name := range a.agents {
		enabledAgents = append(enabledAgents, name)
	}
	sort.Strings(enabledAgents)

	tools, err := a.initTools()
	if err != nil {
		return err
	}

	root, err := agent.NewMainAgent(agent.MainAgentConfig{
		ModelRegistry: a.modelReg,
		EnabledAgents: enabledAgents,
		Strategy:      a.conf.Routing.Strategy,
		MaxHops:       a.conf.Routing.MaxHops,
		Observer:      a.metrics,
		Tools:         tools,
	})
	if err != nil {
		return fmt.Errorf("create main agent: %w", err)
	}
	a.mainAgent = root
	a.runner = agent.NewStationRunner(root)

	slog.Info("app.init.main_agent.complete", "enabled_agents", enabledAgents)
	return nil
}

const sinkHealthTimeout = 5 * time.Second

func (a *Application) initSinks(ctx context.Context) error {
	slog.Info("app.init.sinks.start")
	registry := sink.NewRegistry()
	if err := registry.InitFromConfig(a.cfg); err != nil {
		return fmt.Errorf("init sinks: %w", err)
	}
	a.sinks = registry

	names := make([]string, 0)
	for _, s := range registry.All() {
		names = append(names, s.Name())
	}
	unhealthy := registry.CheckHealth(ctx, sinkHealthTimeout)
	slog.Info("app.init.sinks.complete", "count", len(names), "sinks", names, "unhealthy", len(unhealthy))
	return nil
}

// NewSession 创建新会话，配置了 db_path 时持久化到 SQLite
func (a *Application) NewSession() (blades.Session, error) {
	if a.conf == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return a.newSession(a.store), nil
}

func (a *Application) newSession(store session.Store) *session.ManagedSession {
	return session.NewManagedSession(session.ManagedSessionConfig{
		Conversation: a.conf.Conversation,
		Summarizer:   a.summarizer,
		Store:        store,
	})
}

// OpenSession 按 id 恢复会话
func (a *Application) OpenSession(ctx context.Context, id string) (blades.Session, error) {
	if a.conf == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return session.OpenManagedSession(ctx, session.ManagedSessionConfig{
		ID:           id,
		Conversation: a.conf.Conversation,
		Summarizer:   a.summarizer,
		Store:        a.store,
	})
}

func (a *Application) Run(ctx context.Context, input *blades.Message, opts ...blades.RunOption) (*blades.Message, error) {
	if a.runner == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return a.runner.Run(ctx, input, opts...)
}

// Turn 一轮对话的结果
type Turn struct {
	Agent  string
	Output *blades.Message
	Path   []string
}

// Chat 在给定会话上运行一轮对话并解析作答的 Agent
func (a *Application) Chat(ctx context.Context, s blades.Session, text string) (Turn, error) {
	ctx, span := tracer.StartSpan(ctx, "station.chat",
		attribute.String("session.id", s.ID()),
		attribute.String("routing.strategy", a.Strategy()),
	)

	middleware.ResetResponder(s)
	output, err := a.Run(ctx, blades.UserMessage(text), blades.WithSession(s))
	if err != nil {
		tracer.End(span, err)
		return Turn{}, err
	}

	turn := Turn{
		Agent:  ResolveResponder(s, output),
		Output: output,
		Path:   middleware.HandoffPath(s),
	}
	span.SetAttributes(attribute.String("routing.agent", turn.Agent))
	tracer.End(span, nil)
	return turn, nil
}

// Route 实现 eval.Router，默认每道题使用独立的内存会话
func (a *Application) Route(ctx context.Context, question string) (eval.Routing, error) {
	if a.conf == nil {
		return eval.Routing{}, fmt.Errorf("application not initialized")
	}

	var s blades.Session
	if a.conf.Eval.SharedSession {
		a.sharedMu.Lock()
		defer a.sharedMu.Unlock()
		if a.sharedSession == nil {
			a.sharedSession = a.newSession(nil)
		}
		s = a.sharedSession
	} else {
		s = a.newSession(nil)
	}

	start := time.Now()
	turn, err := a.Chat(ctx, s, question)
	if err != nil {
		return eval.Routing{}, err
	}
	return eval.Routing{
		Agent:   turn.Agent,
		Reply:   turn.Output.Text(),
		Path:    turn.Path,
		Latency: time.Since(start),
	}, nil
}

// ResolveResponder 依次取会话记录的作答者、回复的 Author，最后回落到 main_agent
func ResolveResponder(s blades.Session, output *blades.Message) string {
	if name := middleware.ActiveAgent(s); name != "" {
		return name
	}
	if output != nil && consts.IsKnownAgent(output.Author) {
		return output.Author
	}
	return consts.AgentNameMain
}

// Publish 记录准确率指标并把报告发给所有 sink
func (a *Application) Publish(ctx context.Context, report *eval.Report) error {
	var errs []error
	if a.metrics != nil {
		a.metrics.SetAccuracy(report.Variant, report.Summary.Accuracy)
		if path := a.conf.Metrics.Textfile; path != "" {
			if err := a.metrics.WriteTextfile(path); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if a.sinks != nil {
		if err := a.sinks.Publish(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Strategy 当前生效的路由策略
func (a *Application) Strategy() string {
	if a.conf != nil {
		return a.conf.Routing.Strategy
	}
	return a.strategy
}

// ModelDescription 主调度 Agent 使用的模型，形如 openai/gpt-4o-mini
func (a *Application) ModelDescription() string {
	if a.conf == nil {
		return ""
	}
	llmCfg := a.conf.ResolveLLM(consts.AgentNameMain)
	return llmCfg.Provider + "/" + llm.DescribeModel(llmCfg)
}

// Config 已加载的配置
func (a *Application) Config() *config.Config {
	return a.conf
}

// Metrics 评测指标，供 eval.Harness 使用
func (a *Application) Metrics() *metrics.Metrics {
	return a.metrics
}

// EnabledSpecialists 按固定顺序返回启用的专业 Agent
func (a *Application) EnabledSpecialists() []string {
	out := make([]string, 0, len(consts.SpecialistAgents))
	for _, name := range consts.SpecialistAgents {
		if _, ok := a.agents[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func (a *Application) MemoryStore() memory.MemoryStore {
	return a.memoryStore
}

func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error

	if a.sinks != nil {
		if err := a.sinks.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sinks: %w", err))
		}
	}
	if a.modelReg != nil {
		if err := a.modelReg.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close models: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			errs = append(errs, fmt.Errorf("close log: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *Application) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return a.Shutdown(ctx)
}
