package eval

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/airstation/internal/tracer"
)

// ErrCircuitOpen 连续失败次数达到阈值后，剩余用例直接失败
var ErrCircuitOpen = errors.New("circuit open")

// Routing 一次路由的结果
type Routing struct {
	Agent   string
	Reply   string
	Path    []string
	Latency time.Duration
}

// Router 把问题交给主调度 Agent，返回最终作答的 Agent
type Router interface {
	Route(ctx context.Context, question string) (Routing, error)
}

// Observer 接收每道题的路由结果，用于指标
type Observer interface {
	ObserveRouting(expected, actual string, correct bool, err error, latency time.Duration)
}

// Result 单道题的评测结果
type Result struct {
	Index    int           `json:"index"`
	Question string        `json:"question"`
	Expected string        `json:"expected"`
	Actual   string        `json:"actual"`
	Correct  bool          `json:"correct"`
	Error    string        `json:"error,omitempty"`
	Path     []string      `json:"path,omitempty"`
	Latency  time.Duration `json:"latency"`
}

// HarnessConfig 评测并发与保护配置
type HarnessConfig struct {
	Workers         int
	RatePerSecond   float64
	BreakerFailures uint32
	Timeout         time.Duration
	Observer        Observer
	// OnResult 按用例顺序回调
	OnResult func(Result)
}

// Harness 依次（或并发）执行用例
type Harness struct {
	router  Router
	cfg     HarnessConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[Routing]
}

func NewHarness(router Router, cfg HarnessConfig) *Harness {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	h := &Harness{router: router, cfg: cfg}
	if cfg.RatePerSecond > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	if cfg.BreakerFailures > 0 {
		threshold := cfg.BreakerFailures
		h.breaker = gobreaker.NewCircuitBreaker[Routing](gobreaker.Settings{
			Name:    "eval-router",
			Timeout: time.Hour,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("eval.breaker.state_change",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		})
	}
	return h
}

// Run 执行全部用例，结果按用例顺序返回
// 路由错误记录在结果中，只有 ctx 取消会中止整个评测
func (h *Harness) Run(ctx context.Context, cases []Case) ([]Result, error) {
	results := make([]Result, len(cases))
	emit := newOrderedEmitter(len(cases), h.cfg.OnResult)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.Workers)
	for i, c := range cases {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := h.runCase(gctx, i+1, c)
			if err != nil {
				return err
			}
			results[i] = r
			emit.done(i, r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (h *Harness) runCase(ctx context.Context, index int, c Case) (Result, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return Result{}, err
		}
	}

	ctx, span := tracer.StartSpan(ctx, "eval.case",
		attribute.Int("case.index", index),
		attribute.String("case.expected", c.ExpectedAgent),
	)

	callCtx := ctx
	if h.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	routing, err := h.route(callCtx, c.Question)
	latency := time.Since(start)

	// 外层取消时中止，不记录结果
	if ctxErr := ctx.Err(); ctxErr != nil {
		tracer.End(span, ctxErr)
		return Result{}, ctxErr
	}

	result := Result{
		Index:    index,
		Question: c.Question,
		Expected: c.ExpectedAgent,
		Latency:  latency,
	}
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Actual = routing.Agent
		result.Path = routing.Path
		result.Correct = routing.Agent == c.ExpectedAgent
	}

	span.SetAttributes(
		attribute.String("case.actual", result.Actual),
		attribute.Bool("case.correct", result.Correct),
	)
	tracer.End(span, err)

	if h.cfg.Observer != nil {
		h.cfg.Observer.ObserveRouting(result.Expected, result.Actual, result.Correct, err, latency)
	}

	slog.Debug("eval.case.complete",
		"index", index,
		"expected", result.Expected,
		"actual", result.Actual,
		"correct", result.Correct,
		"error", result.Error,
		"latency", latency,
	)
	return result, nil
}

func (h *Harness) route(ctx context.Context, question string) (Routing, error) {
	if h.breaker == nil {
		return h.router.Route(ctx, question)
	}
	routing, err := h.breaker.Execute(func() (Routing, error) {
		return h.router.Route(ctx, question)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Routing{}, ErrCircuitOpen
	}
	return routing, err
}

// orderedEmitter 缓存先完成的结果，保证回调按用例顺序触发
type orderedEmitter struct {
	mu      sync.Mutex
	fn      func(Result)
	next    int
	pending map[int]Result
}

func newOrderedEmitter(n int, fn func(Result)) *orderedEmitter {
	return &orderedEmitter{fn: fn, pending: make(map[int]Result, n)}
}

func (e *orderedEmitter) done(i int, r Result) {
	if e.fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending[i] = r
	for {
		next, ok := e.pending[e.next]
		if !ok {
			return
		}
		delete(e.pending, e.next)
		e.next++
		e.fn(next)
	}
}
