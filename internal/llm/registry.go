package llm

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-kratos/blades"
)

// ModelRegistry 按 Agent 名称保存模型实例
type ModelRegistry struct {
	mu     sync.RWMutex
	models map[string]blades.ModelProvider
}

func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{
		models: make(map[string]blades.ModelProvider),
	}
}

func (r *ModelRegistry) Register(name string, model blades.ModelProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[name] = model
}

func (r *ModelRegistry) Get(name string) (blades.ModelProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	model, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("model provider for agent %s not found", name)
	}
	return model, nil
}

// Names 返回已注册的 Agent 名称，按字母排序
func (r *ModelRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close 关闭实现了 Close 的模型
func (r *ModelRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, m := range r.models {
		if closer, ok := m.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close model %s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
