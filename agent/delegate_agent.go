package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-kratos/blades"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
)

const delegateToolPrefix = "ask_"

// delegateTool 把专业 Agent 包装成主调度可调用的工具
type delegateTool struct {
	target blades.Agent
}

func newDelegateTool(target blades.Agent) *delegateTool {
	return &delegateTool{target: target}
}

func (t *delegateTool) Name() string { return delegateToolPrefix + t.target.Name() }
func (t *delegateTool) Description() string {
	return fmt.Sprintf("Ask %s to handle the question and return its answer. %s", t.target.Name(), t.target.Description())
}
func (t *delegateTool) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"question"},
		Properties: map[string]*jsonschema.Schema{
			"question": {
				Type:        "string",
				Description: "The question to forward to the specialist agent.",
			},
		},
	}
}
func (t *delegateTool) OutputSchema() *jsonschema.Schema { return nil }

// Handle 直接运行专业 Agent，返回其最后一条文本回复
// 专业 Agent 的 RecordResponder 中间件会把自己记为作答者
func (t *delegateTool) Handle(ctx context.Context, input string) (string, error) {
	args := map[string]string{}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", err
	}
	question := strings.TrimSpace(args["question"])
	if question == "" {
		return "", fmt.Errorf("question must be a non-empty string")
	}

	invocation := &blades.Invocation{
		ID:      uuid.NewString(),
		Message: blades.UserMessage(question),
	}
	if session, ok := blades.FromSessionContext(ctx); ok {
		invocation.Session = session
	}

	var answer string
	for message, err := range t.target.Run(ctx, invocation) {
		if err != nil {
			return "", fmt.Errorf("%s: %w", t.target.Name(), err)
		}
		if message == nil {
			continue
		}
		if text := message.Text(); text != "" {
			answer = text
		}
	}
	return answer, nil
}
