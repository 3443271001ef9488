package mock

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/yungbote/langbridge-backend/internal/llm"
)

// ReplyFunc answers one call. The user message is the last user-role content.
type ReplyFunc func(ctx context.Context, system, user string) (string, error)

// Engine is an in-process llm.Engine for local development and tests.
type Engine struct {
	Reply ReplyFunc

	calls atomic.Int64
}

func New() *Engine {
	return &Engine{}
}

// WithReply returns an engine answering every call with fn.
func WithReply(fn ReplyFunc) *Engine {
	return &Engine{Reply: fn}
}

// Static returns an engine answering every call with the same text.
func Static(text string) *Engine {
	return WithReply(func(context.Context, string, string) (string, error) { return text, nil })
}

// Failing returns an engine failing every call with err.
func Failing(err error) *Engine {
	return WithReply(func(context.Context, string, string) (string, error) { return "", err })
}

func (e *Engine) Calls() int64 { return e.calls.Load() }

func (e *Engine) GenerateText(ctx context.Context, messages []llm.Message, _ llm.GenerateOptions) (string, error) {
	e.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var system, user string
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case llm.RoleSystem:
			system = m.Content
		case llm.RoleUser:
			user = m.Content
		}
	}

	if e.Reply != nil {
		return e.Reply(ctx, system, user)
	}
	// Prose on purpose: callers exercise their fallback path against the mock engine.
	if strings.TrimSpace(user) == "" {
		return "mock: ok", nil
	}
	return fmt.Sprintf("mock: %s", firstLine(user)), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
