// Package llm is the boundary to the upstream text-generation service.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string
	Content string
}

type GenerateOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Engine generates free text from a chat-style prompt. Implementations must be safe for concurrent use.
type Engine interface {
	GenerateText(ctx context.Context, messages []Message, opts GenerateOptions) (string, error)
}

var (
	// ErrDisabled is returned when no upstream is configured.
	ErrDisabled = errors.New("llm upstream disabled")

	// ErrEmptyCompletion indicates the upstream answered 2xx without any message content.
	ErrEmptyCompletion = errors.New("empty upstream completion")
)

type disabled struct{}

// Disabled returns an engine that fails every call with ErrDisabled.
func Disabled() Engine { return disabled{} }

func (disabled) GenerateText(context.Context, []Message, GenerateOptions) (string, error) {
	return "", ErrDisabled
}

// SystemUser is the two-message prompt shape every curation call uses.
func SystemUser(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}
