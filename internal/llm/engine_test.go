package llm

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledEngine(t *testing.T) {
	_, err := Disabled().GenerateText(context.Background(), SystemUser("s", "u"), GenerateOptions{})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("err=%v", err)
	}
}
