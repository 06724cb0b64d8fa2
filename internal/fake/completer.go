package fake

import (
	"context"
	"sync"
)

// CompleteCall is one recorded Complete invocation.
type CompleteCall struct {
	System string
	Human  string
}

// Completer is a test double for types.Completer. Without CompleteFunc it
// answers with an empty string.
type Completer struct {
	CompleteFunc func(ctx context.Context, system, human string) (string, error)

	mu    sync.Mutex
	calls []CompleteCall
}

func (c *Completer) Complete(ctx context.Context, system, human string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, CompleteCall{System: system, Human: human})
	c.mu.Unlock()

	if c.CompleteFunc != nil {
		return c.CompleteFunc(ctx, system, human)
	}
	return "", nil
}

// Calls returns a copy of the recorded calls.
func (c *Completer) Calls() []CompleteCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CompleteCall(nil), c.calls...)
}
