package extract

import (
	"context"
	"sync"

	"sport-backend/internal/llm"
)

type reply struct {
	text string
	err  error
}

// scriptedClient returns replies in order and repeats the last one.
type scriptedClient struct {
	mu       sync.Mutex
	replies  []reply
	calls    int
	requests []llm.Request
}

func (c *scriptedClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	c.mu.Lock()
	idx := c.calls
	c.calls++
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &llm.TransportError{Provider: "stub", Err: err}
	}
	if idx >= len(c.replies) {
		idx = len(c.replies) - 1
	}
	r := c.replies[idx]
	return r.text, r.err
}

func (c *scriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
