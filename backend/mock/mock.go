// Package mock provides a scriptable backend.Backend for strategy and
// MARS tests, with no network I/O.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
)

// Response is one scripted reply: either a single text blob (delivered
// as one delta) or an explicit error.
type Response struct {
	Text  string
	Usage *core.TokenUsage
	Err   error
}

// Backend replays a fixed, ordered list of Responses, one per call to
// Stream; calls past the end of the list repeat the last Response.
type Backend struct {
	mu        sync.Mutex
	responses []Response
	calls     int
	Prompts   []core.Prompt // every prompt seen, for assertions
}

// New returns a Backend that replays responses in order.
func New(responses ...Response) *Backend {
	return &Backend{responses: responses}
}

func (b *Backend) Stream(ctx context.Context, prompt core.Prompt) (backend.EventStream, error) {
	b.mu.Lock()
	b.Prompts = append(b.Prompts, prompt)
	idx := b.calls
	if idx >= len(b.responses) {
		idx = len(b.responses) - 1
	}
	b.calls++
	b.mu.Unlock()

	if idx < 0 {
		return nil, core.New(core.KindClient, "backend.mock.Stream", "no scripted responses")
	}
	resp := b.responses[idx]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &stream{resp: resp}, nil
}

type stream struct {
	resp      Response
	delivered bool
	completed bool
}

func (s *stream) Next(ctx context.Context) (core.StreamingEvent, error) {
	if !s.delivered {
		s.delivered = true
		if s.resp.Text != "" {
			return core.StreamingEvent{Kind: core.EventOutputTextDelta, Delta: s.resp.Text}, nil
		}
	}
	if !s.completed {
		s.completed = true
		return core.StreamingEvent{Kind: core.EventCompleted, Usage: s.resp.Usage}, nil
	}
	return core.StreamingEvent{}, io.EOF
}

func (s *stream) Close() {}
