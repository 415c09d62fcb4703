// Package backend defines the uniform streaming contract every LLM
// backend implements: Stream(prompt) yields a finite, not-restartable,
// strictly-ordered sequence of StreamingEvents or a terminal error.
package backend

import (
	"context"
	"io"

	"github.com/optillm-go/optillm/core"
)

// Backend is a token-streaming LLM backend handle.
type Backend interface {
	// Stream begins a single streaming completion call. The returned
	// EventStream must be closed by the caller; closing before the
	// terminal Completed event releases the backend's socket/buffers.
	Stream(ctx context.Context, prompt core.Prompt) (EventStream, error)
}

// EventStream is a pull iterator over StreamingEvents. Next returns
// io.EOF once the terminal Completed event has been delivered and
// consumed; any other error terminates the sequence without a Completed
// event.
type EventStream interface {
	Next(ctx context.Context) (core.StreamingEvent, error)
	Close()
}

// Collect drains a stream to completion, concatenating every delta and
// returning the final usage (nil if the backend never reported one).
// Used by the simple single-call strategies that don't need incremental
// deltas.
func Collect(ctx context.Context, s EventStream) (text string, usage *core.TokenUsage, err error) {
	defer s.Close()
	for {
		ev, nextErr := s.Next(ctx)
		if nextErr != nil {
			if nextErr == io.EOF {
				return text, usage, nil
			}
			return text, usage, nextErr
		}
		switch ev.Kind {
		case core.EventOutputTextDelta:
			text += ev.Delta
		case core.EventCompleted:
			usage = ev.Usage
			return text, usage, nil
		}
	}
}
