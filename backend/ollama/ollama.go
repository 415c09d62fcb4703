// Package ollama is the reference Backend: HTTP POST to a local chat
// server, request/response in the Ollama /api/chat newline-delimited
// JSON shape. Grounded on the NDJSON streaming-parse pattern used by
// Ollama-compatible clients in the wider ecosystem, wired with the
// module's own retry/logging/telemetry stack.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/resilience"
)

// Config carries the connection settings for one Client.
type Config struct {
	APIBase string // e.g. "http://localhost:11434"
	Model   string
	Timeout time.Duration
}

// Client is the reference backend.Backend implementation.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     core.Logger
	telemetry  core.Telemetry
	retry      resilience.RetryConfig
}

// Option configures a Client at construction time.
type Option func(*Client)

func WithLogger(l core.Logger) Option       { return func(c *Client) { c.logger = l } }
func WithTelemetry(t core.Telemetry) Option { return func(c *Client) { c.telemetry = t } }
func WithRetry(r resilience.RetryConfig) Option {
	return func(c *Client) { c.retry = r }
}

// New constructs a Client. Defaults: 300s timeout if cfg.Timeout is
// zero, core.NoOpLogger/NoOpTelemetry, and the module's default retry
// policy for the initial connection.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = core.DefaultTimeout
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     core.NoOpLogger{},
		telemetry:  core.NoOpTelemetry{},
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	NumPredict  int           `json:"num_predict"`
	TopP        float64       `json:"top_p"`
	TopK        int           `json:"top_k"`
}

type wireResponse struct {
	Model           string       `json:"model"`
	CreatedAt       string       `json:"created_at"`
	Message         *wireMessage `json:"message"`
	Done            bool         `json:"done"`
	PromptEvalCount *int         `json:"prompt_eval_count"`
	EvalCount       *int         `json:"eval_count"`
}

// Stream implements backend.Backend.
func (c *Client) Stream(ctx context.Context, prompt core.Prompt) (backend.EventStream, error) {
	ctx, span := c.telemetry.StartSpan(ctx, "backend.ollama.Stream")

	req := wireRequest{
		Model:       c.cfg.Model,
		Stream:      true,
		Temperature: prompt.Temperature,
		NumPredict:  prompt.MaxTokens,
		TopP:        prompt.TopP,
		TopK:        prompt.TopK,
	}
	for _, flat := range prompt.Flatten() {
		req.Messages = append(req.Messages, wireMessage{Role: string(flat.Role), Content: flat.Text})
	}

	body, err := json.Marshal(req)
	if err != nil {
		span.End()
		return nil, core.Wrap(core.KindClient, "backend.ollama.Stream", "failed to encode request", err)
	}

	var resp *http.Response
	op := func(ctx context.Context) error {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/api/chat", bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		httpReq.Header.Set("Content-Type", "application/json")
		r, doErr := c.httpClient.Do(httpReq)
		if doErr != nil {
			return doErr
		}
		resp = r
		return nil
	}
	if err := resilience.Retry(ctx, c.retry, op); err != nil {
		span.RecordError(err)
		span.End()
		return nil, core.Wrap(core.KindClient, "backend.ollama.Stream", "failed to connect to backend", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errText := fmt.Sprintf("backend returned HTTP %d", resp.StatusCode)
		span.RecordError(fmt.Errorf(errText))
		span.End()
		return nil, core.New(core.KindClient, "backend.ollama.Stream", errText)
	}

	c.logger.Debug("stream started", map[string]interface{}{"model": c.cfg.Model})

	return &stream{
		reader:  bufio.NewReader(resp.Body),
		closer:  resp.Body,
		logger:  c.logger,
		span:    span,
	}, nil
}

type stream struct {
	reader *bufio.Reader
	closer io.Closer
	logger core.Logger
	span   core.Span
	done   bool
	closed bool
}

// Next implements backend.EventStream.
func (s *stream) Next(ctx context.Context) (core.StreamingEvent, error) {
	if s.done {
		return core.StreamingEvent{}, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return core.StreamingEvent{}, ctx.Err()
		default:
		}

		line, err := s.reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				// Response body ended without a terminal done=true line.
				s.done = true
				return core.StreamingEvent{}, core.New(core.KindParsing, "backend.ollama.stream.Next", "stream ended without a completion marker")
			}
			return core.StreamingEvent{}, core.Wrap(core.KindClient, "backend.ollama.stream.Next", "failed reading stream", err)
		}

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			if err == io.EOF {
				s.done = true
				return core.StreamingEvent{}, core.New(core.KindParsing, "backend.ollama.stream.Next", "stream ended without a completion marker")
			}
			continue
		}

		var wr wireResponse
		if jsonErr := json.Unmarshal(trimmed, &wr); jsonErr != nil {
			return core.StreamingEvent{}, core.Wrap(core.KindParsing, "backend.ollama.stream.Next", "malformed response line", jsonErr)
		}

		if wr.Done {
			s.done = true
			var usage *core.TokenUsage
			if wr.PromptEvalCount != nil || wr.EvalCount != nil {
				u := core.TokenUsage{}
				if wr.PromptEvalCount != nil {
					u.InputTokens = *wr.PromptEvalCount
				}
				if wr.EvalCount != nil {
					u.OutputTokens = *wr.EvalCount
				}
				usage = &u
			}
			return core.StreamingEvent{Kind: core.EventCompleted, Usage: usage}, nil
		}

		if wr.Message != nil && wr.Message.Content != "" {
			return core.StreamingEvent{Kind: core.EventOutputTextDelta, Delta: wr.Message.Content}, nil
		}
		// Empty delta line with no done marker: keep reading.
	}
}

// Close implements backend.EventStream.
func (s *stream) Close() {
	if s.closed {
		return
	}
	s.closed = true
	_ = s.closer.Close()
	s.span.End()
}
