package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/BerylCAtieno/document-compliance-api/internal/utils"
	"github.com/sashabaranov/go-openai"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
}

type openAIStreamer struct {
	client *openai.Client
	cfg    Config
	logger *utils.Logger
}

func NewOpenAIStreamer(cfg Config, logger *utils.Logger) Streamer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	// Streams are bounded by the request context, not a client timeout.
	clientCfg.HTTPClient = &http.Client{}

	return &openAIStreamer{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger,
	}
}

// requestTemperature keeps a zero setting on the wire. The request field is
// omitempty, so a literal 0 would be dropped and the provider default used.
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func (s *openAIStreamer) Stream(ctx context.Context, req Request) (<-chan Fragment, error) {
	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: requestTemperature(s.cfg.Temperature),
		Stream:      true,
	})
	if err != nil {
		s.logger.Error("Failed to start completion stream", "error", err, "model", s.cfg.Model)
		return nil, mapError(err)
	}

	out := make(chan Fragment)
	go func() {
		defer close(out)
		defer stream.Close()

		start := time.Now()
		chunks, sawChoice, finished := 0, false, false
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				if !sawChoice {
					send(ctx, out, Fragment{Err: ErrEmptyStream})
					return
				}
				// A body that ends early also surfaces as io.EOF.
				if !finished {
					s.logger.Error("Completion stream cut off", "model", s.cfg.Model, "chunks", chunks)
					send(ctx, out, Fragment{Err: ErrIncompleteStream})
					return
				}
				s.logger.Debug("Completion stream finished",
					"model", s.cfg.Model,
					"chunks", chunks,
					"elapsed_ms", time.Since(start).Milliseconds())
				return
			}
			if err != nil {
				s.logger.Error("Completion stream failed", "error", err, "chunks", chunks)
				send(ctx, out, Fragment{Err: mapError(err)})
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			sawChoice = true
			if resp.Choices[0].FinishReason != "" {
				finished = true
			}
			content := resp.Choices[0].Delta.Content
			if content == "" {
				continue
			}
			chunks++
			if !send(ctx, out, Fragment{Text: content}) {
				return
			}
		}
	}()

	return out, nil
}

// send delivers f unless ctx is done first.
func send(ctx context.Context, out chan<- Fragment, f Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return fmt.Errorf("completion stream: %w", err)
}
