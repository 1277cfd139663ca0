// Package completion streams chat completions from an OpenAI-compatible
// endpoint as a channel of text fragments.
package completion

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded indicates the provider rejected the call with HTTP 429.
	ErrQuotaExceeded = errors.New("completion quota exceeded")
	// ErrEmptyStream indicates the stream ended without a single choice.
	ErrEmptyStream = errors.New("completion stream returned no choices")
	// ErrIncompleteStream indicates the stream ended before the model
	// reported a finish reason.
	ErrIncompleteStream = errors.New("completion stream ended before the model finished")
)

// Request is one review invocation: the rendered instructions go out with the
// system role, the labelled document with the user role.
type Request struct {
	System string
	User   string
}

// Fragment is one piece of streamed output. A fragment with a non-nil Err is
// always the last one sent before the channel closes.
type Fragment struct {
	Text string
	Err  error
}

type Streamer interface {
	// Stream starts a completion. Errors that happen before the first byte
	// is received are returned directly; later failures arrive as a final
	// Fragment with Err set. The channel is closed when the stream ends.
	Stream(ctx context.Context, req Request) (<-chan Fragment, error)
}
