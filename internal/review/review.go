// Package review drives model invocations for a criteria selection against
// one document and forwards the streamed output to a sink.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/document-compliance-api/internal/completion"
	"github.com/BerylCAtieno/document-compliance-api/internal/prompt"
	"github.com/BerylCAtieno/document-compliance-api/internal/utils"
)

// ErrMissingInput is returned before any model call when the document text
// or the criteria selection is empty.
var ErrMissingInput = errors.New("missing input: a document and at least one criterion are required")

type Mode string

const (
	// ModePerCriterion issues one streamed request per criterion, in order.
	ModePerCriterion Mode = "per_criterion"
	// ModeBatch issues a single request covering every criterion.
	ModeBatch Mode = "batch"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePerCriterion, ModeBatch:
		return m, nil
	default:
		return "", fmt.Errorf("unknown review mode %q", s)
	}
}

type Request struct {
	DocumentText string
	Criteria     []string
	Mode         Mode
}

// Result is the accumulated output of one invocation.
type Result struct {
	Index    int      `json:"index"`
	Criteria []string `json:"criteria"`
	Output   string   `json:"output"`
	Err      error    `json:"-"`
}

func (r Result) Failed() bool { return r.Err != nil }

type Report struct {
	Mode    Mode     `json:"mode"`
	Results []Result `json:"results"`
}

// Failed lists the results whose invocation did not complete.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

type Orchestrator struct {
	streamer completion.Streamer
	template prompt.Template
	logger   *utils.Logger
}

func NewOrchestrator(streamer completion.Streamer, template prompt.Template, logger *utils.Logger) *Orchestrator {
	return &Orchestrator{
		streamer: streamer,
		template: template,
		logger:   logger,
	}
}

// Run validates req and performs the invocations sequentially. Invocation
// failures are recorded on their Result and do not stop later criteria; Run
// only returns an error for invalid input or when ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, req Request, sink Sink) (*Report, error) {
	if strings.TrimSpace(req.DocumentText) == "" || len(req.Criteria) == 0 {
		return nil, ErrMissingInput
	}
	if sink == nil {
		sink = Discard
	}

	mode := req.Mode
	if mode == "" {
		mode = ModePerCriterion
	}

	var groups [][]string
	switch mode {
	case ModePerCriterion:
		for _, c := range req.Criteria {
			groups = append(groups, []string{c})
		}
	case ModeBatch:
		groups = [][]string{req.Criteria}
	default:
		return nil, fmt.Errorf("unknown review mode %q", mode)
	}

	user := prompt.UserContent(req.DocumentText)
	report := &Report{Mode: mode, Results: make([]Result, 0, len(groups))}

	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := o.invoke(ctx, i, group, user, sink)
		report.Results = append(report.Results, res)

		if res.Err != nil && ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	o.logger.Info("Review finished",
		"mode", mode,
		"invocations", len(report.Results),
		"failed", len(report.Failed()))

	return report, nil
}

func (o *Orchestrator) invoke(ctx context.Context, index int, criteria []string, user string, sink Sink) Result {
	res := Result{Index: index, Criteria: criteria}
	sink(Event{Kind: EventStart, Index: index, Criteria: criteria})

	start := time.Now()
	fragments, err := o.streamer.Stream(ctx, completion.Request{
		System: prompt.Build(o.template, criteria),
		User:   user,
	})
	if err != nil {
		return o.fail(res, err, sink)
	}

	var buf strings.Builder
	for f := range fragments {
		if f.Err != nil {
			res.Output = buf.String()
			return o.fail(res, f.Err, sink)
		}
		buf.WriteString(f.Text)
		sink(Event{Kind: EventFragment, Index: index, Criteria: criteria, Text: f.Text})
	}
	// A cancelled context closes the channel early without an error fragment.
	if err := ctx.Err(); err != nil {
		res.Output = buf.String()
		return o.fail(res, err, sink)
	}

	res.Output = buf.String()
	sink(Event{Kind: EventDone, Index: index, Criteria: criteria, Text: res.Output})

	o.logger.Debug("Invocation complete",
		"index", index,
		"criteria", len(criteria),
		"output_length", len(res.Output),
		"elapsed_ms", time.Since(start).Milliseconds())

	return res
}

func (o *Orchestrator) fail(res Result, err error, sink Sink) Result {
	res.Err = err
	o.logger.Error("Invocation failed", "index", res.Index, "criteria", res.Criteria, "error", err)
	sink(Event{Kind: EventFailed, Index: res.Index, Criteria: res.Criteria, Text: res.Output, Err: err})
	return res
}
