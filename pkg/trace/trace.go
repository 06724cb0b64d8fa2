// Package trace is the instrumentation boundary around pipeline stages.
//
// A stage runs exactly once whatever the tracer does: start and end failures
// are reported to the tracer's failure hook and never reach the caller.
package trace

import (
	"context"
	"fmt"
)

// Run types, mirroring the kinds of calls the pipeline makes.
const (
	RunLLM       = "llm"
	RunRetriever = "retriever"
	RunChain     = "chain"
	RunTool      = "tool"
)

// Tracer opens runs around stage calls.
type Tracer interface {
	Start(ctx context.Context, name, runType string) (Run, error)
}

// Run is an open trace span.
type Run interface {
	End(output string, err error) error
}

// FailureReporter receives tracer failures out of band.
type FailureReporter interface {
	ReportFailure(name string, err error)
}

// Call runs fn inside a traced run. The result and error of fn are returned
// unchanged.
func Call[T any](ctx context.Context, tracer Tracer, name, runType string, fn func(context.Context) (T, error)) (T, error) {
	if tracer == nil {
		return fn(ctx)
	}

	run, err := tracer.Start(ctx, name, runType)
	if err != nil {
		report(tracer, name, fmt.Errorf("start run: %w", err))
		run = nil
	}

	result, callErr := fn(ctx)

	if run != nil {
		if err := run.End(summarize(result), callErr); err != nil {
			report(tracer, name, fmt.Errorf("end run: %w", err))
		}
	}

	return result, callErr
}

func report(tracer Tracer, name string, err error) {
	if r, ok := tracer.(FailureReporter); ok {
		r.ReportFailure(name, err)
	}
}

const maxSummary = 256

func summarize(v any) string {
	s := fmt.Sprintf("%v", v)
	if len(s) > maxSummary {
		return s[:maxSummary] + "..."
	}
	return s
}
