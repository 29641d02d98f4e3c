// Package pipeline orchestrates one analytic request end to end: candidate
// generation, sanitization, structural validation, deterministic fallback,
// parameter binding, and bounded execution. At most one statement is ever
// bound and executed per request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantrail/quantrail-engine/pkg/adapters/datasource"
	"github.com/quantrail/quantrail-engine/pkg/llm"
	"github.com/quantrail/quantrail-engine/pkg/logging"
	"github.com/quantrail/quantrail-engine/pkg/schema"
	"github.com/quantrail/quantrail-engine/pkg/sqlgen"
)

// Options bound every execution the pipeline performs.
type Options struct {
	// MaxRows caps fetched rows per request. Clamped to
	// datasource.MaxQueryLimit.
	MaxRows int

	// Timeout is the wall-clock budget for the execute-and-fetch span.
	Timeout time.Duration

	// Dialect selects limit-clause syntax for fallback statements.
	Dialect sqlgen.Dialect

	// DateColumnPriority overrides the default date column ranking used by
	// fallback generation. Treated as configuration, not code.
	DateColumnPriority []string
}

// Request is one natural-language analytic request. MaxRows and
// TimeoutSeconds may tighten the configured limits but never exceed them.
type Request struct {
	Question       string `json:"question"`
	FromDate       string `json:"from_date,omitempty"`
	ToDate         string `json:"to_date,omitempty"`
	MaxRows        int    `json:"max_rows,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// Result carries the executed statement, its provenance, and the bounded
// result batch.
type Result struct {
	SQL          string                  `json:"sql"`
	UsedFallback bool                    `json:"used_fallback"`
	Warnings     []string                `json:"warnings,omitempty"`
	Batch        *datasource.ResultBatch `json:"batch"`
}

// Pipeline wires the generator, the catalog snapshot, and the executor into
// one synchronous request path.
type Pipeline struct {
	generator llm.SQLGenerator
	executor  datasource.QueryExecutor
	snapshot  *schema.Snapshot
	opts      Options
	logger    *zap.Logger
}

// New builds a pipeline. The snapshot must already be loaded and indexed.
func New(generator llm.SQLGenerator, executor datasource.QueryExecutor, snapshot *schema.Snapshot, opts Options, logger *zap.Logger) *Pipeline {
	if opts.MaxRows <= 0 || opts.MaxRows > datasource.MaxQueryLimit {
		opts.MaxRows = datasource.MaxQueryLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Dialect == "" {
		opts.Dialect = sqlgen.DialectPostgres
	}

	return &Pipeline{
		generator: generator,
		executor:  executor,
		snapshot:  snapshot,
		opts:      opts,
		logger:    logger,
	}
}

// Run executes one request. Failures traceable to the untrusted generator
// are recovered silently through the fallback; failures after a statement is
// judged valid are surfaced with the statement text and parameter names
// attached, and never retried.
func (p *Pipeline) Run(ctx context.Context, req *Request) (*Result, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, &Error{Kind: ErrInternal, Message: "question must not be empty"}
	}

	logger := p.logger.With(zap.String("requestID", uuid.NewString()))

	qc := BuildQueryContext(p.snapshot, req)

	maxRows := req.MaxRows
	if maxRows <= 0 || maxRows > p.opts.MaxRows {
		maxRows = p.opts.MaxRows
	}

	timeout := p.opts.Timeout
	if req.TimeoutSeconds > 0 {
		if d := time.Duration(req.TimeoutSeconds) * time.Second; d < timeout {
			timeout = d
		}
	}

	finalSQL, usedFallback := p.produce(ctx, logger, qc, maxRows)

	available := map[string]any{}
	if req.FromDate != "" {
		available["from_date"] = req.FromDate
	}
	if req.ToDate != "" {
		available["to_date"] = req.ToDate
	}

	bound, err := sqlgen.Bind(finalSQL, available)
	if err != nil {
		var mismatch *sqlgen.BindMismatchError
		if errors.As(err, &mismatch) {
			return nil, &Error{
				Kind:       ErrBindMismatch,
				Message:    err.Error(),
				Statement:  finalSQL,
				ParamNames: mismatch.Missing,
				Cause:      err,
			}
		}
		return nil, &Error{Kind: ErrInternal, Message: err.Error(), Statement: finalSQL, Cause: err}
	}

	if hits := sqlgen.CheckBoundValues(bound); len(hits) > 0 {
		names := make([]string, len(hits))
		for i, h := range hits {
			names[i] = h.ParamName
		}
		return nil, &Error{
			Kind:       ErrUnsafeParameter,
			Message:    fmt.Sprintf("parameter values rejected by injection check: %s", strings.Join(names, ", ")),
			Statement:  bound.SQL,
			ParamNames: names,
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	batch, err := p.executor.Query(execCtx, bound.SQL, bound.Values, maxRows)
	if err != nil {
		kind := execErrorKind(err)
		logger.Error("execution failed",
			zap.String("kind", string(kind)),
			zap.String("statement", logging.SanitizeStatement(bound.SQL)),
			zap.Strings("params", bound.ParamNames),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, &Error{
			Kind:       kind,
			Message:    "statement execution failed",
			Statement:  bound.SQL,
			ParamNames: bound.ParamNames,
			Cause:      err,
		}
	}

	logger.Info("request executed",
		zap.Bool("usedFallback", usedFallback),
		zap.Int("rowCount", batch.RowCount),
		zap.Bool("truncated", batch.Truncated),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		SQL:          bound.SQL,
		UsedFallback: usedFallback,
		Warnings:     bound.Warnings,
		Batch:        batch,
	}, nil
}

// produce runs the candidate path and substitutes the deterministic fallback
// whenever the producer fails or the candidate is rejected. Rejections are
// logged with their reason but never surfaced to the caller.
func (p *Pipeline) produce(ctx context.Context, logger *zap.Logger, qc *sqlgen.QueryContext, maxRows int) (string, bool) {
	fallbackOpts := sqlgen.FallbackOptions{
		DateColumnPriority: p.opts.DateColumnPriority,
		RowLimit:           maxRows,
		Dialect:            p.opts.Dialect,
	}

	raw, err := p.generator.GenerateSQL(ctx, qc)
	if err != nil {
		logger.Warn("candidate generation failed, using fallback",
			zap.String("error", logging.SanitizeError(err)),
		)
		return sqlgen.Fallback(qc, fallbackOpts), true
	}

	candidate := sqlgen.Sanitize(raw)
	verdict := sqlgen.Validate(candidate)
	if !verdict.Verdict.OK() {
		logger.Warn("candidate rejected, using fallback",
			zap.String("verdict", verdict.Verdict.String()),
			zap.String("reason", verdict.Reason),
			zap.String("candidate", logging.SanitizeStatement(candidate)),
		)
		return sqlgen.Fallback(qc, fallbackOpts), true
	}

	return candidate, false
}
