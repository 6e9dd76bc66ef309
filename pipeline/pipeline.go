package pipeline

// Package pipeline runs the report automation once: guard, analysis,
// persistence and notification, strictly in that order.

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/perfgo/perfreport/model"
	"github.com/perfgo/perfreport/report"
	"github.com/rs/zerolog"
)

// State is where a run ended up.
type State string

const (
	StateGuarded        State = "guarded"
	StateFailedNoResult State = "failed_no_result"
	StateNotified       State = "notified"
	StateNotifyFailed   State = "notify_failed"
	StateSkipNotify     State = "skip_notify"
)

// Guard reports whether an engine session is already active.
type Guard interface {
	Check() (active bool, reason string)
}

// Analyzer runs the analysis engine.
type Analyzer interface {
	Run(ctx context.Context) (*model.AnalysisResult, error)
}

// Persister stores the text summary.
type Persister interface {
	Persist(text string) (string, error)
}

// Sender delivers the HTML report.
type Sender interface {
	Send(ctx context.Context, html string) bool
}

// Outcome describes a finished run.
type Outcome struct {
	ID          string
	State       State
	Result      *model.AnalysisResult
	SummaryPath string
	HTML        string
	Err         error
}

// OK reports whether the run produced an analysis result. Notification
// problems do not affect it.
func (o *Outcome) OK() bool {
	return o.State != StateGuarded && o.State != StateFailedNoResult
}

// Pipeline wires the stages together. Notifier may be nil to disable delivery.
type Pipeline struct {
	Logger    zerolog.Logger
	Out       io.Writer
	Guard     Guard
	Analyzer  Analyzer
	Persister Persister
	Notifier  Sender
}

// Rule separates sections of the console output.
const Rule = "================================================================================"

// Run executes the pipeline once.
func (p *Pipeline) Run(ctx context.Context) *Outcome {
	out := &Outcome{ID: uuid.NewString()}
	logger := p.Logger.With().Str("run", out.ID[:8]).Logger()

	if active, reason := p.Guard.Check(); active {
		logger.Warn().Str("reason", reason).Msg("Detected active engine session. Run this command outside of it, directly from a terminal.")
		out.State = StateGuarded
		return out
	}

	logger.Info().Msg("Starting performance analysis")
	result, err := p.Analyzer.Run(ctx)
	if err != nil || result.Empty() {
		if err == nil {
			logger.Error().Msg("Analysis produced no output")
		}
		out.State = StateFailedNoResult
		out.Err = err
		return out
	}
	out.Result = result

	p.printSummary(result)

	if strings.TrimSpace(result.Stdout) != "" {
		path, err := p.Persister.Persist(result.Stdout)
		if err != nil {
			logger.Warn().Err(err).Msg("Continuing without a saved summary")
		}
		out.SummaryPath = path
	} else {
		logger.Warn().Msg("Engine wrote no summary to stdout, nothing to save")
	}

	content := result.Stdout
	switch {
	case !result.ReportPresent:
		logger.Warn().Msg("HTML report not generated, falling back to stdout")
	case strings.TrimSpace(result.Report) == "":
		logger.Warn().Msg("HTML report is empty, falling back to stdout")
	default:
		content = result.Report
	}
	if strings.TrimSpace(content) == "" {
		logger.Warn().Msg("No content to format, email not sent")
		out.State = StateSkipNotify
		return out
	}
	if !report.IsHTML(content) {
		logger.Warn().Msg("Output doesn't appear to be HTML, wrapping in basic HTML")
	}
	out.HTML = report.EnsureHTML(content)

	if p.Notifier == nil {
		logger.Info().Msg("Email delivery disabled")
		out.State = StateSkipNotify
		return out
	}
	if p.Notifier.Send(ctx, out.HTML) {
		out.State = StateNotified
	} else {
		out.State = StateNotifyFailed
	}

	logger.Info().Str("state", string(out.State)).Msg("Analysis complete")
	return out
}

func (p *Pipeline) printSummary(result *model.AnalysisResult) {
	if p.Out == nil {
		return
	}
	fmt.Fprintf(p.Out, "\n%s\nANALYSIS SUMMARY\n%s\n", Rule, Rule)
	fmt.Fprintln(p.Out, strings.TrimRight(result.Stdout, "\n"))
	fmt.Fprintln(p.Out, Rule)
}
