// Package executor runs one agent against one platform and resolves the
// attempt into a terminal TestResult. A live analysis call is tried first
// where an endpoint exists; on failure the run degrades to a locally
// simulated computation instead of failing outright. Failures of any kind
// are converted to failed results at this boundary and never propagate.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mhollis/agentbench/internal/audit"
	"github.com/mhollis/agentbench/internal/config"
	"github.com/mhollis/agentbench/internal/logger"
	"github.com/mhollis/agentbench/internal/models"
)

// Execution types mirrored into the audit log.
const (
	executionLive      = audit.ExecutionLive
	executionSimulated = audit.ExecutionSimulated
)

// Request identifies one agent/platform execution.
type Request struct {
	Agent    models.Agent
	Platform models.Platform
	UserID   string

	// DisableFallback makes a failed live call terminal instead of
	// degrading to the simulated path.
	DisableFallback bool
}

// envelope is the normalized result of one strategy attempt.
type envelope struct {
	confidence       float64
	insights         []models.Insight
	recommendations  []string
	actionsExecuted  int
	recordsProcessed int
	securityScore    int
	riskLevel        string
	executionType    string
}

// outcome is the tagged result of one strategy evaluation. Strategies
// report failure through the error field rather than panicking or throwing;
// fatal failures stop the chain, non-fatal ones fall through to the next
// strategy.
type outcome struct {
	env   *envelope
	err   error
	fatal bool
}

// strategy attempts to produce a result envelope for a request.
type strategy func(ctx context.Context, req Request, records []Record) outcome

// AuditSink receives one entry per terminal execution. Writes are
// best-effort: a sink error is logged, never surfaced to the run.
type AuditSink interface {
	RecordExecution(ctx context.Context, e *audit.Entry) error
}

// Params configures an Executor.
type Params struct {
	// Invokers maps live platforms to their analysis endpoints. Platforms
	// without an invoker use the simulated path only.
	Invokers map[models.Platform]Invoker

	// Records supplies the analysis input sample.
	Records RecordSource

	// Simulation holds the per-platform constant tables.
	Simulation config.SimulationConfig

	// SampleSize bounds the record sample per run. Values outside
	// [1, config.MaxSampleSize] are clamped.
	SampleSize int

	// DisableFallback applies the fallback switch to every request.
	DisableFallback bool

	// Audit receives per-execution log entries. Optional.
	Audit AuditSink

	// Log receives execution progress. Optional.
	Log *logger.ConsoleLogger
}

// Executor resolves agent/platform requests into terminal TestResults.
type Executor struct {
	invokers        map[models.Platform]Invoker
	records         RecordSource
	sim             config.SimulationConfig
	sampleSize      int
	disableFallback bool
	audit           AuditSink
	log             *logger.ConsoleLogger
}

// New creates an Executor.
func New(p Params) *Executor {
	sampleSize := p.SampleSize
	if sampleSize <= 0 {
		sampleSize = 5
	}
	if sampleSize > config.MaxSampleSize {
		sampleSize = config.MaxSampleSize
	}
	log := p.Log
	if log == nil {
		log = logger.NewConsoleLogger(nil, "")
	}
	return &Executor{
		invokers:        p.Invokers,
		records:         p.Records,
		sim:             p.Simulation,
		sampleSize:      sampleSize,
		disableFallback: p.DisableFallback,
		audit:           p.Audit,
		log:             log,
	}
}

// Execute runs one agent against one platform and always returns a terminal
// result: completed with a populated envelope, or failed with confidence 0,
// high risk, and the underlying error message.
func (e *Executor) Execute(ctx context.Context, req Request) models.TestResult {
	start := time.Now()

	records, err := e.sourceRecords(ctx, req.Platform)
	if err != nil {
		return e.fail(ctx, req, start, "", err)
	}

	env, err := e.run(ctx, req, records)
	if err != nil {
		executionType := ""
		if errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrLiveCallFailed) {
			executionType = executionLive
		}
		return e.fail(ctx, req, start, executionType, err)
	}

	result := models.TestResult{
		AgentID:          req.Agent.ID,
		Platform:         req.Platform,
		Status:           models.RunCompleted,
		Confidence:       clampConfidence(env.confidence),
		RecordsProcessed: env.recordsProcessed,
		ActionsExecuted:  env.actionsExecuted,
		ExecutionTimeMs:  time.Since(start).Milliseconds(),
		Insights:         env.insights,
		Recommendations:  env.recommendations,
		SecurityScore:    env.securityScore,
		RiskLevel:        env.riskLevel,
		Timestamp:        time.Now().UTC(),
	}

	e.recordAudit(ctx, req, result, env.executionType, records)
	return result
}

// run evaluates the ordered strategy list for the request. The chain is a
// flat walk over tagged outcomes: a success returns immediately, a fatal
// failure stops the chain, a non-fatal failure falls through.
func (e *Executor) run(ctx context.Context, req Request, records []Record) (*envelope, error) {
	var lastErr error

	for _, s := range e.strategiesFor(req.Platform) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}

		out := s(ctx, req, records)
		if out.err == nil && out.env != nil {
			return out.env, nil
		}
		if out.err != nil {
			lastErr = out.err
			e.log.LogDebug(fmt.Sprintf("strategy failed for %s on %s: %v", req.Agent.ID, req.Platform, out.err))
			if out.fatal {
				return nil, out.err
			}
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no strategy produced a result for %s on %s", req.Agent.ID, req.Platform)
	}
	return nil, lastErr
}

// strategiesFor returns the ordered strategy list for a platform: live
// platforms try the external endpoint before simulating, the native
// platform simulates directly.
func (e *Executor) strategiesFor(p models.Platform) []strategy {
	if p.Live() {
		return []strategy{e.tryLiveCall, e.trySimulated}
	}
	return []strategy{e.trySimulated}
}

// tryLiveCall invokes the platform's analysis endpoint and normalizes its
// response. Connectivity failures are non-fatal (the simulated path takes
// over) unless fallback is disabled; an authorization-required signal is
// always fatal and is never simulated around.
func (e *Executor) tryLiveCall(ctx context.Context, req Request, records []Record) outcome {
	inv, ok := e.invokers[req.Platform]
	if !ok || inv == nil {
		// No endpoint bound; not an error, the next strategy applies.
		return outcome{}
	}

	fatalOnFailure := e.disableFallback || req.DisableFallback

	resp, err := inv.InvokeAgent(ctx, req.Agent.BasePrototype, req.UserID, req.Platform)
	if err != nil {
		return outcome{err: fmt.Errorf("%w: %v", ErrLiveCallFailed, err), fatal: fatalOnFailure}
	}
	if resp.RequiresAuth {
		return outcome{err: fmt.Errorf("%w for %s", ErrAuthRequired, req.Platform), fatal: true}
	}
	if resp.Error != "" {
		return outcome{err: fmt.Errorf("%w: %s", ErrLiveCallFailed, resp.Error), fatal: fatalOnFailure}
	}

	confidence := e.sim.ConfidenceFor(req.Platform, req.Agent.BasePrototype)
	if resp.Confidence != nil {
		confidence = *resp.Confidence
	}

	insights := resp.Insights
	if len(insights) == 0 {
		// Parse failures degrade to an empty insight list; the run
		// still completes with the scalar fields intact.
		insights = ParseAnalysis(resp.Analysis)
	}

	// An absent record count means the endpoint did not report one; a
	// present zero is an honest analysis-only run and is kept as-is.
	recordsProcessed := len(records)
	if resp.RecordCount != nil {
		recordsProcessed = *resp.RecordCount
	}

	return outcome{env: &envelope{
		confidence:       confidence,
		insights:         insights,
		recommendations:  resp.Recommendations,
		actionsExecuted:  resp.ActionsExecuted,
		recordsProcessed: recordsProcessed,
		securityScore:    e.sim.SecurityScoreFor(req.Platform),
		riskLevel:        models.RiskLow,
		executionType:    executionLive,
	}}
}

// trySimulated runs the local simulated computation for the agent's
// prototype. It fails only for an unknown prototype.
func (e *Executor) trySimulated(_ context.Context, req Request, records []Record) outcome {
	switch req.Agent.BasePrototype {
	case models.PrototypeSentiment:
		return outcome{env: e.simulateSentiment(req, records)}
	case models.PrototypeChurn:
		return outcome{env: e.simulateChurn(req, records)}
	case models.PrototypeSegmentation:
		return outcome{env: e.simulateSegmentation(req, records)}
	}
	return outcome{err: fmt.Errorf("no simulation for prototype %q", req.Agent.BasePrototype), fatal: true}
}

// fail resolves a request to a terminal failed result.
func (e *Executor) fail(ctx context.Context, req Request, start time.Time, executionType string, err error) models.TestResult {
	if executionType == "" {
		executionType = executionSimulated
	}

	result := models.TestResult{
		AgentID:         req.Agent.ID,
		Platform:        req.Platform,
		Status:          models.RunFailed,
		Confidence:      0,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		RiskLevel:       models.RiskHigh,
		Error:           err.Error(),
		Timestamp:       time.Now().UTC(),
	}

	e.recordAudit(ctx, req, result, executionType, nil)
	return result
}

// recordAudit writes the execution to the audit sink. Audit failures are
// logged and swallowed: the log is advisory, the result is authoritative.
func (e *Executor) recordAudit(ctx context.Context, req Request, result models.TestResult, executionType string, records []Record) {
	if e.audit == nil {
		return
	}

	// A timed-out run still gets audited.
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	entry := &audit.Entry{
		AgentID:       req.Agent.ID,
		Platform:      string(req.Platform),
		ExecutionType: executionType,
		Status:        result.Status,
		Confidence:    result.Confidence,
		DurationMs:    result.ExecutionTimeMs,
		ErrorMessage:  result.Error,
		InputSnapshot: map[string]any{
			"agent_type": req.Agent.BasePrototype,
			"user_id":    req.UserID,
			"records":    len(records),
		},
		OutputSnapshot: map[string]any{
			"insights":          len(result.Insights),
			"recommendations":   len(result.Recommendations),
			"records_processed": result.RecordsProcessed,
			"actions_executed":  result.ActionsExecuted,
			"security_score":    result.SecurityScore,
			"risk_level":        result.RiskLevel,
		},
	}

	if err := e.audit.RecordExecution(ctx, entry); err != nil {
		e.log.LogWarn(fmt.Sprintf("audit write failed for %s on %s: %v", req.Agent.ID, req.Platform, err))
	}
}

// clampConfidence bounds confidence to [0,1] so a misbehaving live endpoint
// cannot violate the completed-result invariant.
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
