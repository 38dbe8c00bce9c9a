// Package orchestrator drives agent executions across platforms. Every
// (agent, platform) pair moves pending -> running -> completed|failed, one
// pair at a time: platform calls are issued sequentially, never in
// parallel, so progress percentages advance monotonically and the shared
// result set has a single writer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mhollis/agentbench/internal/catalog"
	"github.com/mhollis/agentbench/internal/executor"
	"github.com/mhollis/agentbench/internal/logger"
	"github.com/mhollis/agentbench/internal/models"
	"github.com/mhollis/agentbench/internal/platform"
	"github.com/mhollis/agentbench/internal/results"
)

// Guard errors. These reject an orchestration request before any state is
// mutated; they are the only errors a drive returns.
var (
	// ErrNoUserContext rejects a run with no authenticated user.
	ErrNoUserContext = errors.New("no authenticated user context")

	// ErrUnknownAgent rejects a run referencing an agent id not in the
	// catalog.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrNoPlatformsConnected rejects a sweep when no platform is
	// currently connected.
	ErrNoPlatformsConnected = errors.New("no platforms connected")

	// ErrStopped reports a sweep cut short by the stop signal.
	ErrStopped = errors.New("sweep stopped")
)

// Pacer pauses between platform runs to keep interactive progress
// observably incremental. A nil Pacer means no pacing.
type Pacer func(ctx context.Context)

// DelayPacer returns a Pacer sleeping for d between runs.
func DelayPacer(d time.Duration) Pacer {
	if d <= 0 {
		return nil
	}
	return func(ctx context.Context) {
		select {
		case <-time.After(d):
		case <-ctx.Done():
		}
	}
}

// Progress is one progress observation during a drive.
type Progress struct {
	Completed int
	Total     int
	Percent   float64

	// CurrentOp labels the pair being executed.
	CurrentOp string
}

// Params configures an Orchestrator.
type Params struct {
	Catalog   *catalog.Catalog
	Executor  *executor.Executor
	Platforms *platform.Registry
	Results   *results.Manager

	// UserID is the authenticated context runs execute under.
	UserID string

	// Timeout bounds each platform call. Zero means no bound.
	Timeout time.Duration

	// Pacer runs between platform executions. Optional.
	Pacer Pacer

	// OnProgress observes progress after each pair resolves. Optional.
	OnProgress func(Progress)

	// Log receives drive progress. Optional.
	Log *logger.ConsoleLogger
}

// Orchestrator executes agents against platforms sequentially and records
// results through the results manager.
type Orchestrator struct {
	catalog    *catalog.Catalog
	exec       *executor.Executor
	platforms  *platform.Registry
	results    *results.Manager
	userID     string
	timeout    time.Duration
	pacer      Pacer
	onProgress func(Progress)
	log        *logger.ConsoleLogger

	mu       sync.Mutex
	stopped  bool
	inflight map[string]struct{}
}

// New creates an Orchestrator.
func New(p Params) *Orchestrator {
	log := p.Log
	if log == nil {
		log = logger.NewConsoleLogger(nil, "")
	}
	return &Orchestrator{
		catalog:    p.Catalog,
		exec:       p.Executor,
		platforms:  p.Platforms,
		results:    p.Results,
		userID:     p.UserID,
		timeout:    p.Timeout,
		pacer:      p.Pacer,
		onProgress: p.OnProgress,
		log:        log,
		inflight:   make(map[string]struct{}),
	}
}

// Stop signals a running sweep to finish its in-flight pair and start no
// further ones. Cooperative: nothing in flight is interrupted.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopped = true
}

// resetStop rearms the orchestrator for a new drive.
func (o *Orchestrator) resetStop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopped = false
}

func (o *Orchestrator) isStopped() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopped
}

func pairKey(agentID string, p models.Platform) string {
	return agentID + "/" + string(p)
}

func (o *Orchestrator) markInflight(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight[key] = struct{}{}
}

func (o *Orchestrator) clearInflight(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, key)
}

// InflightCount returns the number of pairs currently executing. With
// sequential drives this is 0 or 1; it exists for observers.
func (o *Orchestrator) InflightCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.inflight)
}

// RunAgent executes one agent across every platform in its eligible set,
// sequentially, and returns the terminal results in platform order.
// Guard violations reject the run before any state is mutated.
func (o *Orchestrator) RunAgent(ctx context.Context, agentID string) ([]models.TestResult, error) {
	if o.userID == "" {
		return nil, ErrNoUserContext
	}
	agent, ok := o.catalog.Get(agentID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, agentID)
	}

	o.resetStop()

	total := len(agent.EligiblePlatforms)
	out := make([]models.TestResult, 0, total)

	for i, p := range agent.EligiblePlatforms {
		if i > 0 {
			o.pace(ctx)
		}
		if o.isStopped() {
			break
		}

		result, err := o.executePair(ctx, agent, p)
		if err != nil {
			return out, err
		}
		out = append(out, result)

		o.reportProgress(len(out), total, fmt.Sprintf("Testing %s on %s", agent.ID, p))
	}

	return out, nil
}

// RunSweep executes every agent in the catalog across every platform that
// agent supports, in catalog order. The sweep is rejected outright when no
// platform is connected; a mid-sweep stop finishes the in-flight pair and
// returns the results gathered so far along with ErrStopped.
func (o *Orchestrator) RunSweep(ctx context.Context) ([]models.TestResult, error) {
	if o.userID == "" {
		return nil, ErrNoUserContext
	}
	if o.platforms != nil && o.platforms.ConnectedCount() == 0 {
		return nil, ErrNoPlatformsConnected
	}

	o.resetStop()

	total := o.catalog.PairCount()
	out := make([]models.TestResult, 0, total)

	for _, agent := range o.catalog.Agents() {
		for _, p := range agent.EligiblePlatforms {
			if len(out) > 0 {
				o.pace(ctx)
			}
			if o.isStopped() {
				return out, ErrStopped
			}

			result, err := o.executePair(ctx, agent, p)
			if err != nil {
				return out, err
			}
			out = append(out, result)

			o.reportProgress(len(out), total, fmt.Sprintf("Testing %s on %s", agent.ID, p))
		}
	}

	return out, nil
}

// executePair drives one (agent, platform) pair to a terminal state and
// records it. The running state is recorded before the platform call so
// observers see the pair in flight; the terminal result then supersedes it.
func (o *Orchestrator) executePair(ctx context.Context, agent models.Agent, p models.Platform) (models.TestResult, error) {
	key := pairKey(agent.ID, p)
	o.markInflight(key)
	defer o.clearInflight(key)

	o.log.LogRunStart(agent.ID, string(p))

	running := models.TestResult{
		AgentID:   agent.ID,
		Platform:  p,
		Status:    models.RunRunning,
		Timestamp: time.Now().UTC(),
	}
	if err := o.results.Upsert(running); err != nil {
		return models.TestResult{}, fmt.Errorf("record running state: %w", err)
	}

	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	result := o.exec.Execute(callCtx, executor.Request{
		Agent:    agent,
		Platform: p,
		UserID:   o.userID,
	})

	if err := o.results.Upsert(result); err != nil {
		return models.TestResult{}, fmt.Errorf("record terminal state: %w", err)
	}

	o.log.LogRunComplete(agent.ID, string(p), result.Status, result.Confidence, result.Error)
	return result, nil
}

// pace runs the configured pacer, if any.
func (o *Orchestrator) pace(ctx context.Context) {
	if o.pacer != nil {
		o.pacer(ctx)
	}
}

// reportProgress publishes progress to the logger and the observer.
func (o *Orchestrator) reportProgress(completed, total int, op string) {
	percent := 0.0
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}

	o.log.LogProgress(percent, op)
	if o.onProgress != nil {
		o.onProgress(Progress{
			Completed: completed,
			Total:     total,
			Percent:   percent,
			CurrentOp: op,
		})
	}
}
