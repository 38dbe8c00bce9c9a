package models

import "time"

// Execution status constants for a single agent/platform run.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Risk level constants attached to a result envelope.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Insight is one opaque analysis record produced by an agent run. The engine
// never interprets insight contents; it only counts and carries them.
type Insight map[string]any

// TestResult is the durable record of one agent/platform execution attempt.
//
// Invariants: a completed result has Confidence in [0,1] and an empty Error;
// a failed result has Confidence 0 and a populated Error. RecordsProcessed
// of zero is valid for a completed analysis-only run.
type TestResult struct {
	AgentID          string    `json:"agent_id"`
	Platform         Platform  `json:"platform"`
	Status           string    `json:"status"`
	Confidence       float64   `json:"confidence"`
	RecordsProcessed int       `json:"records_processed"`
	ActionsExecuted  int       `json:"actions_executed"`
	ExecutionTimeMs  int64     `json:"execution_time_ms"`
	Insights         []Insight `json:"insights"`
	Recommendations  []string  `json:"recommendations"`
	SecurityScore    int       `json:"security_score"`
	RiskLevel        string    `json:"risk_level"`
	Error            string    `json:"error,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Terminal reports whether the result has reached a final state.
func (r TestResult) Terminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}

// ResultSet is the ordered accumulation of test results. Insertion order is
// completion order, which drives the "recent executions" view. At most one
// current result exists per (agent, platform) pair.
type ResultSet []TestResult

// Upsert returns a new set with r as the sole current result for its
// (agent, platform) pair: any prior result for the pair is filtered out and
// r is appended, preserving the order of unrelated results.
func (rs ResultSet) Upsert(r TestResult) ResultSet {
	out := make(ResultSet, 0, len(rs)+1)
	for _, existing := range rs {
		if existing.AgentID == r.AgentID && existing.Platform == r.Platform {
			continue
		}
		out = append(out, existing)
	}
	return append(out, r)
}

// Find returns the current result for the (agent, platform) pair, if any.
func (rs ResultSet) Find(agentID string, platform Platform) (TestResult, bool) {
	for _, r := range rs {
		if r.AgentID == agentID && r.Platform == platform {
			return r, true
		}
	}
	return TestResult{}, false
}

// Clone returns a shallow copy of the set safe for read-only observers.
func (rs ResultSet) Clone() ResultSet {
	out := make(ResultSet, len(rs))
	copy(out, rs)
	return out
}
