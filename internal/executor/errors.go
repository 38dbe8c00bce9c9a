package executor

import "errors"

// Sentinel errors for the per-pair failure taxonomy. Every failure is
// resolved at the executor boundary into a terminal TestResult; these
// sentinels let callers distinguish failure classes with errors.Is.
var (
	// ErrAuthRequired marks a live platform reporting that the user must
	// (re)authorize the integration. Never retried and never simulated
	// around: the pair fails with a distinguishing message.
	ErrAuthRequired = errors.New("platform authorization required")

	// ErrNoRecords marks a run with zero analyzable records anywhere,
	// including the generic local pool.
	ErrNoRecords = errors.New("no test subjects available")

	// ErrLiveCallFailed marks an unreachable or erroring live endpoint.
	// It is terminal only when fallback is disabled.
	ErrLiveCallFailed = errors.New("live platform call failed")

	// ErrTimeout marks a platform call that exceeded its deadline.
	ErrTimeout = errors.New("execution timed out")
)
