package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/agentbench/internal/audit"
	"github.com/mhollis/agentbench/internal/models"
)

// stubInvoker returns a canned response or error for every call.
type stubInvoker struct {
	resp  *InvokeResponse
	err   error
	calls int
}

func (si *stubInvoker) InvokeAgent(_ context.Context, _, _ string, _ models.Platform) (*InvokeResponse, error) {
	si.calls++
	return si.resp, si.err
}

// memorySink collects audit entries in memory.
type memorySink struct {
	entries []*audit.Entry
}

func (ms *memorySink) RecordExecution(_ context.Context, e *audit.Entry) error {
	ms.entries = append(ms.entries, e)
	return nil
}

func sentimentAgent(p models.Platform) models.Agent {
	return models.Agent{
		ID:                fmt.Sprintf("sentiment-%s", p),
		BasePrototype:     models.PrototypeSentiment,
		EligiblePlatforms: []models.Platform{p},
	}
}

func churnAgent(p models.Platform) models.Agent {
	return models.Agent{
		ID:                fmt.Sprintf("churn-%s", p),
		BasePrototype:     models.PrototypeChurn,
		EligiblePlatforms: []models.Platform{p},
	}
}

func TestSentimentOnNativeWithFiveRecords(t *testing.T) {
	sink := &memorySink{}
	e := New(Params{
		Records:    NewSeededSource(5),
		SampleSize: 5,
		Audit:      sink,
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformNative),
		Platform: models.PlatformNative,
		UserID:   "user-1",
	})

	assert.Equal(t, models.RunCompleted, result.Status)
	assert.Equal(t, 5, result.RecordsProcessed)
	assert.Len(t, result.Insights, 5)
	assert.Empty(t, result.Error)
	assert.Equal(t, 0.88, result.Confidence)
	assert.Equal(t, 85, result.SecurityScore)
	assert.GreaterOrEqual(t, result.ExecutionTimeMs, int64(0))

	// One recommendation references the positive count, one the negative.
	require.Len(t, result.Recommendations, 2)
	assert.Contains(t, result.Recommendations[0], "positive")
	assert.Contains(t, result.Recommendations[0], "3")
	assert.Contains(t, result.Recommendations[1], "negative")
	assert.Contains(t, result.Recommendations[1], "1")

	require.Len(t, sink.entries, 1)
	assert.Equal(t, audit.ExecutionSimulated, sink.entries[0].ExecutionType)
	assert.Equal(t, models.RunCompleted, sink.entries[0].Status)
}

func TestSentimentDistributionMixedAtSmallSamples(t *testing.T) {
	e := New(Params{
		Records:    NewSeededSource(5),
		SampleSize: 5,
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformNative),
		Platform: models.PlatformNative,
		UserID:   "user-1",
	})
	require.Equal(t, models.RunCompleted, result.Status)

	counts := map[string]int{}
	for _, insight := range result.Insights {
		counts[insight["sentiment"].(string)]++
	}

	// Even a default-sized sample sees every outcome, with positive
	// dominating and negative the minority.
	assert.Greater(t, counts["positive"], counts["neutral"])
	assert.Greater(t, counts["positive"], counts["negative"])
	assert.Greater(t, counts["negative"], 0)
	assert.Greater(t, counts["neutral"], 0)
}

func TestChurnBucketThresholds(t *testing.T) {
	assert.Equal(t, models.RiskHigh, ChurnBucket(0.85))
	assert.Equal(t, models.RiskHigh, ChurnBucket(0.71))
	assert.Equal(t, models.RiskMedium, ChurnBucket(0.7))
	assert.Equal(t, models.RiskMedium, ChurnBucket(0.41))
	assert.Equal(t, models.RiskLow, ChurnBucket(0.4))
	assert.Equal(t, models.RiskLow, ChurnBucket(0.0))
}

func TestHighChurnRecordGetsHighRiskInterventions(t *testing.T) {
	// ChurnBucket(0.85) is the high bucket; its interventions must be the
	// high-risk set, not the medium or low set.
	bucket := ChurnBucket(0.85)
	require.Equal(t, models.RiskHigh, bucket)

	interventions := InterventionsFor(bucket)
	assert.Contains(t, interventions, "immediate account manager outreach")
	assert.NotContains(t, interventions, "schedule quarterly business review")
	assert.NotContains(t, interventions, "continue standard touchpoints")
}

func TestChurnSimulationAttachesBucketData(t *testing.T) {
	e := New(Params{Records: NewSeededSource(5), SampleSize: 5})

	result := e.Execute(context.Background(), Request{
		Agent:    churnAgent(models.PlatformNative),
		Platform: models.PlatformNative,
		UserID:   "user-1",
	})

	require.Equal(t, models.RunCompleted, result.Status)
	require.Len(t, result.Insights, 5)

	for _, insight := range result.Insights {
		p, ok := insight["churn_probability"].(float64)
		require.True(t, ok)
		assert.Equal(t, ChurnBucket(p), insight["risk_bucket"])
	}

	// Seeded probabilities include one above the high threshold.
	assert.Equal(t, models.RiskHigh, result.RiskLevel)
}

func TestSegmentationPlatformLabels(t *testing.T) {
	e := New(Params{Records: NewSeededSource(7), SampleSize: 7})

	agent := models.Agent{
		ID:                "segmentation-hubspot",
		BasePrototype:     models.PrototypeSegmentation,
		EligiblePlatforms: []models.Platform{models.PlatformHubSpot},
	}
	result := e.Execute(context.Background(), Request{
		Agent:    agent,
		Platform: models.PlatformHubSpot,
		UserID:   "user-1",
	})

	require.Equal(t, models.RunCompleted, result.Status)
	require.Len(t, result.Insights, 7)

	// Seven records across seven labels (five base + hubspot extra) means
	// the platform-specific label gets used.
	segments := map[string]bool{}
	for _, insight := range result.Insights {
		segments[insight["segment"].(string)] = true
	}
	assert.True(t, segments["marketing-qualified"])
	assert.False(t, segments["enterprise"])
}

func TestLiveCallSuccess(t *testing.T) {
	confidence := 0.97
	recordCount := 12
	inv := &stubInvoker{resp: &InvokeResponse{
		Confidence: &confidence,
		Insights: []models.Insight{
			{"deal": "acme", "signal": "expansion"},
		},
		Recommendations: []string{"prioritize acme renewal"},
		ActionsExecuted: 3,
		RecordCount:     &recordCount,
	}}

	sink := &memorySink{}
	e := New(Params{
		Invokers: map[models.Platform]Invoker{models.PlatformSalesforce: inv},
		Records:  salesforceRecords(3),
		Audit:    sink,
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformSalesforce),
		Platform: models.PlatformSalesforce,
		UserID:   "user-1",
	})

	assert.Equal(t, models.RunCompleted, result.Status)
	assert.Equal(t, 0.97, result.Confidence)
	assert.Equal(t, 12, result.RecordsProcessed)
	assert.Equal(t, 3, result.ActionsExecuted)
	assert.Len(t, result.Insights, 1)
	assert.Equal(t, 1, inv.calls)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, audit.ExecutionLive, sink.entries[0].ExecutionType)
}

func TestLiveCallErrorFallsBackToSimulated(t *testing.T) {
	inv := &stubInvoker{err: errors.New("connection refused")}
	e := New(Params{
		Invokers: map[models.Platform]Invoker{models.PlatformHubSpot: inv},
		Records:  NewSeededSource(5),
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformHubSpot),
		Platform: models.PlatformHubSpot,
		UserID:   "user-1",
	})

	// Graceful degradation: the simulated path completes the run.
	assert.Equal(t, models.RunCompleted, result.Status)
	assert.Equal(t, 0.94, result.Confidence)
	assert.Equal(t, 1, inv.calls)
	assert.Len(t, result.Insights, 5)
}

func TestLiveCallErrorWithFallbackDisabled(t *testing.T) {
	inv := &stubInvoker{err: errors.New("connection refused")}
	e := New(Params{
		Invokers: map[models.Platform]Invoker{models.PlatformHubSpot: inv},
		Records:  NewSeededSource(5),
	})

	result := e.Execute(context.Background(), Request{
		Agent:           sentimentAgent(models.PlatformHubSpot),
		Platform:        models.PlatformHubSpot,
		UserID:          "user-1",
		DisableFallback: true,
	})

	assert.Equal(t, models.RunFailed, result.Status)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, models.RiskHigh, result.RiskLevel)
	assert.Contains(t, result.Error, "connection refused")
}

func TestRequiresAuthIsTerminalWithoutFallback(t *testing.T) {
	inv := &stubInvoker{resp: &InvokeResponse{RequiresAuth: true}}
	sink := &memorySink{}
	e := New(Params{
		Invokers: map[models.Platform]Invoker{models.PlatformSalesforce: inv},
		Records:  NewSeededSource(5),
		Audit:    sink,
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformSalesforce),
		Platform: models.PlatformSalesforce,
		UserID:   "user-1",
	})

	// Auth-required is distinguished from connectivity failure: no
	// simulated fallback, terminal failure with an authorization message.
	assert.Equal(t, models.RunFailed, result.Status)
	assert.Zero(t, result.Confidence)
	assert.Contains(t, result.Error, "authorization required")
	assert.Equal(t, models.RiskHigh, result.RiskLevel)
	assert.NotEmpty(t, result.Error)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, audit.ExecutionLive, sink.entries[0].ExecutionType)
}

func TestLiveErrorPayloadFallsBack(t *testing.T) {
	inv := &stubInvoker{resp: &InvokeResponse{Error: "rate limit exceeded"}}
	e := New(Params{
		Invokers: map[models.Platform]Invoker{models.PlatformSalesforce: inv},
		Records:  NewSeededSource(5),
	})

	result := e.Execute(context.Background(), Request{
		Agent:    churnAgent(models.PlatformSalesforce),
		Platform: models.PlatformSalesforce,
		UserID:   "user-1",
	})

	assert.Equal(t, models.RunCompleted, result.Status)
	assert.Equal(t, 0.89, result.Confidence)
}

func TestLiveAnalysisFencedBlockParsed(t *testing.T) {
	analysis := "Quarterly review findings:\n\n```json\n[{\"account\":\"globex\",\"health\":\"declining\"}]\n```\nEnd of report."
	raw, err := encodeJSONString(analysis)
	require.NoError(t, err)

	inv := &stubInvoker{resp: &InvokeResponse{Analysis: raw}}
	e := New(Params{
		Invokers: map[models.Platform]Invoker{models.PlatformSalesforce: inv},
		Records:  NewSeededSource(5),
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformSalesforce),
		Platform: models.PlatformSalesforce,
		UserID:   "user-1",
	})

	require.Equal(t, models.RunCompleted, result.Status)
	require.Len(t, result.Insights, 1)
	assert.Equal(t, "globex", result.Insights[0]["account"])
}

func TestLiveAnalysisUnparseableDegradesToEmptyInsights(t *testing.T) {
	raw, err := encodeJSONString("completely unstructured prose with no code block")
	require.NoError(t, err)

	inv := &stubInvoker{resp: &InvokeResponse{Analysis: raw}}
	e := New(Params{
		Invokers: map[models.Platform]Invoker{models.PlatformSalesforce: inv},
		Records:  NewSeededSource(5),
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformSalesforce),
		Platform: models.PlatformSalesforce,
		UserID:   "user-1",
	})

	// Parse failure is non-fatal: the run completes with no insights.
	assert.Equal(t, models.RunCompleted, result.Status)
	assert.Empty(t, result.Insights)
	assert.Empty(t, result.Error)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
}

func TestNoRecordsAnywhereIsHardFailure(t *testing.T) {
	e := New(Params{Records: NewMemorySource()})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformNative),
		Platform: models.PlatformNative,
		UserID:   "user-1",
	})

	assert.Equal(t, models.RunFailed, result.Status)
	assert.Contains(t, result.Error, "no test subjects available")
	assert.Equal(t, models.RiskHigh, result.RiskLevel)
}

func TestGenericRecordsSubstitutedForUnsyncedPlatform(t *testing.T) {
	// Only generic native records exist; a hubspot run must borrow them
	// instead of aborting.
	e := New(Params{Records: NewSeededSource(5)})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformHubSpot),
		Platform: models.PlatformHubSpot,
		UserID:   "user-1",
	})

	assert.Equal(t, models.RunCompleted, result.Status)
	assert.Equal(t, 5, result.RecordsProcessed)
}

func TestAbsentLiveRecordCountUsesSample(t *testing.T) {
	// An endpoint that omits the record count gets the analyzed sample
	// size substituted in.
	confidence := 0.9
	inv := &stubInvoker{resp: &InvokeResponse{Confidence: &confidence}}
	e := New(Params{
		Invokers:   map[models.Platform]Invoker{models.PlatformSalesforce: inv},
		Records:    salesforceRecords(3),
		SampleSize: 3,
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformSalesforce),
		Platform: models.PlatformSalesforce,
		UserID:   "user-1",
	})

	assert.Equal(t, models.RunCompleted, result.Status)
	assert.Equal(t, 3, result.RecordsProcessed)
	assert.Empty(t, result.Error)
}

func TestZeroLiveRecordCountDoesNotFailRun(t *testing.T) {
	// An analysis-only live response that honestly reports zero records
	// processed keeps the zero and must not fail the run.
	confidence := 0.9
	recordCount := 0
	inv := &stubInvoker{resp: &InvokeResponse{Confidence: &confidence, RecordCount: &recordCount}}
	e := New(Params{
		Invokers:   map[models.Platform]Invoker{models.PlatformSalesforce: inv},
		Records:    salesforceRecords(3),
		SampleSize: 3,
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformSalesforce),
		Platform: models.PlatformSalesforce,
		UserID:   "user-1",
	})

	assert.Equal(t, models.RunCompleted, result.Status)
	assert.Equal(t, 0, result.RecordsProcessed)
	assert.Empty(t, result.Error)
}

func TestConfidenceClampedToUnitInterval(t *testing.T) {
	confidence := 1.7
	inv := &stubInvoker{resp: &InvokeResponse{Confidence: &confidence}}
	e := New(Params{
		Invokers: map[models.Platform]Invoker{models.PlatformSalesforce: inv},
		Records:  NewSeededSource(3),
	})

	result := e.Execute(context.Background(), Request{
		Agent:    sentimentAgent(models.PlatformSalesforce),
		Platform: models.PlatformSalesforce,
		UserID:   "user-1",
	})

	require.Equal(t, models.RunCompleted, result.Status)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestExpiredContextResolvesToTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	e := New(Params{Records: NewSeededSource(5)})

	result := e.Execute(ctx, Request{
		Agent:    sentimentAgent(models.PlatformNative),
		Platform: models.PlatformNative,
		UserID:   "user-1",
	})

	assert.Equal(t, models.RunFailed, result.Status)
	assert.Contains(t, result.Error, "timed out")
}

// encodeJSONString wraps prose as a JSON string value, the way a live
// endpoint delivers textual analysis.
func encodeJSONString(s string) (json.RawMessage, error) {
	b, err := json.Marshal(s)
	return json.RawMessage(b), err
}

// salesforceRecords builds a source holding only salesforce-synced records.
func salesforceRecords(n int) *MemorySource {
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			ID:         fmt.Sprintf("sf-%02d", i+1),
			Name:       fmt.Sprintf("SF Contact %02d", i+1),
			Platform:   models.PlatformSalesforce,
			ExternalID: fmt.Sprintf("0035f%05d", i+1),
		})
	}
	return NewMemorySource(records...)
}
