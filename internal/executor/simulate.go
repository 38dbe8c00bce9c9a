package executor

import (
	"fmt"

	"github.com/mhollis/agentbench/internal/models"
)

// Churn risk bucket thresholds.
const (
	churnHighThreshold   = 0.7
	churnMediumThreshold = 0.4
)

// ChurnBucket maps a churn probability to its risk bucket.
func ChurnBucket(probability float64) string {
	switch {
	case probability > churnHighThreshold:
		return models.RiskHigh
	case probability > churnMediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// churnRiskFactors and churnInterventions are fixed lookups keyed by bucket.
var churnRiskFactors = map[string][]string{
	models.RiskHigh:   {"no recent activity", "unresolved support tickets", "contract renewal approaching"},
	models.RiskMedium: {"declining engagement", "fewer logins than last quarter"},
	models.RiskLow:    {"healthy engagement"},
}

var churnInterventions = map[string][]string{
	models.RiskHigh:   {"immediate account manager outreach", "executive sponsor call", "retention discount offer"},
	models.RiskMedium: {"schedule quarterly business review", "targeted re-engagement campaign"},
	models.RiskLow:    {"continue standard touchpoints"},
}

// InterventionsFor returns the fixed intervention list for a risk bucket.
func InterventionsFor(bucket string) []string {
	return churnInterventions[bucket]
}

// Segmentation labels. Each live platform contributes extra labels on top
// of the base set.
var baseSegments = []string{"champion", "loyal", "at-risk", "new", "dormant"}

var platformSegments = map[models.Platform][]string{
	models.PlatformSalesforce: {"enterprise"},
	models.PlatformHubSpot:    {"marketing-qualified"},
}

// segmentsFor returns the segmentation label set for a platform.
func segmentsFor(p models.Platform) []string {
	labels := make([]string, len(baseSegments))
	copy(labels, baseSegments)
	return append(labels, platformSegments[p]...)
}

// sentimentSlots is the repeating 6/10 positive, 3/10 neutral, 1/10
// negative outcome cycle. The outcomes are interleaved rather than grouped
// so even a small sample sees a mixed distribution with positive dominating
// and negative as a nonzero minority.
var sentimentSlots = [10]string{
	"positive", "positive", "neutral", "negative", "positive",
	"positive", "neutral", "positive", "positive", "neutral",
}

// simulateSentiment assigns each record a categorical sentiment with fixed
// relative frequencies: positive dominates, negative is the minority
// outcome. Frequencies are deterministic in record order for parity testing.
func (e *Executor) simulateSentiment(req Request, records []Record) *envelope {
	var positive, neutral, negative int
	insights := make([]models.Insight, 0, len(records))

	for i, r := range records {
		var sentiment, action string
		var score float64

		slot := i % len(sentimentSlots)
		switch sentimentSlots[slot] {
		case "positive":
			sentiment, score = "positive", 0.70+0.02*float64(slot)
			action = "share product updates and upsell offer"
			positive++
		case "neutral":
			sentiment, score = "neutral", 0.50
			action = "schedule a check-in call"
			neutral++
		default:
			sentiment, score = "negative", 0.25
			action = "escalate to customer success manager"
			negative++
		}

		insights = append(insights, models.Insight{
			"record_id":          r.ID,
			"record_name":        r.Name,
			"sentiment":          sentiment,
			"score":              score,
			"recommended_action": action,
		})
	}

	recommendations := []string{
		fmt.Sprintf("%d positive interactions detected - consider upsell campaigns", positive),
		fmt.Sprintf("%d negative interactions require follow-up", negative),
	}

	riskLevel := models.RiskLow
	if len(records) > 0 && float64(negative)/float64(len(records)) > 0.3 {
		riskLevel = models.RiskMedium
	}

	return &envelope{
		confidence:       e.sim.ConfidenceFor(req.Platform, models.PrototypeSentiment),
		insights:         insights,
		recommendations:  recommendations,
		actionsExecuted:  positive + negative,
		recordsProcessed: len(records),
		securityScore:    e.sim.SecurityScoreFor(req.Platform),
		riskLevel:        riskLevel,
		executionType:    executionSimulated,
	}
}

// simulateChurn assigns a deterministic churn probability per record,
// buckets it by the fixed thresholds, and attaches the bucket's risk
// factors and suggested interventions.
func (e *Executor) simulateChurn(req Request, records []Record) *envelope {
	bucketCounts := map[string]int{}
	insights := make([]models.Insight, 0, len(records))
	actions := 0

	for i, r := range records {
		probability := float64((i*31)%100) / 100.0
		bucket := ChurnBucket(probability)
		bucketCounts[bucket]++
		actions += len(churnInterventions[bucket])

		insights = append(insights, models.Insight{
			"record_id":         r.ID,
			"record_name":       r.Name,
			"churn_probability": probability,
			"risk_bucket":       bucket,
			"risk_factors":      churnRiskFactors[bucket],
			"interventions":     churnInterventions[bucket],
		})
	}

	recommendations := []string{
		fmt.Sprintf("%d accounts at high churn risk - intervene this week", bucketCounts[models.RiskHigh]),
		fmt.Sprintf("%d accounts at medium risk - schedule business reviews", bucketCounts[models.RiskMedium]),
		fmt.Sprintf("%d accounts healthy", bucketCounts[models.RiskLow]),
	}

	riskLevel := models.RiskLow
	switch {
	case bucketCounts[models.RiskHigh] > 0:
		riskLevel = models.RiskHigh
	case bucketCounts[models.RiskMedium] > 0:
		riskLevel = models.RiskMedium
	}

	return &envelope{
		confidence:       e.sim.ConfidenceFor(req.Platform, models.PrototypeChurn),
		insights:         insights,
		recommendations:  recommendations,
		actionsExecuted:  actions,
		recordsProcessed: len(records),
		securityScore:    e.sim.SecurityScoreFor(req.Platform),
		riskLevel:        riskLevel,
		executionType:    executionSimulated,
	}
}

// simulateSegmentation assigns each record to a segment from the
// platform-augmented label set, attaches synthetic lifetime-value and
// engagement figures, and reports a per-segment count breakdown.
func (e *Executor) simulateSegmentation(req Request, records []Record) *envelope {
	labels := segmentsFor(req.Platform)
	counts := map[string]int{}
	insights := make([]models.Insight, 0, len(records))

	for i, r := range records {
		segment := labels[i%len(labels)]
		counts[segment]++

		insights = append(insights, models.Insight{
			"record_id":      r.ID,
			"record_name":    r.Name,
			"segment":        segment,
			"lifetime_value": 1000 + 250*i,
			"engagement":     0.35 + 0.06*float64(i%10),
		})
	}

	recommendations := make([]string, 0, len(labels))
	for _, label := range labels {
		if counts[label] > 0 {
			recommendations = append(recommendations, fmt.Sprintf("segment %s: %d records", label, counts[label]))
		}
	}

	return &envelope{
		confidence:       e.sim.ConfidenceFor(req.Platform, models.PrototypeSegmentation),
		insights:         insights,
		recommendations:  recommendations,
		actionsExecuted:  len(recommendations),
		recordsProcessed: len(records),
		securityScore:    e.sim.SecurityScoreFor(req.Platform),
		riskLevel:        models.RiskLow,
		executionType:    executionSimulated,
	}
}
