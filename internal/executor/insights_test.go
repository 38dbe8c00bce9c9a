package executor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInsightsFencedBlock(t *testing.T) {
	text := "Here is the analysis you asked for.\n\n" +
		"```json\n" +
		"[{\"account\": \"acme\", \"signal\": \"upsell\"}, {\"account\": \"globex\", \"signal\": \"churn\"}]\n" +
		"```\n\n" +
		"Let me know if you need more detail."

	insights := ExtractInsights(text)
	require.Len(t, insights, 2)
	assert.Equal(t, "acme", insights[0]["account"])
	assert.Equal(t, "churn", insights[1]["signal"])
}

func TestExtractInsightsFirstBlockWins(t *testing.T) {
	text := "```\n[{\"n\": 1}]\n```\nand also\n```\n[{\"n\": 2}]\n```"

	insights := ExtractInsights(text)
	require.Len(t, insights, 1)
	assert.Equal(t, float64(1), insights[0]["n"])
}

func TestExtractInsightsDirectParse(t *testing.T) {
	insights := ExtractInsights(`[{"segment": "champion"}]`)
	require.Len(t, insights, 1)
	assert.Equal(t, "champion", insights[0]["segment"])
}

func TestExtractInsightsSingleObjectWrapped(t *testing.T) {
	insights := ExtractInsights(`{"segment": "loyal"}`)
	require.Len(t, insights, 1)
	assert.Equal(t, "loyal", insights[0]["segment"])
}

func TestExtractInsightsUnparseableIsEmpty(t *testing.T) {
	assert.Empty(t, ExtractInsights("no structure here at all"))
	assert.Empty(t, ExtractInsights(""))
	assert.Empty(t, ExtractInsights("```\nnot json either\n```"))
}

func TestExtractInsightsFencedGarbageFallsBackToWholeText(t *testing.T) {
	// The fenced block fails to parse but the surrounding text is itself
	// a valid insight list? No: once a block exists and fails, the whole
	// text includes the fences and fails too, so the list is empty.
	text := "```\nbroken {\n```"
	assert.Empty(t, ExtractInsights(text))
}

func TestParseAnalysisVariants(t *testing.T) {
	// Array form.
	insights := ParseAnalysis(json.RawMessage(`[{"k": "v"}]`))
	require.Len(t, insights, 1)

	// Object form.
	insights = ParseAnalysis(json.RawMessage(`{"k": "v"}`))
	require.Len(t, insights, 1)

	// String form with embedded fence.
	text, err := json.Marshal("prefix\n```\n[{\"k\":\"v\"}]\n```\n")
	require.NoError(t, err)
	insights = ParseAnalysis(text)
	require.Len(t, insights, 1)
	assert.Equal(t, "v", insights[0]["k"])

	// Absent and junk.
	assert.Empty(t, ParseAnalysis(nil))
	assert.Empty(t, ParseAnalysis(json.RawMessage(`42`)))
}
