package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mhollis/agentbench/internal/models"
)

// InvokeResponse is the envelope a live analysis endpoint returns. All
// fields are optional; absent scalar fields fall back to the simulated
// constant tables.
type InvokeResponse struct {
	Confidence      *float64         `json:"confidence,omitempty"`
	Insights        []models.Insight `json:"insights,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	ActionsExecuted int              `json:"actions_executed,omitempty"`
	RecordCount     *int             `json:"record_count,omitempty"`
	Analysis        json.RawMessage  `json:"analysis,omitempty"`
	Error           string           `json:"error,omitempty"`
	RequiresAuth    bool             `json:"requires_auth,omitempty"`
}

// Invoker performs one live analysis call against a platform backend.
type Invoker interface {
	InvokeAgent(ctx context.Context, agentType, userID string, platform models.Platform) (*InvokeResponse, error)
}

// HTTPInvoker calls an analysis endpoint over HTTP. One invoker is bound
// per live platform; the native platform has no invoker at all.
type HTTPInvoker struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPInvoker creates an HTTPInvoker for the given endpoint URL.
func NewHTTPInvoker(endpoint string) *HTTPInvoker {
	return &HTTPInvoker{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// invokeRequest is the wire format of an analysis call.
type invokeRequest struct {
	AgentType string `json:"agent_type"`
	UserID    string `json:"user_id"`
	Platform  string `json:"platform,omitempty"`
}

// InvokeAgent implements Invoker.
func (hi *HTTPInvoker) InvokeAgent(ctx context.Context, agentType, userID string, platform models.Platform) (*InvokeResponse, error) {
	payload, err := json.Marshal(invokeRequest{
		AgentType: agentType,
		UserID:    userID,
		Platform:  string(platform),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal invoke request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hi.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hi.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call analysis endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read analysis response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analysis endpoint returned status %d", resp.StatusCode)
	}

	var out InvokeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	return &out, nil
}
