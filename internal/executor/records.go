package executor

import (
	"context"
	"fmt"

	"github.com/mhollis/agentbench/internal/models"
)

// Record is one CRM record an agent analyzes. Records synced from a live
// integration carry that platform and an external id; generic local records
// belong to the native platform.
type Record struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email,omitempty"`
	Platform   models.Platform `json:"platform"`
	ExternalID string          `json:"external_id,omitempty"`

	// Simulated marks a generic record substituted in for a platform that
	// has no synced data of its own.
	Simulated bool `json:"simulated,omitempty"`
}

// RecordQuery selects a bounded record sample.
type RecordQuery struct {
	Platform          models.Platform
	RequireExternalID bool
	Limit             int
}

// RecordSource supplies the records an agent run analyzes.
type RecordSource interface {
	Fetch(ctx context.Context, q RecordQuery) ([]Record, error)
}

// MemorySource is an in-memory RecordSource backed by a fixed record slice.
// It serves as the native platform's record pool and as the test double.
type MemorySource struct {
	records []Record
}

// NewMemorySource creates a MemorySource over the given records.
func NewMemorySource(records ...Record) *MemorySource {
	return &MemorySource{records: records}
}

// NewSeededSource creates a MemorySource holding n generic native contacts.
func NewSeededSource(n int) *MemorySource {
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			ID:       fmt.Sprintf("contact-%03d", i+1),
			Name:     fmt.Sprintf("Contact %03d", i+1),
			Email:    fmt.Sprintf("contact%03d@example.com", i+1),
			Platform: models.PlatformNative,
		})
	}
	return &MemorySource{records: records}
}

// Fetch implements RecordSource, applying the query filters in order.
func (ms *MemorySource) Fetch(_ context.Context, q RecordQuery) ([]Record, error) {
	var out []Record
	for _, r := range ms.records {
		if q.Platform != "" && r.Platform != q.Platform {
			continue
		}
		if q.RequireExternalID && r.ExternalID == "" {
			continue
		}
		out = append(out, r)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of records held.
func (ms *MemorySource) Len() int {
	return len(ms.records)
}

// sourceRecords applies the input sourcing policy for one run: prefer
// records synced for the target platform, transparently substitute a sample
// of generic records when the platform has nothing of its own, and fail
// hard only when no records exist anywhere.
func (e *Executor) sourceRecords(ctx context.Context, target models.Platform) ([]Record, error) {
	limit := e.sampleSize

	records, err := e.records.Fetch(ctx, RecordQuery{
		Platform:          target,
		RequireExternalID: target.Live(),
		Limit:             limit,
	})
	if err == nil && len(records) > 0 {
		return records, nil
	}

	// Nothing synced for this platform yet; borrow generic records and
	// tag them as simulated stand-ins for the target.
	generic, gerr := e.records.Fetch(ctx, RecordQuery{
		Platform: models.PlatformNative,
		Limit:    limit,
	})
	if gerr != nil {
		return nil, fmt.Errorf("fetch generic records: %w", gerr)
	}
	if len(generic) == 0 {
		return nil, ErrNoRecords
	}

	substituted := make([]Record, len(generic))
	for i, r := range generic {
		r.Platform = target
		r.Simulated = true
		substituted[i] = r
	}
	return substituted, nil
}
