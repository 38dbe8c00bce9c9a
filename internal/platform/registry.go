// Package platform tracks the connection state of each CRM backend.
// Status and record-count estimates are established by probing the external
// collaborators at session start and refreshed only by an explicit check.
package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mhollis/agentbench/internal/models"
)

// Info is the observed state of one platform backend.
type Info struct {
	Platform    models.Platform         `json:"platform"`
	Status      models.ConnectionStatus `json:"status"`
	RecordCount int                     `json:"record_count"`
	CheckedAt   time.Time               `json:"checked_at"`
}

// Connected reports whether the platform was reachable at the last check.
func (i Info) Connected() bool {
	return i.Status == models.StatusConnected
}

// Prober answers whether a platform backend is reachable and how many
// records it holds. Implementations wrap the external integration APIs.
type Prober interface {
	Probe(ctx context.Context, p models.Platform) (connected bool, recordCount int, err error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, p models.Platform) (bool, int, error)

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context, p models.Platform) (bool, int, error) {
	return f(ctx, p)
}

// Registry holds the current connection snapshot for the closed platform
// set. It starts with every platform disconnected; Check mutates it.
type Registry struct {
	mu   sync.RWMutex
	info map[models.Platform]Info
}

// NewRegistry creates a registry with every platform marked disconnected.
func NewRegistry() *Registry {
	r := &Registry{info: make(map[models.Platform]Info)}
	for _, p := range models.AllPlatforms() {
		r.info[p] = Info{Platform: p, Status: models.StatusDisconnected}
	}
	return r
}

// Check probes every platform and updates the registry. A probe error marks
// that platform disconnected rather than failing the whole check; the first
// error encountered is returned after all platforms are probed.
func (r *Registry) Check(ctx context.Context, prober Prober) error {
	var firstErr error
	now := time.Now()

	for _, p := range models.AllPlatforms() {
		connected, count, err := prober.Probe(ctx, p)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("probe %s: %w", p, err)
			}
			connected, count = false, 0
		}

		status := models.StatusDisconnected
		if connected {
			status = models.StatusConnected
		}

		r.mu.Lock()
		r.info[p] = Info{Platform: p, Status: status, RecordCount: count, CheckedAt: now}
		r.mu.Unlock()
	}

	return firstErr
}

// Get returns the current info for one platform.
func (r *Registry) Get(p models.Platform) Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info[p]
}

// Snapshot returns the connection state of all platforms in canonical order.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.info))
	for _, p := range models.AllPlatforms() {
		out = append(out, r.info[p])
	}
	return out
}

// ConnectedCount returns how many platforms are currently connected.
func (r *Registry) ConnectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, info := range r.info {
		if info.Connected() {
			count++
		}
	}
	return count
}

// LocalProber is a Prober for fully-local deployments: the native platform
// is always connected with the given record count, live integrations are
// reported disconnected until their endpoints are wired up.
type LocalProber struct {
	NativeRecords int
}

// Probe implements Prober.
func (lp LocalProber) Probe(_ context.Context, p models.Platform) (bool, int, error) {
	if p == models.PlatformNative {
		return true, lp.NativeRecords, nil
	}
	return false, 0, nil
}
