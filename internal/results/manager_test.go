package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/agentbench/internal/models"
)

func completed(agentID string, p models.Platform, confidence float64) models.TestResult {
	return models.TestResult{
		AgentID:    agentID,
		Platform:   p,
		Status:     models.RunCompleted,
		Confidence: confidence,
	}
}

func TestManagerUpsertPersistsWholeSet(t *testing.T) {
	store := NewMemoryStore()
	m, err := NewManager(store)
	require.NoError(t, err)

	require.NoError(t, m.Upsert(completed("a", models.PlatformNative, 0.9)))
	require.NoError(t, m.Upsert(completed("b", models.PlatformNative, 0.8)))

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}

func TestManagerRerunReplacesPair(t *testing.T) {
	m, err := NewManager(NewMemoryStore())
	require.NoError(t, err)

	require.NoError(t, m.Upsert(completed("a", models.PlatformNative, 0.9)))
	require.NoError(t, m.Upsert(completed("a", models.PlatformNative, 0.7)))

	set := m.Snapshot()
	require.Len(t, set, 1)
	assert.Equal(t, 0.7, set[0].Confidence)
}

func TestManagerClearIsIdempotent(t *testing.T) {
	m, err := NewManager(NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, m.Upsert(completed("a", models.PlatformNative, 0.9)))

	require.NoError(t, m.Clear())
	assert.Zero(t, m.Len())

	// Clearing again succeeds and leaves the same empty state.
	require.NoError(t, m.Clear())
	assert.Zero(t, m.Len())
}

func TestManagerReloadsPersistedResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	m1, err := NewManager(NewFileStore(path))
	require.NoError(t, err)
	require.NoError(t, m1.Upsert(completed("sentiment-native", models.PlatformNative, 0.88)))

	// New session over the same file sees the prior results.
	m2, err := NewManager(NewFileStore(path))
	require.NoError(t, err)
	require.Equal(t, 1, m2.Len())

	r, ok := m2.Snapshot().Find("sentiment-native", models.PlatformNative)
	require.True(t, ok)
	assert.Equal(t, 0.88, r.Confidence)
}

func TestFileStoreClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(models.ResultSet{{AgentID: "a", Platform: models.PlatformNative}}))
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, fs.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Load after clear yields an empty set.
	rs, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0644))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestSnapshotIsolatedFromMutation(t *testing.T) {
	m, err := NewManager(NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, m.Upsert(completed("a", models.PlatformNative, 0.9)))

	snap := m.Snapshot()
	snap[0].Confidence = 0.1

	fresh := m.Snapshot()
	assert.Equal(t, 0.9, fresh[0].Confidence)
}
