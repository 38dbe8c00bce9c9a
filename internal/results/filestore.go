package results

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mhollis/agentbench/internal/filelock"
	"github.com/mhollis/agentbench/internal/models"
)

// FileStore persists the result set as an indented JSON document at a fixed
// path. Writes are guarded by a sidecar flock and land atomically, so two
// concurrent agentbench invocations cannot corrupt the file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Save implements Store.
func (fs *FileStore) Save(rs models.ResultSet) error {
	if rs == nil {
		rs = models.ResultSet{}
	}
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result set: %w", err)
	}
	return filelock.LockAndWrite(fs.path, data)
}

// Load implements Store. A missing file yields an empty set, not an error.
func (fs *FileStore) Load() (models.ResultSet, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.ResultSet{}, nil
		}
		return nil, fmt.Errorf("failed to read result set: %w", err)
	}

	var rs models.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result set: %w", err)
	}
	return rs, nil
}

// Clear implements Store.
func (fs *FileStore) Clear() error {
	return filelock.LockAndRemove(fs.path)
}
