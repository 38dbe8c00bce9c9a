package results

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mhollis/agentbench/internal/models"
	"github.com/mhollis/agentbench/internal/platform"
)

// ExportDocument is the complete exportable projection of engine state:
// the connection snapshot, the full result set, and the aggregate summary.
// Building it reads state without mutating anything, so two exports with no
// intervening runs differ only in the export timestamp.
type ExportDocument struct {
	ExportedAt time.Time        `json:"exported_at"`
	Platforms  []platform.Info  `json:"platforms"`
	Results    models.ResultSet `json:"results"`
	Summary    Summary          `json:"summary"`
}

// BuildExport assembles the export document from the current result set and
// platform snapshot.
func BuildExport(rs models.ResultSet, platforms []platform.Info) ExportDocument {
	if rs == nil {
		rs = models.ResultSet{}
	}
	return ExportDocument{
		ExportedAt: time.Now().UTC(),
		Platforms:  platforms,
		Results:    rs,
		Summary:    Summarize(rs),
	}
}

// WriteJSON writes the document as indented JSON.
func (d ExportDocument) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode export document: %w", err)
	}
	return nil
}
