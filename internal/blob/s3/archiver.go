package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/alanyoungcy/stocklens/internal/domain"
)

// RunArchiver implements domain.Archiver by serializing completed backtest
// runs to JSON and uploading them to blob storage. Archived runs survive
// database retention and can be exported for offline analysis.
type RunArchiver struct {
	writer domain.BlobWriter
}

// NewRunArchiver creates a new RunArchiver on top of the given writer.
func NewRunArchiver(writer domain.BlobWriter) *RunArchiver {
	return &RunArchiver{writer: writer}
}

// ArchiveRun uploads one run to backtests/{symbol}/{runID}.json and returns
// the object key.
func (a *RunArchiver) ArchiveRun(ctx context.Context, run domain.BacktestRun) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(run); err != nil {
		return "", fmt.Errorf("s3blob: archive run %s: marshal: %w", run.ID, err)
	}

	path := runPath(run)
	if err := a.writer.Put(ctx, path, &buf, "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: archive run %s: %w", run.ID, err)
	}
	return path, nil
}

// runPath builds the object key for an archived run, partitioned by symbol.
//
//	backtests/AAPL/1f2d3c4b-....json
func runPath(run domain.BacktestRun) string {
	return fmt.Sprintf("backtests/%s/%s.json", run.Symbol, run.ID)
}

// Compile-time interface check.
var _ domain.Archiver = (*RunArchiver)(nil)
