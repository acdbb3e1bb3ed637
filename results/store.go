// Package results persists evaluation records and model checkpoints
// for the orchestration around a training run.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"
)

// Record is one per-checkpoint evaluation result.
type Record struct {
	Name              string    `json:"name"`
	Domain            string    `json:"domain"`
	NSteps            int       `json:"n_steps"`
	ProblemsSeen      int       `json:"problems_seen"`
	CumulativeReward  float64   `json:"cumulative_reward"`
	SuccessRate       float64   `json:"success_rate"`
	MaxSolutionLength int       `json:"max_solution_length"`
	Time              time.Time `json:"time"`
}

// Store appends and reads back the result log of a run.
type Store interface {
	Append(ctx context.Context, runID string, rec Record) error
	Load(ctx context.Context, runID string) ([]Record, error)
}

// FileStore keeps one JSON file of records per run under a directory.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

var _ Store = (*FileStore)(nil)

func (f *FileStore) path(runID string) string {
	return path.Join(f.dir, runID+"-results.json")
}

// Append reads the existing log, appends and rewrites it. A log that
// cannot be read is replaced with a fresh one rather than failing the
// run.
func (f *FileStore) Append(ctx context.Context, runID string, rec Record) error {
	existing, err := f.Load(ctx, runID)
	if err != nil {
		f.logger.Warn("starting new results log", "run", runID, "err", err)
		existing = nil
	}
	existing = append(existing, rec)

	bs, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(f.path(runID), bs, 0o644); err != nil {
		return fmt.Errorf("writing results log: %w", err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, runID string) ([]Record, error) {
	bs, err := os.ReadFile(f.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(bs, &records); err != nil {
		return nil, fmt.Errorf("parsing results log: %w", err)
	}
	return records, nil
}
