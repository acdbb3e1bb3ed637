package results

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"

	"solveragent/types"
)

// CheckpointStore persists value-function parameters, keyed by run id
// and an incrementing counter.
type CheckpointStore interface {
	Save(ctx context.Context, runID string, n int, q types.TrainableQFunction) error
}

// FileCheckpointStore writes one file per checkpoint.
type FileCheckpointStore struct {
	dir string
}

func NewFileCheckpointStore(dir string) (*FileCheckpointStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint dir: %w", err)
	}
	return &FileCheckpointStore{dir: dir}, nil
}

var _ CheckpointStore = (*FileCheckpointStore)(nil)

func (f *FileCheckpointStore) Save(_ context.Context, runID string, n int, q types.TrainableQFunction) error {
	var buf bytes.Buffer
	if err := q.Checkpoint(&buf); err != nil {
		return fmt.Errorf("serializing checkpoint: %w", err)
	}
	name := path.Join(f.dir, fmt.Sprintf("%s-ckpt-%d.json", runID, n))
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	return nil
}
