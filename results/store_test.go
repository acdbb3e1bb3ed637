package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solveragent/values"
)

func TestFileStoreAppendLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	records, err := store.Load(ctx, "run1")
	require.NoError(t, err)
	require.Empty(t, records)

	for i := 0; i < 3; i++ {
		err := store.Append(ctx, "run1", Record{
			Name:   "QLearning",
			Domain: "countdown",
			NSteps: i * 100,
			Time:   time.Now(),
		})
		require.NoError(t, err)
	}

	records, err = store.Load(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, 200, records[2].NSteps)

	// runs are isolated
	other, err := store.Load(ctx, "run2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestFileStoreRecoversFromCorruptLog(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "run1-results.json"), []byte("not json"), 0o644))

	require.NoError(t, store.Append(ctx, "run1", Record{Name: "DAgger"}))
	records, err := store.Load(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestFileCheckpointStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileCheckpointStore(dir)
	require.NoError(t, err)

	q := values.NewLinear(values.VariantAction, 0, 0)
	require.NoError(t, store.Save(context.Background(), "run1", 0, q))
	require.NoError(t, store.Save(context.Background(), "run1", 1, q))

	for _, name := range []string{"run1-ckpt-0.json", "run1-ckpt-1.json"} {
		bs, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NotEmpty(t, bs)
	}
}
