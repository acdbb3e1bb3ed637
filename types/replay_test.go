package types

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplayBufferBound(t *testing.T) {
	b := NewReplayBuffer[int](3)
	for i := 0; i < 10; i++ {
		b.Append(i)
		require.LessOrEqual(t, b.Len(), 3)
	}
	// exactly the most recent items, oldest first
	require.Equal(t, []int{7, 8, 9}, b.Items())
}

func TestReplayBufferUnderCapacity(t *testing.T) {
	b := NewReplayBuffer[string](5)
	b.Append("a")
	b.Append("b")
	require.Equal(t, []string{"a", "b"}, b.Items())
	require.Equal(t, 5, b.Capacity())
}

func TestReplayBufferSample(t *testing.T) {
	b := NewReplayBuffer[int](10)
	for i := 0; i < 10; i++ {
		b.Append(i)
	}
	r := rand.New(rand.NewSource(1))

	sample := b.Sample(4, r.Intn)
	require.Len(t, sample, 4)
	seen := make(map[int]bool)
	for _, v := range sample {
		require.False(t, seen[v], "sampled %d twice", v)
		seen[v] = true
	}

	// k >= len returns everything
	require.Len(t, b.Sample(20, r.Intn), 10)
}

func TestReplayBufferInvalidCapacity(t *testing.T) {
	require.Panics(t, func() { NewReplayBuffer[int](0) })
}
