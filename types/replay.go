package types

// ReplayBuffer is a bounded FIFO store of past experience. Inserting
// into a full buffer evicts the oldest entry, which caps memory and
// biases training toward recent experience.
type ReplayBuffer[T any] struct {
	items    []T
	capacity int
}

func NewReplayBuffer[T any](capacity int) *ReplayBuffer[T] {
	if capacity <= 0 {
		panic("replay buffer capacity must be positive")
	}
	return &ReplayBuffer[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

func (b *ReplayBuffer[T]) Append(item T) {
	if len(b.items) == b.capacity {
		copy(b.items, b.items[1:])
		b.items[len(b.items)-1] = item
		return
	}
	b.items = append(b.items, item)
}

func (b *ReplayBuffer[T]) Len() int {
	return len(b.items)
}

func (b *ReplayBuffer[T]) Capacity() int {
	return b.capacity
}

// Items returns the buffered entries, oldest first. The returned slice
// is a copy; mutating it does not affect the buffer.
func (b *ReplayBuffer[T]) Items() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Sample returns k entries drawn without replacement using the given
// integer source (e.g. rand.Intn). k larger than the buffer returns
// everything.
func (b *ReplayBuffer[T]) Sample(k int, intn func(int) int) []T {
	n := len(b.items)
	if k >= n {
		return b.Items()
	}
	// partial Fisher-Yates over a copy of the indices
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	out := make([]T, k)
	for i := 0; i < k; i++ {
		j := i + intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = b.items[idx[i]]
	}
	return out
}
