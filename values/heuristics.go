package values

import (
	"context"
	"math/rand"
	"unicode"

	"solveragent/types"
)

// Random scores actions uniformly in [0,1). Baseline policy.
type Random struct {
	rand *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rand: rand.New(rand.NewSource(seed))}
}

var _ types.QFunction = (*Random)(nil)

func (r *Random) Name() string { return "Random" }

func (r *Random) AggregationTransform() func(float64) float64 {
	return types.LogTransform
}

func (r *Random) Score(ctx context.Context, actions []*types.Action) ([]float64, error) {
	out := make([]float64, len(actions))
	for i := range actions {
		out[i] = r.rand.Float64()
	}
	return out, nil
}

// InverseLength prefers shorter resulting descriptions. A decent
// heuristic for simplification domains where progress shrinks the term.
type InverseLength struct{}

var _ types.QFunction = InverseLength{}

func (InverseLength) Name() string { return "InverseLength" }

func (InverseLength) AggregationTransform() func(float64) float64 {
	return types.LogTransform
}

func (InverseLength) Score(ctx context.Context, actions []*types.Action) ([]float64, error) {
	out := make([]float64, len(actions))
	for i, a := range actions {
		n := len(a.NextState.Current())
		if n == 0 {
			n = 1
		}
		out[i] = 1 / float64(n)
	}
	return out, nil
}

// CubeStickers scores cube states by the fraction of stickers already
// on their home face. The state description lists sticker colors as
// digits, nine per face, six faces.
type CubeStickers struct{}

var _ types.QFunction = CubeStickers{}

func (CubeStickers) Name() string { return "CubeStickers" }

func (CubeStickers) AggregationTransform() func(float64) float64 {
	return types.LogTransform
}

func (CubeStickers) Score(ctx context.Context, actions []*types.Action) ([]float64, error) {
	out := make([]float64, len(actions))
	for i, a := range actions {
		out[i] = stickerMatch(a.NextState.Current())
	}
	return out, nil
}

func stickerMatch(desc string) float64 {
	matched, total := 0, 0
	for _, r := range desc {
		if !unicode.IsDigit(r) {
			continue
		}
		if int(r-'0') == total/9 {
			matched++
		}
		total++
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}
