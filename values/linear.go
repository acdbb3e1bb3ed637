package values

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"

	"solveragent/types"
)

// Variant selects what text the linear scorer conditions on.
type Variant int

const (
	// Source state description plus action description.
	VariantAction Variant = iota
	// Resulting state description only.
	VariantState
	// Elementwise product of source and next state features; produces
	// unbounded additive scores.
	VariantBilinear
)

// Linear is a logistic scorer over hashed character trigram features.
// It stands in for the neural value functions, which live outside this
// module: it satisfies the same contract and is cheap enough to train
// inside the control loops.
type Linear struct {
	variant Variant
	dim     int
	lr      float64
	weights []float64
	bias    float64
}

const defaultDim = 1 << 15

func NewLinear(variant Variant, dim int, learningRate float64) *Linear {
	if dim <= 0 {
		dim = defaultDim
	}
	if learningRate <= 0 {
		learningRate = 1e-2
	}
	return &Linear{
		variant: variant,
		dim:     dim,
		lr:      learningRate,
		weights: make([]float64, dim),
	}
}

var _ types.TrainableQFunction = (*Linear)(nil)

func (l *Linear) Name() string {
	switch l.variant {
	case VariantState:
		return "StateLinear"
	case VariantBilinear:
		return "Bilinear"
	default:
		return "ActionLinear"
	}
}

func (l *Linear) AggregationTransform() func(float64) float64 {
	if l.variant == VariantBilinear {
		return types.IdentityTransform
	}
	return types.LogTransform
}

func (l *Linear) Score(ctx context.Context, actions []*types.Action) ([]float64, error) {
	out := make([]float64, len(actions))
	for i, a := range actions {
		out[i] = l.predict(l.logit(l.features(a)))
	}
	return out, nil
}

// GradientStep runs one SGD step over the batch and returns the mean loss.
func (l *Linear) GradientStep(batch []types.Example, loss types.Loss) (float64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	if l.variant == VariantBilinear && loss == types.LossBCE {
		return 0, fmt.Errorf("bilinear scorer produces unbounded values, cross-entropy loss undefined")
	}

	total := 0.0
	for _, ex := range batch {
		feats := l.features(ex.Action)
		pred := l.predict(l.logit(feats))

		var grad float64
		if loss == types.LossBCE {
			total += bce(pred, ex.Target)
			// d(BCE∘sigmoid)/dz
			grad = pred - ex.Target
		} else {
			diff := pred - ex.Target
			total += diff * diff
			grad = 2 * diff
			if l.variant != VariantBilinear {
				// chain through the sigmoid
				grad *= pred * (1 - pred)
			}
		}

		step := l.lr * grad / float64(len(batch))
		for idx, v := range feats {
			l.weights[idx] -= step * v
		}
		l.bias -= step
	}
	return total / float64(len(batch)), nil
}

type linearCheckpoint struct {
	Variant int       `json:"variant"`
	Dim     int       `json:"dim"`
	LR      float64   `json:"lr"`
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
}

func (l *Linear) Checkpoint(w io.Writer) error {
	return json.NewEncoder(w).Encode(linearCheckpoint{
		Variant: int(l.variant),
		Dim:     l.dim,
		LR:      l.lr,
		Bias:    l.bias,
		Weights: l.weights,
	})
}

// LoadLinear restores a scorer serialized by Checkpoint.
func LoadLinear(r io.Reader) (*Linear, error) {
	var ck linearCheckpoint
	if err := json.NewDecoder(r).Decode(&ck); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}
	if len(ck.Weights) != ck.Dim {
		return nil, fmt.Errorf("checkpoint has %d weights for dim %d", len(ck.Weights), ck.Dim)
	}
	return &Linear{
		variant: Variant(ck.Variant),
		dim:     ck.Dim,
		lr:      ck.LR,
		bias:    ck.Bias,
		weights: ck.Weights,
	}, nil
}

func (l *Linear) logit(feats map[int]float64) float64 {
	z := l.bias
	for idx, v := range feats {
		z += l.weights[idx] * v
	}
	return z
}

// predict maps a logit into the scorer's output space: raw for the
// bilinear variant, a probability otherwise.
func (l *Linear) predict(z float64) float64 {
	if l.variant == VariantBilinear {
		return z
	}
	return sigmoid(z)
}

// features hashes character trigrams into weight indices. The variant
// decides which texts contribute.
func (l *Linear) features(a *types.Action) map[int]float64 {
	feats := make(map[int]float64)
	switch l.variant {
	case VariantState:
		l.addTrigrams(feats, "n:", a.NextState.Current(), 1)
	case VariantBilinear:
		// diagonal bilinear form: shared buckets, product of the two
		// state feature vectors
		src := make(map[int]float64)
		next := make(map[int]float64)
		l.addTrigrams(src, "b:", a.State.Current(), 1)
		l.addTrigrams(next, "b:", a.NextState.Current(), 1)
		for idx, v := range src {
			if nv, ok := next[idx]; ok {
				feats[idx] = v * nv
			}
		}
	default:
		l.addTrigrams(feats, "s:", a.State.Current(), 1)
		l.addTrigrams(feats, "a:", a.Name, 1)
	}
	return feats
}

func (l *Linear) addTrigrams(feats map[int]float64, prefix, text string, weight float64) {
	padded := "^^" + text + "$$"
	for i := 0; i+3 <= len(padded); i++ {
		h := fnv.New32a()
		h.Write([]byte(prefix))
		h.Write([]byte(padded[i : i+3]))
		feats[int(h.Sum32())%l.dim] += weight
	}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func bce(pred, target float64) float64 {
	const eps = 1e-9
	p := math.Min(math.Max(pred, eps), 1-eps)
	return -(target*math.Log(p) + (1-target)*math.Log(1-p))
}
