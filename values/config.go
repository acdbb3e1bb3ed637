package values

import (
	"fmt"

	"solveragent/types"
)

// Config selects a concrete value function. The set of variants is
// closed: dispatch happens here at configuration-parse time, adding a
// scorer means adding a case.
type Config struct {
	Type         string  `yaml:"type" json:"type"`
	Dim          int     `yaml:"dim" json:"dim"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
	Seed         int64   `yaml:"seed" json:"seed"`
}

// New builds the scorer named by the config.
func New(cfg Config) (types.QFunction, error) {
	switch cfg.Type {
	case "action", "":
		return NewLinear(VariantAction, cfg.Dim, cfg.LearningRate), nil
	case "state":
		return NewLinear(VariantState, cfg.Dim, cfg.LearningRate), nil
	case "bilinear":
		return NewLinear(VariantBilinear, cfg.Dim, cfg.LearningRate), nil
	case "random":
		return NewRandom(cfg.Seed), nil
	case "inverse-length":
		return InverseLength{}, nil
	case "cube-stickers":
		return CubeStickers{}, nil
	default:
		return nil, fmt.Errorf("unknown value function type %q", cfg.Type)
	}
}
