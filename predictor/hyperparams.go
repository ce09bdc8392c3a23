package predictor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/nameml/pkg/errors"
)

// Hyperparameter keys.
const (
	ParamNumTrees        = "numTrees"
	ParamMaxDepth        = "maxDepth"
	ParamLearningRate    = "learningRate"
	ParamHiddenLayers    = "hiddenLayers"
	ParamNeuronsPerLayer = "neuronsPerLayer"
	ParamEpochs          = "epochs"

	// ParamEarlyStoppingRounds stops boosting or network training after
	// that many iterations without a lower loss. 0 disables it.
	ParamEarlyStoppingRounds = "earlyStoppingRounds"
	// ParamTimeLimitMs stops boosting or network training once that many
	// milliseconds have passed, keeping the model trained so far.
	ParamTimeLimitMs = "timeLimitMs"
)

// hyperparams reads a loosely typed bag. JSON numbers arrive as float64,
// form values as strings, and Go callers pass ints.
type hyperparams map[string]any

func (h hyperparams) number(key string, def float64) (float64, error) {
	raw, ok := h[key]
	if !ok || raw == nil {
		return def, nil
	}
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint64:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, errors.NewValidationError(key, "not a number", raw)
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, errors.NewValidationError(key, "not a number", raw)
		}
		v = f
	default:
		return 0, errors.NewValidationError(key, "not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.NewValidationError(key, "must be finite", raw)
	}
	return v, nil
}

func (h hyperparams) integer(key string, def int) (int, error) {
	v, err := h.number(key, float64(def))
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, errors.NewValidationError(key, "must be an integer", h[key])
	}
	return int(v), nil
}

// positiveInt requires v >= 1.
func (h hyperparams) positiveInt(key string, def int) (int, error) {
	v, err := h.integer(key, def)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, errors.NewValidationError(key, "must be at least 1", v)
	}
	return v, nil
}

func (h hyperparams) positiveFloat(key string, def float64) (float64, error) {
	v, err := h.number(key, def)
	if err != nil {
		return 0, err
	}
	if !(v > 0) {
		return 0, errors.NewValidationError(key, "must be positive", v)
	}
	return v, nil
}

// nonNegativeInt requires v >= 0.
func (h hyperparams) nonNegativeInt(key string, def int) (int, error) {
	v, err := h.integer(key, def)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.NewValidationError(key, "must not be negative", v)
	}
	return v, nil
}
