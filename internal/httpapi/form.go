package httpapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/schema"
)

// parseOverrides reads the scale fields shared by form posts and query strings.
func parseOverrides(get func(string) string) (contract.ScaleOverrides, error) {
	var (
		o   contract.ScaleOverrides
		err error
	)
	if o.OriginalMax, err = parseFloatField(get, "original_max"); err != nil {
		return o, err
	}
	if o.TargetMax, err = parseFloatField(get, "target_max"); err != nil {
		return o, err
	}
	if o.QuestionValue, err = parseFloatField(get, "question_value"); err != nil {
		return o, err
	}

	if v := get("use_weighted"); v != "" {
		weighted, err := contract.ParseBoolString(v)
		if err != nil {
			return o, fmt.Errorf("%w: use_weighted: %v", schema.ErrInvalidParameter, err)
		}
		o.Weighted = &weighted
	}

	if v := strings.TrimSpace(get("weights")); v != "" {
		weights, err := contract.ParseWeightsInput(v)
		if err != nil {
			return o, fmt.Errorf("%w: weights: %v", schema.ErrInvalidWeightConfiguration, err)
		}
		o.Weights = weights
	}
	return o, nil
}

// parseFloatField returns nil only when the field is missing or blank.
func parseFloatField(get func(string) string, name string) (*float64, error) {
	v := strings.TrimSpace(get(name))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number (received %q)", schema.ErrInvalidParameter, name, v)
	}
	return &f, nil
}
