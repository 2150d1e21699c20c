package contract

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/huangsam/quizscale/schema"
	"github.com/tidwall/gjson"
)

// ScaleOverrides carries per-request scale values from the HTTP and MCP surfaces.
// Nil fields fall back to the base configuration. A supplied zero is kept
// and rejected by validation.
type ScaleOverrides struct {
	OriginalMax   *float64
	TargetMax     *float64
	QuestionValue *float64
	Weighted      *bool
	Weights       map[schema.QuestionID]float64
}

// IsEmpty reports whether no override was supplied.
func (o ScaleOverrides) IsEmpty() bool {
	return o.OriginalMax == nil && o.TargetMax == nil && o.QuestionValue == nil && o.Weighted == nil && o.Weights == nil
}

// RevalidateScale applies overrides on top of cfg.Params and stores the
// validated result back in cfg. A config without base params needs all three
// scale values from the overrides.
func RevalidateScale(cfg *Config, o ScaleOverrides) error {
	if o.IsEmpty() {
		if cfg.Params == nil {
			return fmt.Errorf("%w: original max, target max and question value are required", schema.ErrInvalidParameter)
		}
		return nil
	}

	var (
		originalMax, targetMax, questionValue float64
		weighted                              bool
		weights                               = make(map[schema.QuestionID]float64)
	)
	if base := cfg.Params; base != nil {
		originalMax = base.OriginalMax()
		targetMax = base.TargetMax()
		questionValue = base.OriginalQuestionValue()
		weighted = base.UseWeightedQuestions()
		maps.Copy(weights, base.QuestionWeights())
	}

	if o.OriginalMax != nil {
		originalMax = *o.OriginalMax
	}
	if o.TargetMax != nil {
		targetMax = *o.TargetMax
	}
	if o.QuestionValue != nil {
		questionValue = *o.QuestionValue
	}
	if o.Weights != nil {
		weights = o.Weights
	}
	if o.Weighted != nil {
		weighted = *o.Weighted
	}

	params, err := schema.NewScaleParameters(originalMax, targetMax, questionValue, weights, weighted)
	if err != nil {
		return err
	}
	cfg.Params = params
	return nil
}

// ParseWeightsInput accepts either a JSON object like {"1": 2, "2": 1}
// or the CLI form "1:2,2:1".
func ParseWeightsInput(v string) (map[schema.QuestionID]float64, error) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "{") {
		return ParseQuestionWeights(v)
	}
	if !gjson.Valid(v) {
		return nil, fmt.Errorf("malformed JSON object")
	}

	weights := make(map[schema.QuestionID]float64)
	var err error
	gjson.Parse(v).ForEach(func(key, value gjson.Result) bool {
		id, convErr := strconv.Atoi(strings.TrimSpace(key.String()))
		if convErr != nil || id <= 0 {
			err = fmt.Errorf("invalid question number '%s', must be a positive integer", key.String())
			return false
		}
		if value.Type != gjson.Number {
			err = fmt.Errorf("weight for question %d must be a number", id)
			return false
		}
		weights[schema.QuestionID(id)] = value.Float()
		return true
	})
	if err != nil {
		return nil, err
	}
	return weights, nil
}
