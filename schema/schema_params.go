package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
)

// CalculationTolerance bounds the drift allowed between the derived
// unweighted scale and the target maximum.
const CalculationTolerance = 1e-5

// fractionalEpsilon decides whether a derived question count is integral.
const fractionalEpsilon = 1e-9

// ScaleParameters describes the original and target scales of one conversion
// session along with the optional per-question weighting. It is immutable once
// constructed; derived values are computed on demand.
type ScaleParameters struct {
	originalMax           float64
	targetMax             float64
	originalQuestionValue float64
	questionWeights       map[QuestionID]float64
	useWeighted           bool
}

// CalculationCheck is the diagnostic form of VerifyCalculation.
type CalculationCheck struct {
	TotalQuestions      float64 `json:"total_questions"`
	NewQuestionValue    float64 `json:"new_question_value"`
	Product             float64 `json:"product"`
	TargetMax           float64 `json:"target_max"`
	Difference          float64 `json:"difference"`
	Tolerance           float64 `json:"tolerance"`
	FractionalQuestions bool    `json:"fractional_questions"`
	Passed              bool    `json:"passed"`
}

// WeightShare is one row of the weight table.
type WeightShare struct {
	QuestionID   QuestionID `json:"question_id"`
	Weight       float64    `json:"weight"`
	Percent      float64    `json:"percent"`
	ConvertedMax float64    `json:"converted_max"`
}

// NewScaleParameters validates the scale definition and returns the parameter set.
// Non-positive scale values fail with ErrInvalidParameter. When weighting is enabled,
// an empty weight map, a non-positive weight or question id, or a non-positive total
// fails with ErrInvalidWeightConfiguration.
func NewScaleParameters(originalMax, targetMax, originalQuestionValue float64, weights map[QuestionID]float64, useWeighted bool) (*ScaleParameters, error) {
	checks := []struct {
		name  string
		value float64
	}{
		{"original max", originalMax},
		{"target max", targetMax},
		{"original question value", originalQuestionValue},
	}
	for _, c := range checks {
		if !isPositiveFinite(c.value) {
			return nil, fmt.Errorf("%s must be greater than 0 (received %v): %w", c.name, c.value, ErrInvalidParameter)
		}
	}

	copied := make(map[QuestionID]float64, len(weights))
	maps.Copy(copied, weights)

	if useWeighted {
		if len(copied) == 0 {
			return nil, fmt.Errorf("weighted conversion needs at least one question weight: %w", ErrInvalidWeightConfiguration)
		}
		total := 0.0
		for id, w := range copied {
			if id <= 0 {
				return nil, fmt.Errorf("question id must be positive (received %d): %w", id, ErrInvalidWeightConfiguration)
			}
			if !isPositiveFinite(w) {
				return nil, fmt.Errorf("weight for question %d must be greater than 0 (received %v): %w", id, w, ErrInvalidWeightConfiguration)
			}
			total += w
		}
		if !isPositiveFinite(total) {
			return nil, fmt.Errorf("question weights must sum to a positive value (received %v): %w", total, ErrInvalidWeightConfiguration)
		}
	}

	return &ScaleParameters{
		originalMax:           originalMax,
		targetMax:             targetMax,
		originalQuestionValue: originalQuestionValue,
		questionWeights:       copied,
		useWeighted:           useWeighted,
	}, nil
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// OriginalMax returns the maximum attainable score on the source scale.
func (p *ScaleParameters) OriginalMax() float64 { return p.originalMax }

// TargetMax returns the maximum attainable score on the destination scale.
func (p *ScaleParameters) TargetMax() float64 { return p.targetMax }

// OriginalQuestionValue returns the point value of one question on the source scale.
func (p *ScaleParameters) OriginalQuestionValue() float64 { return p.originalQuestionValue }

// UseWeightedQuestions reports whether the weighted algorithm is selected.
func (p *ScaleParameters) UseWeightedQuestions() bool { return p.useWeighted }

// QuestionWeights returns a copy of the configured weights.
func (p *ScaleParameters) QuestionWeights() map[QuestionID]float64 {
	out := make(map[QuestionID]float64, len(p.questionWeights))
	maps.Copy(out, p.questionWeights)
	return out
}

// WeightedQuestionIDs returns the configured question ids in ascending order.
func (p *ScaleParameters) WeightedQuestionIDs() []QuestionID {
	return slices.Sorted(maps.Keys(p.questionWeights))
}

// TotalQuestions is originalMax / originalQuestionValue. It need not be integral.
func (p *ScaleParameters) TotalQuestions() float64 {
	return p.originalMax / p.originalQuestionValue
}

// NewQuestionValue is the uniform per-question value on the target scale.
func (p *ScaleParameters) NewQuestionValue() float64 {
	return p.targetMax / p.TotalQuestions()
}

// QuestionWeight returns the weight for a question. Unweighted sessions and
// unconfigured questions weigh 1.
func (p *ScaleParameters) QuestionWeight(id QuestionID) float64 {
	if !p.useWeighted {
		return 1.0
	}
	if w, ok := p.questionWeights[id]; ok {
		return w
	}
	return 1.0
}

// TotalWeight sums the configured weights.
func (p *ScaleParameters) TotalWeight() float64 {
	total := 0.0
	for _, w := range p.questionWeights {
		total += w
	}
	return total
}

// ConvertedQuestionMax returns the target-scale maximum of a question. In weighted
// mode this is targetMax × weight / sum(configured weights); otherwise it is the
// uniform new question value.
func (p *ScaleParameters) ConvertedQuestionMax(id QuestionID) float64 {
	if !p.useWeighted {
		return p.NewQuestionValue()
	}
	return p.targetMax * p.QuestionWeight(id) / p.TotalWeight()
}

// ConversionFactor maps an original per-question score of the given question
// to the target scale.
func (p *ScaleParameters) ConversionFactor(id QuestionID) float64 {
	if !p.useWeighted {
		return p.targetMax / p.originalMax
	}
	return p.ConvertedQuestionMax(id) / p.originalQuestionValue
}

// VerifyCalculation re-derives totalQuestions × newQuestionValue and compares
// it against targetMax.
func (p *ScaleParameters) VerifyCalculation() bool {
	return p.CheckCalculation().Passed
}

// CheckCalculation reports the unweighted scale relationship in detail.
func (p *ScaleParameters) CheckCalculation() CalculationCheck {
	total := p.TotalQuestions()
	value := p.NewQuestionValue()
	product := total * value
	diff := math.Abs(product - p.targetMax)
	return CalculationCheck{
		TotalQuestions:      total,
		NewQuestionValue:    value,
		Product:             product,
		TargetMax:           p.targetMax,
		Difference:          diff,
		Tolerance:           CalculationTolerance,
		FractionalQuestions: math.Abs(total-math.Round(total)) > fractionalEpsilon,
		Passed:              diff < CalculationTolerance,
	}
}

// WeightTable lists every configured question with its share of the target scale.
// It is nil for unweighted sessions.
func (p *ScaleParameters) WeightTable() []WeightShare {
	if !p.useWeighted {
		return nil
	}
	total := p.TotalWeight()
	ids := p.WeightedQuestionIDs()
	shares := make([]WeightShare, 0, len(ids))
	for _, id := range ids {
		w := p.questionWeights[id]
		shares = append(shares, WeightShare{
			QuestionID:   id,
			Weight:       w,
			Percent:      w / total * 100,
			ConvertedMax: p.ConvertedQuestionMax(id),
		})
	}
	return shares
}

// String renders a one-line description used in headers and logs.
func (p *ScaleParameters) String() string {
	mode := "uniform"
	if p.useWeighted {
		mode = "weighted"
	}
	return fmt.Sprintf("%g → %g (%g pts/question, %s)", p.originalMax, p.targetMax, p.originalQuestionValue, mode)
}

// ScaleSummary is the serialized view of a parameter set.
type ScaleSummary struct {
	OriginalMax           float64          `json:"original_max"`
	TargetMax             float64          `json:"target_max"`
	OriginalQuestionValue float64          `json:"original_question_value"`
	UseWeightedQuestions  bool             `json:"use_weighted_questions"`
	TotalQuestions        float64          `json:"total_questions"`
	NewQuestionValue      float64          `json:"new_question_value"`
	UniformFactor         float64          `json:"uniform_factor"`
	Weights               []WeightShare    `json:"weights,omitempty"`
	Calculation           CalculationCheck `json:"calculation"`
}

// Summary returns the serialized view of the parameters.
func (p *ScaleParameters) Summary() ScaleSummary {
	return ScaleSummary{
		OriginalMax:           p.originalMax,
		TargetMax:             p.targetMax,
		OriginalQuestionValue: p.originalQuestionValue,
		UseWeightedQuestions:  p.useWeighted,
		TotalQuestions:        p.TotalQuestions(),
		NewQuestionValue:      p.NewQuestionValue(),
		UniformFactor:         p.targetMax / p.originalMax,
		Weights:               p.WeightTable(),
		Calculation:           p.CheckCalculation(),
	}
}

// MarshalJSON encodes the parameter summary.
func (p *ScaleParameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Summary())
}
