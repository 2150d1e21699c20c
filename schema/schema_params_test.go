package schema_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/huangsam/quizscale/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScaleParameters_InvalidParameter(t *testing.T) {
	tests := []struct {
		name                       string
		originalMax, targetMax, qv float64
	}{
		{"zero original max", 0, 10, 3},
		{"negative target max", 15, -1, 3},
		{"zero question value", 15, 10, 0},
		{"NaN original max", math.NaN(), 10, 3},
		{"infinite target max", 15, math.Inf(1), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := schema.NewScaleParameters(tt.originalMax, tt.targetMax, tt.qv, nil, false)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, schema.ErrInvalidParameter)
		})
	}
}

func TestNewScaleParameters_InvalidWeightConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		weights map[schema.QuestionID]float64
	}{
		{"nil map", nil},
		{"empty map", map[schema.QuestionID]float64{}},
		{"zero weight", map[schema.QuestionID]float64{1: 0}},
		{"negative weight", map[schema.QuestionID]float64{1: 2, 2: -2}},
		{"non-positive id", map[schema.QuestionID]float64{0: 1}},
		{"NaN weight", map[schema.QuestionID]float64{1: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := schema.NewScaleParameters(15, 10, 3, tt.weights, true)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, schema.ErrInvalidWeightConfiguration)
		})
	}
}

func TestNewScaleParameters_WeightsIgnoredWhenUnweighted(t *testing.T) {
	// Bad weights are not validated when weighting is off.
	p, err := schema.NewScaleParameters(15, 10, 3, map[schema.QuestionID]float64{1: -1}, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.QuestionWeight(1))
	assert.Nil(t, p.WeightTable())
}

func TestScaleParameters_ScenarioA(t *testing.T) {
	p, err := schema.NewScaleParameters(15, 10, 3, nil, false)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, p.TotalQuestions(), 1e-12)
	assert.InDelta(t, 2.0, p.NewQuestionValue(), 1e-12)
	assert.True(t, p.VerifyCalculation())
	assert.InDelta(t, 10.0/15.0, p.ConversionFactor(1), 1e-12)
	assert.InDelta(t, 2.0, p.ConvertedQuestionMax(3), 1e-12)

	check := p.CheckCalculation()
	assert.True(t, check.Passed)
	assert.False(t, check.FractionalQuestions)
	assert.Equal(t, schema.CalculationTolerance, check.Tolerance)
}

func TestScaleParameters_ScenarioC(t *testing.T) {
	// 5 × 1.98 reconciles with 9.9; no special casing of the target.
	p, err := schema.NewScaleParameters(15, 9.9, 3, nil, false)
	require.NoError(t, err)

	assert.InDelta(t, 1.98, p.NewQuestionValue(), 1e-12)
	assert.True(t, p.VerifyCalculation())
}

func TestScaleParameters_ScenarioD(t *testing.T) {
	weights := map[schema.QuestionID]float64{1: 2, 2: 1, 3: 1, 4: 1, 5: 1}
	p, err := schema.NewScaleParameters(15, 10, 3, weights, true)
	require.NoError(t, err)

	assert.InDelta(t, 6.0, p.TotalWeight(), 1e-12)
	assert.InDelta(t, 10.0*2/6, p.ConvertedQuestionMax(1), 1e-12)
	assert.InDelta(t, 10.0/6, p.ConvertedQuestionMax(2), 1e-12)
	assert.InDelta(t, 10.0*2/6/3, p.ConversionFactor(1), 1e-12)

	table := p.WeightTable()
	require.Len(t, table, 5)
	assert.Equal(t, schema.QuestionID(1), table[0].QuestionID)
	assert.InDelta(t, 100.0/3, table[0].Percent, 1e-9)
	total := 0.0
	for _, share := range table {
		total += share.ConvertedMax
	}
	assert.InDelta(t, 10.0, total, 1e-9)
}

func TestScaleParameters_UnconfiguredQuestionWeighsOne(t *testing.T) {
	p, err := schema.NewScaleParameters(15, 10, 3, map[schema.QuestionID]float64{1: 4}, true)
	require.NoError(t, err)

	assert.Equal(t, 4.0, p.QuestionWeight(1))
	assert.Equal(t, 1.0, p.QuestionWeight(9))
	assert.InDelta(t, 10.0/4, p.ConvertedQuestionMax(9), 1e-12)
}

func TestScaleParameters_WeightsAreCopied(t *testing.T) {
	weights := map[schema.QuestionID]float64{1: 2}
	p, err := schema.NewScaleParameters(15, 10, 3, weights, true)
	require.NoError(t, err)

	weights[1] = 100
	assert.Equal(t, 2.0, p.QuestionWeight(1))

	got := p.QuestionWeights()
	got[1] = 50
	assert.Equal(t, 2.0, p.QuestionWeight(1))
}

func TestScaleParameters_AlgebraicIdentity(t *testing.T) {
	cases := [][3]float64{
		{15, 10, 3},
		{10, 7, 3},
		{100, 20, 7},
		{12.5, 9.9, 2.5},
		{1, 1000, 0.3},
	}
	for _, c := range cases {
		p, err := schema.NewScaleParameters(c[0], c[1], c[2], nil, false)
		require.NoError(t, err)
		assert.InDelta(t, c[1], p.TotalQuestions()*p.NewQuestionValue(), 1e-9)
	}
}

func TestScaleParameters_FractionalQuestions(t *testing.T) {
	p, err := schema.NewScaleParameters(10, 7, 3, nil, false)
	require.NoError(t, err)

	check := p.CheckCalculation()
	assert.True(t, check.FractionalQuestions)
	assert.True(t, check.Passed)
}

func TestScaleParameters_MarshalJSON(t *testing.T) {
	p, err := schema.NewScaleParameters(15, 10, 3, map[schema.QuestionID]float64{1: 1, 2: 3}, true)
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 15.0, decoded["original_max"])
	assert.Equal(t, true, decoded["use_weighted_questions"])
	assert.Len(t, decoded["weights"], 2)
	assert.Contains(t, decoded, "calculation")
}

func TestScaleParameters_String(t *testing.T) {
	p, err := schema.NewScaleParameters(15, 10, 3, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "15 → 10 (3 pts/question, uniform)", p.String())
}
