package core

import (
	"testing"

	"github.com/huangsam/quizscale/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floatDelta = 1e-9

func mustParams(t *testing.T, originalMax, targetMax, questionValue float64, weights map[schema.QuestionID]float64, weighted bool) *schema.ScaleParameters {
	t.Helper()
	p, err := schema.NewScaleParameters(originalMax, targetMax, questionValue, weights, weighted)
	require.NoError(t, err)
	return p
}

func student(id string, total float64, scores map[schema.QuestionID]float64) schema.StudentRecord {
	return schema.StudentRecord{
		StudentIdentity:    schema.StudentIdentity{StudentID: id, StudentName: "Student " + id},
		OriginalTotalScore: total,
		Responses:          map[schema.QuestionID]string{},
		QuestionScores:     scores,
	}
}

func assertScores(t *testing.T, expected, actual map[schema.QuestionID]float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for id, want := range expected {
		got, ok := actual[id]
		require.True(t, ok, "question %d missing", id)
		assert.InDelta(t, want, got, floatDelta, "question %d", id)
	}
}

func TestConvert_UniformScenarios(t *testing.T) {
	params := mustParams(t, 15, 10, 3, nil, false)

	tests := []struct {
		name          string
		record        schema.StudentRecord
		expectedTotal float64
		expected      map[schema.QuestionID]float64
	}{
		{
			name:          "four of five correct",
			record:        student("A", 12, map[schema.QuestionID]float64{1: 3, 2: 3, 3: 3, 4: 3, 5: 0}),
			expectedTotal: 8,
			expected:      map[schema.QuestionID]float64{1: 2, 2: 2, 3: 2, 4: 2, 5: 0},
		},
		{
			name:          "three of five correct",
			record:        student("B", 9, map[schema.QuestionID]float64{1: 3, 2: 0, 3: 3, 4: 3, 5: 0}),
			expectedTotal: 6,
			expected:      map[schema.QuestionID]float64{1: 2, 2: 0, 3: 2, 4: 2, 5: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Convert([]schema.StudentRecord{tt.record}, params)
			require.Len(t, out, 1)
			assert.InDelta(t, tt.expectedTotal, out[0].ConvertedTotalScore, floatDelta)
			assertScores(t, tt.expected, out[0].ConvertedQuestionScores)
			assert.True(t, Verify(out))
		})
	}
}

func TestConvert_Weighted(t *testing.T) {
	weights := map[schema.QuestionID]float64{1: 2, 2: 1, 3: 1, 4: 1, 5: 1}
	params := mustParams(t, 15, 10, 3, weights, true)

	out := Convert([]schema.StudentRecord{student("D", 3, map[schema.QuestionID]float64{1: 3})}, params)
	require.Len(t, out, 1)
	assert.InDelta(t, 10.0/3.0, out[0].ConvertedQuestionScores[1], floatDelta)
	assert.InDelta(t, 10.0/3.0, out[0].ConvertedTotalScore, floatDelta)
}

func TestConvert_WeightedTotalIsQuestionSum(t *testing.T) {
	weights := map[schema.QuestionID]float64{1: 3, 2: 1, 3: 0.5}
	params := mustParams(t, 12, 20, 3, weights, true)

	records := []schema.StudentRecord{
		student("1", 99, map[schema.QuestionID]float64{1: 3, 2: 1.5, 3: 0, 4: 3}),
		student("2", 0, map[schema.QuestionID]float64{2: 3}),
	}
	out := Convert(records, params)
	for _, rec := range out {
		assert.InDelta(t, rec.ConvertedQuestionSum(), rec.ConvertedTotalScore, floatDelta)
	}
	assert.True(t, Verify(out))

	// Unconfigured question 4 converts with weight 1.
	assert.InDelta(t, 3*params.ConversionFactor(4), out[0].ConvertedQuestionScores[4], floatDelta)
}

func TestConvert_Identity(t *testing.T) {
	params := mustParams(t, 10, 10, 2, nil, false)
	rec := student("I", 7, map[schema.QuestionID]float64{1: 2, 2: 1, 3: 2, 4: 2, 5: 0})

	out := Convert([]schema.StudentRecord{rec}, params)
	require.Len(t, out, 1)
	assert.InDelta(t, 7.0, out[0].ConvertedTotalScore, floatDelta)
	assertScores(t, rec.QuestionScores, out[0].ConvertedQuestionScores)
}

func TestConvert_AbsencePropagates(t *testing.T) {
	params := mustParams(t, 15, 10, 3, nil, false)
	rec := student("X", 6, map[schema.QuestionID]float64{1: 3, 3: 3})
	rec.Responses = map[schema.QuestionID]string{1: "A", 2: "skipped"}

	out := Convert([]schema.StudentRecord{rec}, params)
	require.Len(t, out, 1)
	_, ok := out[0].ConvertedQuestionScores[2]
	assert.False(t, ok, "question without a score must not gain a converted score")
	assert.Len(t, out[0].ConvertedQuestionScores, 2)
	assert.Equal(t, "skipped", out[0].Responses[2])
}

func TestConvert_OrderAndInputsPreserved(t *testing.T) {
	params := mustParams(t, 15, 10, 3, nil, false)
	records := []schema.StudentRecord{
		student("first", 3, map[schema.QuestionID]float64{1: 3}),
		student("second", 6, map[schema.QuestionID]float64{1: 3, 2: 3}),
		student("third", 0, map[schema.QuestionID]float64{}),
	}

	out := Convert(records, params)
	require.Len(t, out, 3)
	for i := range records {
		assert.Equal(t, records[i].StudentID, out[i].StudentID)
	}

	out[0].QuestionScores[1] = 100
	assert.Equal(t, 3.0, records[0].QuestionScores[1], "converted records must not alias inputs")
}

func TestConvert_Empty(t *testing.T) {
	params := mustParams(t, 15, 10, 3, nil, false)
	out := Convert(nil, params)
	assert.Empty(t, out)
	assert.True(t, Verify(out))
}
