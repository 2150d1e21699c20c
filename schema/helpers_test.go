package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuestionColumn(t *testing.T) {
	tests := []struct {
		column string
		id     QuestionID
		kind   QuestionKind
		ok     bool
	}{
		// Valid columns
		{"1_Response", 1, ResponseKind, true},
		{"12_Score", 12, ScoreKind, true},
		{" 3_Score ", 3, ScoreKind, true},           // surrounding spaces
		{"4_extra_Response", 4, ResponseKind, true}, // id is the first token only

		// Malformed prefixes
		{"Q1_Response", 0, ResponseKind, false},
		{"abc_Score", 0, ScoreKind, false},
		{"0_Score", 0, ScoreKind, false},  // ids start at 1
		{"-2_Score", 0, ScoreKind, false}, // negative ids

		// Not question columns at all
		{"Score", 0, "", false},
		{"Student Name", 0, "", false},
		{"1_Comment", 0, "", false},
		{"1_Scores", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			id, kind, ok := ParseQuestionColumn(tt.column)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestIsQuestionColumn(t *testing.T) {
	assert.True(t, IsQuestionColumn("1_Response"))
	assert.True(t, IsQuestionColumn("bad_Score"))
	assert.False(t, IsQuestionColumn("Score"))
	assert.False(t, IsQuestionColumn("Team"))
}

func TestQuestionColumn(t *testing.T) {
	assert.Equal(t, "7_Response", QuestionColumn(7, ResponseKind))
	assert.Equal(t, "7_Score", QuestionColumn(7, ScoreKind))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	if p := StringPtr("x"); assert.NotNil(t, p) {
		assert.Equal(t, "x", *p)
	}
}
