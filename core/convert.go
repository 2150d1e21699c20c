package core

import (
	"maps"

	"github.com/huangsam/quizscale/schema"
)

// Convert maps every record onto the target scale described by params.
// Output order matches input order and inputs are never mutated.
func Convert(records []schema.StudentRecord, params *schema.ScaleParameters) []schema.ConvertedRecord {
	out := make([]schema.ConvertedRecord, len(records))
	for i, rec := range records {
		out[i] = convertRecord(rec, params)
	}
	return out
}

// convertRecord applies the uniform or weighted algorithm to a single record.
func convertRecord(rec schema.StudentRecord, params *schema.ScaleParameters) schema.ConvertedRecord {
	converted := make(map[schema.QuestionID]float64, len(rec.QuestionScores))
	for id, score := range rec.QuestionScores {
		converted[id] = score * params.ConversionFactor(id)
	}

	var total float64
	if params.UseWeightedQuestions() {
		// Weighted totals derive from the converted questions.
		for _, s := range converted {
			total += s
		}
	} else {
		total = rec.OriginalTotalScore * (params.TargetMax() / params.OriginalMax())
	}

	return schema.ConvertedRecord{
		StudentRecord:           cloneRecord(rec),
		ConvertedTotalScore:     total,
		ConvertedQuestionScores: converted,
	}
}

// cloneRecord copies the maps so converted records never alias their inputs.
func cloneRecord(rec schema.StudentRecord) schema.StudentRecord {
	out := rec
	if rec.Responses != nil {
		out.Responses = maps.Clone(rec.Responses)
	}
	if rec.QuestionScores != nil {
		out.QuestionScores = maps.Clone(rec.QuestionScores)
	}
	return out
}
