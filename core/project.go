package core

import (
	"maps"
	"math"
	"slices"

	"github.com/huangsam/quizscale/schema"
)

// displayDecimals is the rounding applied at the presentation boundary.
const displayDecimals = 2

// RoundForDisplay rounds half away from zero to two decimals.
func RoundForDisplay(v float64) float64 {
	scale := math.Pow(10, displayDecimals)
	return math.Round(v*scale) / scale
}

// CollectQuestionIDs returns the union of question ids across records, ascending.
func CollectQuestionIDs[T interface{ QuestionIDs() []schema.QuestionID }](records []T) []schema.QuestionID {
	seen := make(map[schema.QuestionID]struct{})
	for _, rec := range records {
		for _, id := range rec.QuestionIDs() {
			seen[id] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Project flattens converted records into display rows. Questions follow the
// order of questionIDs; attributes a record lacks are left out of its row.
func Project(records []schema.ConvertedRecord, questionIDs []schema.QuestionID) []schema.FlatRow {
	rows := make([]schema.FlatRow, 0, len(records))
	for _, rec := range records {
		row := schema.FlatRow{
			Team:           rec.Team,
			StudentName:    rec.StudentName,
			FirstName:      rec.FirstName,
			LastName:       rec.LastName,
			Email:          rec.Email,
			StudentID:      rec.StudentID,
			OriginalScore:  rec.OriginalTotalScore,
			ConvertedScore: RoundForDisplay(rec.ConvertedTotalScore),
		}
		for _, id := range questionIDs {
			q := schema.FlatQuestion{ID: id}
			if resp, ok := rec.Responses[id]; ok {
				q.Response = &resp
			}
			if orig, ok := rec.QuestionScores[id]; ok {
				q.OriginalScore = &orig
			}
			if conv, ok := rec.ConvertedQuestionScores[id]; ok {
				rounded := RoundForDisplay(conv)
				q.ConvertedScore = &rounded
			}
			if q.Response == nil && q.OriginalScore == nil && q.ConvertedScore == nil {
				continue
			}
			row.Questions = append(row.Questions, q)
		}
		rows = append(rows, row)
	}
	return rows
}
