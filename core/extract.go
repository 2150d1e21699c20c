package core

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/quizscale/schema"
)

// questionColumns maps each valid question id to its input columns.
type questionColumns struct {
	response string
	score    string
}

// ExtractRecords turns sheet rows into student records.
// Malformed question columns are skipped with a warning. A row whose total
// score cannot be parsed is skipped with a warning. An unparsable question
// score counts as 0 with a warning. Empty cells are treated as absent.
func ExtractRecords(sheet schema.Sheet) ([]schema.StudentRecord, []schema.QuestionID, []string, error) {
	var missing []string
	for _, col := range schema.RequiredColumns {
		if !sheet.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s", schema.ErrMissingColumns, strings.Join(missing, ", "))
	}

	columns, warnings := scanQuestionColumns(sheet.Columns)
	if len(columns) == 0 {
		return nil, nil, warnings, fmt.Errorf("%w: expected columns like 1_Response and 1_Score", schema.ErrNoQuestionColumns)
	}
	ids := slices.Sorted(maps.Keys(columns))

	records := make([]schema.StudentRecord, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		rec, rowWarnings, err := extractRow(row, ids, columns)
		warnings = append(warnings, rowWarnings...)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d skipped: %v", i+1, err))
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ids, warnings, schema.ErrNoRecords
	}
	return records, ids, warnings, nil
}

// scanQuestionColumns finds {id}_Response and {id}_Score columns.
func scanQuestionColumns(header []string) (map[schema.QuestionID]questionColumns, []string) {
	columns := make(map[schema.QuestionID]questionColumns)
	var warnings []string
	for _, col := range header {
		if !schema.IsQuestionColumn(col) {
			continue
		}
		id, kind, ok := schema.ParseQuestionColumn(col)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("skipping column %q: could not extract question number", col))
			continue
		}
		qc := columns[id]
		switch kind {
		case schema.ResponseKind:
			qc.response = col
		case schema.ScoreKind:
			qc.score = col
		}
		columns[id] = qc
	}
	return columns, warnings
}

// extractRow builds one record from a row.
func extractRow(row schema.Row, ids []schema.QuestionID, columns map[schema.QuestionID]questionColumns) (schema.StudentRecord, []string, error) {
	cell := func(col string) string {
		v, _ := row.Get(col)
		return strings.TrimSpace(v)
	}

	totalStr := cell(schema.ScoreColumn)
	total, err := parseScore(totalStr)
	if err != nil {
		return schema.StudentRecord{}, nil, fmt.Errorf("invalid %s %q", schema.ScoreColumn, totalStr)
	}

	rec := schema.StudentRecord{
		StudentIdentity: schema.StudentIdentity{
			StudentID:   cell(schema.StudentIDColumn),
			StudentName: cell(schema.StudentNameColumn),
			FirstName:   cell(schema.FirstNameColumn),
			LastName:    cell(schema.LastNameColumn),
			Team:        cell(schema.TeamColumn),
			Email:       cell(schema.EmailColumn),
		},
		OriginalTotalScore: total,
		Responses:          make(map[schema.QuestionID]string),
		QuestionScores:     make(map[schema.QuestionID]float64),
	}

	var warnings []string
	for _, id := range ids {
		qc := columns[id]
		if qc.response != "" {
			if v := cell(qc.response); v != "" {
				rec.Responses[id] = v
			}
		}
		if qc.score == "" {
			continue
		}
		raw := cell(qc.score)
		if raw == "" {
			continue
		}
		score, err := parseScore(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid score %q for student %s, question %d: using 0", raw, rec.StudentName, id))
			score = 0
		}
		rec.QuestionScores[id] = score
	}
	return rec, warnings, nil
}

// parseScore parses a numeric cell. Empty and non-finite values are rejected.
func parseScore(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
