package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlatQuestion carries the projected attributes of one question.
// A nil pointer means the attribute was absent from the record.
type FlatQuestion struct {
	ID             QuestionID
	Response       *string
	OriginalScore  *float64
	ConvertedScore *float64
}

// FlatRow is one presentation-ready row per student.
type FlatRow struct {
	Team           string
	StudentName    string
	FirstName      string
	LastName       string
	Email          string
	StudentID      string
	OriginalScore  float64
	ConvertedScore float64
	Questions      []FlatQuestion
}

// FlatField is one named cell of a FlatRow.
type FlatField struct {
	Name  string
	Value any
}

// ResponseColumn returns the projected response column name for a question.
func ResponseColumn(id QuestionID) string { return fmt.Sprintf("Q%d Response", id) }

// OriginalScoreColumnFor returns the projected original score column name for a question.
func OriginalScoreColumnFor(id QuestionID) string { return fmt.Sprintf("Q%d Original Score", id) }

// ConvertedScoreColumnFor returns the projected converted score column name for a question.
func ConvertedScoreColumnFor(id QuestionID) string { return fmt.Sprintf("Q%d Converted Score", id) }

// FlatHeader returns the stable export column order: identity columns, totals,
// then per-question triplets in the supplied order.
func FlatHeader(questionIDs []QuestionID) []string {
	header := []string{
		TeamColumn, StudentNameColumn, FirstNameColumn, LastNameColumn, EmailColumn, StudentIDColumn,
		OriginalScoreColumn, ConvertedScoreColumn,
	}
	for _, id := range questionIDs {
		header = append(header, ResponseColumn(id), OriginalScoreColumnFor(id), ConvertedScoreColumnFor(id))
	}
	return header
}

// Fields lists the cells present in the row in column order.
// Absent question attributes are omitted.
func (r FlatRow) Fields() []FlatField {
	fields := []FlatField{
		{TeamColumn, r.Team},
		{StudentNameColumn, r.StudentName},
		{FirstNameColumn, r.FirstName},
		{LastNameColumn, r.LastName},
		{EmailColumn, r.Email},
		{StudentIDColumn, r.StudentID},
		{OriginalScoreColumn, r.OriginalScore},
		{ConvertedScoreColumn, r.ConvertedScore},
	}
	for _, q := range r.Questions {
		if q.Response != nil {
			fields = append(fields, FlatField{ResponseColumn(q.ID), *q.Response})
		}
		if q.OriginalScore != nil {
			fields = append(fields, FlatField{OriginalScoreColumnFor(q.ID), *q.OriginalScore})
		}
		if q.ConvertedScore != nil {
			fields = append(fields, FlatField{ConvertedScoreColumnFor(q.ID), *q.ConvertedScore})
		}
	}
	return fields
}

// Lookup returns the value of a projected column and whether it is present.
func (r FlatRow) Lookup(column string) (any, bool) {
	for _, f := range r.Fields() {
		if f.Name == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Cells renders the row against a header, leaving absent columns blank.
func (r FlatRow) Cells(header []string, fmtFloat func(float64) string) []string {
	present := make(map[string]any, len(header))
	for _, f := range r.Fields() {
		present[f.Name] = f.Value
	}
	cells := make([]string, len(header))
	for i, col := range header {
		switch v := present[col].(type) {
		case string:
			cells[i] = v
		case float64:
			cells[i] = fmtFloat(v)
		}
	}
	return cells
}

// MarshalJSON writes the row as an object whose keys follow column order.
func (r FlatRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		b, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode column %s: %w", f.Name, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
