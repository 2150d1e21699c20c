package schema

import (
	"strconv"
	"strings"
)

// ParseQuestionColumn splits a column named {id}_Response or {id}_Score.
// The id is the token before the first underscore and must be a positive integer.
// ok is false for any other column.
func ParseQuestionColumn(column string) (id QuestionID, kind QuestionKind, ok bool) {
	name := strings.TrimSpace(column)
	switch {
	case strings.HasSuffix(name, "_"+string(ResponseKind)):
		kind = ResponseKind
	case strings.HasSuffix(name, "_"+string(ScoreKind)):
		kind = ScoreKind
	default:
		return 0, "", false
	}

	prefix, _, found := strings.Cut(name, "_")
	if !found {
		return 0, "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(prefix))
	if err != nil || n <= 0 {
		return 0, kind, false
	}
	return QuestionID(n), kind, true
}

// IsQuestionColumn reports whether the column belongs to a question family,
// whether or not its id prefix is valid.
func IsQuestionColumn(column string) bool {
	name := strings.TrimSpace(column)
	return strings.HasSuffix(name, "_"+string(ResponseKind)) || strings.HasSuffix(name, "_"+string(ScoreKind))
}

// QuestionColumn builds the input column name for a question.
func QuestionColumn(id QuestionID, kind QuestionKind) string {
	return strconv.Itoa(int(id)) + "_" + string(kind)
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
