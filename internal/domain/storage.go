package domain

import (
	"errors"
	"fmt"
)

// ErrNotPending is returned when a conditional status transition finds no pending row.
var ErrNotPending = errors.New("record is not pending")

// ErrDuplicate is returned when a unique index rejects a write.
type ErrDuplicate struct {
	Field string
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// IsDuplicate reports whether err is a unique violation on field.
// An empty field matches any duplicate.
func IsDuplicate(err error, field string) bool {
	var dup *ErrDuplicate
	if !errors.As(err, &dup) {
		return false
	}
	return field == "" || dup.Field == field
}

// QuestionFilter narrows question listings.
type QuestionFilter int

const (
	QuestionsAll QuestionFilter = iota
	QuestionsWithVideo
	QuestionsTextOnly
)
