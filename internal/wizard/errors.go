package wizard

import "errors"

var (
	// ErrInvalidStage is returned when a trigger fires outside its stage
	ErrInvalidStage = errors.New("action is not available in the current stage")
	// ErrNoAnswers is returned when questions are completed without answers
	ErrNoAnswers = errors.New("at least one answered question is required")
	// ErrUnknownCategory is returned when a selected category is not in the catalog
	ErrUnknownCategory = errors.New("unknown category")
)
