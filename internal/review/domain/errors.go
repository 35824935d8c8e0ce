package domain

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrPlanNotFound    = errors.New("business plan not found")
	ErrInfoNotFound    = errors.New("missing information record not found")

	ErrValidation         = errors.New("validation failed")
	ErrInvalidID          = errors.New("invalid id format")
	ErrUnknownDimension   = errors.New("unknown rubric dimension")
	ErrDuplicateDimension = errors.New("duplicate dimension in score set")
	ErrRubricMismatch     = errors.New("declared max score does not match rubric")
	ErrScoreOutOfRange    = errors.New("score out of range")
	ErrEmptyScoreSet      = errors.New("score set must contain at least one dimension")

	ErrConflict         = errors.New("concurrent modification detected")
	ErrStoreUnavailable = errors.New("store unavailable")
)
