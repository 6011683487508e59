package project

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateStage indicates two stages sharing an id.
	ErrDuplicateStage = errors.New("duplicate stage id")
	// ErrDuplicatePart indicates two parts sharing an id.
	ErrDuplicatePart = errors.New("duplicate part id")
	// ErrUnknownStage indicates a part or stage referencing a stage id
	// that does not exist.
	ErrUnknownStage = errors.New("unknown stage id")
	// ErrStageCycle is the sentinel for cyclic stage parentage.
	ErrStageCycle = errors.New("stage tree contains a cycle")
	// ErrStageWithoutParts is the sentinel for a stage whose subtree
	// holds no part.
	ErrStageWithoutParts = errors.New("stage subtree contains no parts")
)

// CycleError reports a stage caught inside a parentage cycle.
type CycleError struct {
	StageID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("stage tree contains a cycle through %q", e.StageID)
}

// Is matches the ErrStageCycle sentinel.
func (e *CycleError) Is(target error) bool { return target == ErrStageCycle }

// EmptyStageError reports a stage whose subtree holds no part.
type EmptyStageError struct {
	StageID string
}

func (e *EmptyStageError) Error() string {
	return fmt.Sprintf("stage %q has no parts in its subtree", e.StageID)
}

// Is matches the ErrStageWithoutParts sentinel.
func (e *EmptyStageError) Is(target error) bool { return target == ErrStageWithoutParts }
