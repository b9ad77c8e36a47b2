package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the store, the analysis stages and the API layer.
// Callers match with errors.Is; stages wrap these with detail.
var (
	// ErrEmptyCorpus means there was no non-empty text to vectorize.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrClustering means the input cannot be partitioned into K clusters.
	ErrClustering = errors.New("clustering failed")
	// ErrLabeling means the text-generation service failed or returned nothing usable.
	ErrLabeling = errors.New("labeling failed")
	// ErrStorage means the persistent store could not be read or written.
	ErrStorage = errors.New("storage failure")
	// ErrCommentNotFound means no comment has the requested id.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrEmptyComment means a submitted text was blank after trimming.
	ErrEmptyComment = errors.New("empty text")
)

// RunStage is a state of the classification state machine.
type RunStage string

const (
	StageIdle        RunStage = "idle"
	StageVectorizing RunStage = "vectorizing"
	StageClustering  RunStage = "clustering"
	StageProjecting  RunStage = "projecting"
	StageLabeling    RunStage = "labeling"
	StageMerging     RunStage = "merging"
	StagePersisted   RunStage = "persisted"
	StageFailed      RunStage = "failed"
)

// PipelineError records the stage at which a run was aborted.
type PipelineError struct {
	Stage RunStage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err with the stage it happened in.
func NewPipelineError(stage RunStage, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Stage: stage, Err: err}
}
