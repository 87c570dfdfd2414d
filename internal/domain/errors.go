package domain

import "errors"

var (
	ErrSubmissionInvalid = errors.New("submission invalid")
	ErrPolicyViolation   = errors.New("policy violation")
	ErrPipelineBusy      = errors.New("pipeline run already active for submission")
	ErrQueuePersistence  = errors.New("offline queue persistence failed")
	ErrNotFound          = errors.New("not found")
)
