package utils

import "errors"

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrUnauthorized     = errors.New("invalid credentials")
	ErrTaskNotFound     = errors.New("task not found")
	ErrRenderFailed     = errors.New("page render failed")
	ErrNoInstruction    = errors.New("no instruction found on page")
	ErrNoSubmitURL      = errors.New("no submit url found on page")
	ErrCompletionFailed = errors.New("completion request failed")
	ErrSubmitFailed     = errors.New("answer submission failed")
	ErrDeadlineExceeded = errors.New("time limit exceeded")
)
