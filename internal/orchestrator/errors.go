// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/vaxtag/internal/runner"
	"github.com/matt-FFFFFF/vaxtag/internal/script"
)

var (
	// ErrRunInProgress is returned by Start while another run is active.
	ErrRunInProgress = errors.New("a run is already in progress")
	// ErrNoWorkItems is returned when the request has no tags after trimming blanks.
	ErrNoWorkItems = errors.New("no tags to process")
	// ErrBlankLabel is returned when the request has no village name.
	ErrBlankLabel = script.ErrBlankLabel
	// ErrInterpreterNotFound is returned when the automation interpreter is missing.
	ErrInterpreterNotFound = runner.ErrInterpreterNotFound
	// ErrStopped is the cancellation cause of a run stopped by the operator.
	ErrStopped = errors.New("run stopped by operator")
)

// ValidationError is returned when a start request is rejected before the run begins.
type ValidationError struct {
	Err error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid run request: %v", e.Err)
}

// Unwrap returns the rejected condition.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BatchError is returned when a batch fails. Err wraps the runner or storage error.
type BatchError struct {
	Batch int
	Err   error
}

// Error implements error.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d failed: %v", e.Batch, e.Err)
}

// Unwrap returns the underlying error.
func (e *BatchError) Unwrap() error {
	return e.Err
}
