// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a single update about a run.
type Event struct {
	RunID     string    // Identifier of the run the event belongs to
	Type      EventType // What happened
	Message   string    // Human-readable status message
	Timestamp time.Time // When the event occurred
	Data      EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventScriptSelected announces which script source a batch will run.
	EventScriptSelected EventType = iota
	// EventBatchStarted indicates the automation process for a batch has been started.
	EventBatchStarted
	// EventOutput carries one line of automation process output.
	EventOutput
	// EventBatchProgress indicates a batch finished successfully.
	EventBatchProgress
	// EventConfirmationRequired asks the operator to submit the form and confirm.
	EventConfirmationRequired
	// EventConfirmed indicates the operator confirmed the manual submission.
	EventConfirmed
	// EventCompleted indicates every batch finished.
	EventCompleted
	// EventStopped indicates the operator stopped the run.
	EventStopped
	// EventFailed indicates the run failed.
	EventFailed
)

// String returns the wire name of the event type.
func (et EventType) String() string {
	switch et {
	case EventScriptSelected:
		return "script-selected"
	case EventBatchStarted:
		return "batch-started"
	case EventOutput:
		return "output"
	case EventBatchProgress:
		return "batch-progress"
	case EventConfirmationRequired:
		return "manual-submission-required"
	case EventConfirmed:
		return "manual-submission-complete"
	case EventCompleted:
		return "completed"
	case EventStopped:
		return "stopped"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further events follow this one for the run.
func (et EventType) IsTerminal() bool {
	return et == EventCompleted || et == EventStopped || et == EventFailed
}

// EventData holds the payload of an event. Only the fields relevant to the event type are set.
type EventData struct {
	// EventScriptSelected
	Script *ScriptInfo

	// EventOutput
	Output *OutputLine

	// EventBatchProgress
	Progress *BatchProgress

	// EventConfirmationRequired
	Confirmation *ConfirmationRequest

	// EventCompleted, EventStopped
	Summary *Summary

	// EventFailed
	Error error
}

// ScriptInfo describes the script chosen for a batch.
type ScriptInfo struct {
	Batch      int
	Customized bool
	Path       string
}

// OutputLine is one line written by the automation process.
type OutputLine struct {
	Batch    int
	Line     string
	IsStderr bool
}

// BatchProgress is reported after each successful batch.
type BatchProgress struct {
	Completed          int // Batches completed so far
	Total              int // Batches in the plan
	CurrentBatch       int // Number of the batch that just finished
	TagsInCurrentBatch int
}

// ConfirmationRequest is reported when the run pauses for the operator.
type ConfirmationRequest struct {
	BatchNumber   int
	TotalBatches  int
	CompletedTags int
	TotalTags     int
	NextBatchSize int
}

// Summary describes a finished or stopped run.
type Summary struct {
	TotalBatches      int
	CompletedBatches  int
	TotalTags         int
	Village           string
	CustomizedBatches []int
}
