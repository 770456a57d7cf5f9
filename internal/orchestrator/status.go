// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

// Status is the state of the orchestrator.
type Status int

const (
	// StatusIdle means no run has started.
	StatusIdle Status = iota
	// StatusRunning means a batch is being prepared or executed.
	StatusRunning
	// StatusAwaitingConfirmation means the run waits for the operator to submit the form.
	StatusAwaitingConfirmation
	// StatusCompleted means every batch of the last run finished.
	StatusCompleted
	// StatusCancelled means the last run was stopped.
	StatusCancelled
	// StatusFailed means the last run failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusAwaitingConfirmation:
		return "awaiting-confirmation"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Active reports whether a run is in progress.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusAwaitingConfirmation
}

// Outcome is how a run ended.
type Outcome int

const (
	// OutcomeCompleted means every batch ran.
	OutcomeCompleted Outcome = iota
	// OutcomeStopped means the run was cancelled.
	OutcomeStopped
	// OutcomeFailed means a batch or the run setup failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeStopped:
		return "stopped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
