// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"strings"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/vaxtag/internal/progress"
)

const (
	maxOutputLines   = 200
	progressBarWidth = 40
)

// Controller is the run the interface drives.
type Controller interface {
	Confirm() bool
	Stop() bool
}

// RunInfo describes the run being displayed.
type RunInfo struct {
	Village      string
	TotalBatches int
	TotalTags    int
}

// BatchStatus represents the state of a batch in the interface.
type BatchStatus int

const (
	// BatchPending has not started.
	BatchPending BatchStatus = iota
	// BatchRunning is executing in the interpreter.
	BatchRunning
	// BatchDone finished successfully.
	BatchDone
	// BatchFailed ended the run with an error.
	BatchFailed
	// BatchStopped was interrupted by the operator.
	BatchStopped
)

// String returns a string representation of the batch status.
func (s BatchStatus) String() string {
	switch s {
	case BatchPending:
		return "pending"
	case BatchRunning:
		return "running"
	case BatchDone:
		return "done"
	case BatchFailed:
		return "failed"
	case BatchStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// BatchRow is one batch in the list.
type BatchRow struct {
	Number     int
	Customized bool
	Status     BatchStatus
	Tags       int
	LastOutput string
	StartTime  *time.Time
	EndTime    *time.Time
}

// phase is where the run is from the operator's point of view.
type phase int

const (
	phaseRunning phase = iota
	phaseAwaiting
	phaseStopping
	phaseEnded
)

// Model represents the TUI application state.
type Model struct {
	ctx  context.Context
	ctl  Controller
	info RunInfo

	rows         []*BatchRow
	current      int
	phase        phase
	confirmation *progress.ConfirmationRequest
	completed    int
	completedTag int
	outcome      string
	errMsg       string
	notices      []string
	output       []string

	width    int
	height   int
	quitting bool

	spinner  spinner.Model
	bar      bprogress.Model
	viewport viewport.Model
	styles   *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Prompt  lipgloss.Style
	Notice  lipgloss.Style
	Output  lipgloss.Style
	Help    lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Prompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("14")).
			Padding(0, 1),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
		Border: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("8")),
	}
}

// NewModel creates a new TUI model for a run.
func NewModel(ctx context.Context, ctl Controller, info RunInfo) *Model {
	rows := make([]*BatchRow, info.TotalBatches)
	for i := range rows {
		rows[i] = &BatchRow{Number: i + 1}
	}

	return &Model{
		ctx:      ctx,
		ctl:      ctl,
		info:     info,
		rows:     rows,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:      bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(progressBarWidth)),
		viewport: viewport.New(0, 0),
		styles:   NewStyles(),
	}
}

// row returns the row of a batch number, growing the list if the run has more batches than expected.
func (m *Model) row(number int) *BatchRow {
	for len(m.rows) < number {
		m.rows = append(m.rows, &BatchRow{Number: len(m.rows) + 1})
	}

	return m.rows[number-1]
}

// percent is the share of tags entered so far.
func (m *Model) percent() float64 {
	if m.info.TotalTags == 0 {
		return 0
	}

	return float64(m.completedTag) / float64(m.info.TotalTags)
}

func (m *Model) appendOutput(line string) {
	m.output = append(m.output, line)
	if len(m.output) > maxOutputLines {
		m.output = m.output[len(m.output)-maxOutputLines:]
	}

	m.viewport.SetContent(strings.Join(m.output, "\n"))
	m.viewport.GotoBottom()
}

// processEvent applies a run event to the model.
func (m *Model) processEvent(e progress.Event) {
	now := time.Now()

	switch e.Type {
	case progress.EventScriptSelected:
		m.current = e.Data.Script.Batch
		r := m.row(m.current)
		r.Customized = e.Data.Script.Customized

	case progress.EventBatchStarted:
		if m.current > 0 {
			r := m.row(m.current)
			r.Status = BatchRunning
			r.StartTime = &now
		}

	case progress.EventOutput:
		r := m.row(e.Data.Output.Batch)
		r.LastOutput = strings.TrimSpace(e.Data.Output.Line)
		m.appendOutput(e.Data.Output.Line)

	case progress.EventBatchProgress:
		p := e.Data.Progress
		r := m.row(p.CurrentBatch)
		r.Status = BatchDone
		r.Tags = p.TagsInCurrentBatch
		r.EndTime = &now
		m.completed = p.Completed
		m.completedTag += p.TagsInCurrentBatch

	case progress.EventConfirmationRequired:
		c := *e.Data.Confirmation
		m.confirmation = &c
		m.completedTag = c.CompletedTags

		if m.phase == phaseRunning {
			m.phase = phaseAwaiting
		}

	case progress.EventConfirmed:
		m.confirmation = nil

		if m.phase == phaseAwaiting {
			m.phase = phaseRunning
		}

	case progress.EventCompleted:
		m.phase = phaseEnded
		m.confirmation = nil
		m.outcome = e.Message

	case progress.EventStopped:
		m.phase = phaseEnded
		m.confirmation = nil
		m.outcome = e.Message
		m.endRunning(BatchStopped, now)

	case progress.EventFailed:
		m.phase = phaseEnded
		m.confirmation = nil
		m.outcome = "Run failed"
		m.errMsg = e.Message
		m.endRunning(BatchFailed, now)
	}
}

// endRunning moves the running batch, if any, to status.
func (m *Model) endRunning(status BatchStatus, now time.Time) {
	for _, r := range m.rows {
		if r.Status == BatchRunning {
			r.Status = status
			r.EndTime = &now
		}
	}
}
