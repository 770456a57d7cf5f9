// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/vaxtag/internal/progress"
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	confirms int
	stops    int
	active   bool
}

func (f *fakeController) Confirm() bool {
	if !f.active {
		return false
	}

	f.confirms++

	return true
}

func (f *fakeController) Stop() bool {
	if !f.active {
		return false
	}

	f.stops++

	return true
}

func newTestModel() (*Model, *fakeController) {
	ctl := &fakeController{active: true}
	m := NewModel(context.Background(), ctl, RunInfo{Village: "tehang", TotalBatches: 2, TotalTags: 40})

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	return m, ctl
}

func send(m *Model, events ...progress.Event) {
	for _, e := range events {
		m.Update(EventMsg{Event: e})
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func firstBatchEvents() []progress.Event {
	return []progress.Event{
		{Type: progress.EventScriptSelected, Data: progress.EventData{Script: &progress.ScriptInfo{Batch: 1}}},
		{Type: progress.EventBatchStarted, Message: "Starting batch 1 of 2"},
		{Type: progress.EventOutput, Data: progress.EventData{Output: &progress.OutputLine{Batch: 1, Line: "tag 3/25 "}}},
	}
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel()

	require.Len(t, m.rows, 2)
	assert.Equal(t, 1, m.rows[0].Number)
	assert.Equal(t, BatchPending, m.rows[1].Status)
	assert.Equal(t, phaseRunning, m.phase)
	assert.InDelta(t, 0.0, m.percent(), 0.0001)
}

func TestModel_BatchLifecycle(t *testing.T) {
	m, _ := newTestModel()

	send(m, firstBatchEvents()...)

	r := m.rows[0]
	assert.Equal(t, BatchRunning, r.Status)
	assert.Equal(t, "tag 3/25", r.LastOutput)
	assert.NotNil(t, r.StartTime)
	assert.Contains(t, m.View(), "tag 3/25")

	send(m, progress.Event{
		Type: progress.EventBatchProgress,
		Data: progress.EventData{Progress: &progress.BatchProgress{Completed: 1, Total: 2, CurrentBatch: 1, TagsInCurrentBatch: 25}},
	})

	assert.Equal(t, BatchDone, r.Status)
	assert.NotNil(t, r.EndTime)
	assert.Equal(t, 25, m.completedTag)
	assert.InDelta(t, 25.0/40.0, m.percent(), 0.0001)
}

func TestModel_ConfirmWithEnter(t *testing.T) {
	m, ctl := newTestModel()

	// Enter does nothing until the run asks for confirmation.
	m.Update(key("enter"))
	assert.Equal(t, 0, ctl.confirms)

	send(m, progress.Event{
		Type: progress.EventConfirmationRequired,
		Data: progress.EventData{Confirmation: &progress.ConfirmationRequest{
			BatchNumber: 1, TotalBatches: 2, CompletedTags: 25, TotalTags: 40, NextBatchSize: 15,
		}},
	})

	assert.Equal(t, phaseAwaiting, m.phase)
	assert.Contains(t, m.View(), "Submit the form for batch 1 of 2 now.")

	m.Update(key("enter"))
	assert.Equal(t, 1, ctl.confirms)
	assert.Equal(t, phaseRunning, m.phase)
	assert.Nil(t, m.confirmation)

	send(m, progress.Event{Type: progress.EventConfirmed})
	assert.Equal(t, phaseRunning, m.phase)
}

func TestModel_StopAndQuit(t *testing.T) {
	m, ctl := newTestModel()
	send(m, firstBatchEvents()...)

	_, cmd := m.Update(key("q"))
	assert.Nil(t, cmd, "q does nothing while the run is active")

	m.Update(key("s"))
	assert.Equal(t, 1, ctl.stops)
	assert.Equal(t, phaseStopping, m.phase)
	assert.Contains(t, m.View(), "stopping...")

	send(m, progress.Event{Type: progress.EventStopped, Message: "Stopped after 0 of 2 batches"})
	assert.Equal(t, phaseEnded, m.phase)
	assert.Equal(t, BatchStopped, m.rows[0].Status)
	assert.Contains(t, m.View(), "Stopped after 0 of 2 batches")

	_, cmd = m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "Shutting down...\n", m.View())
}

func TestModel_CtrlCStopsThenQuits(t *testing.T) {
	m, ctl := newTestModel()
	send(m, firstBatchEvents()...)

	_, cmd := m.Update(key("ctrl+c"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, ctl.stops)

	m.Update(RunFinishedMsg{})

	_, cmd = m.Update(key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Failure(t *testing.T) {
	m, _ := newTestModel()
	send(m, firstBatchEvents()...)

	send(m, progress.Event{Type: progress.EventFailed, Message: "batch 1 failed: exit code 1"})

	assert.Equal(t, BatchFailed, m.rows[0].Status)
	assert.Contains(t, m.View(), "batch 1 failed: exit code 1")

	m2, _ := newTestModel()
	m2.Update(RunFinishedMsg{Err: errors.New("interpreter not found")})
	assert.Contains(t, m2.View(), "interpreter not found")
}

func TestModel_ScriptChanges(t *testing.T) {
	m, _ := newTestModel()
	send(m, firstBatchEvents()...)

	// The current batch and generated scripts are written by the run itself.
	m.Update(ScriptChangedMsg{Change: scriptstore.Change{Key: scriptstore.Customized(1), Op: scriptstore.ChangeWritten}})
	m.Update(ScriptChangedMsg{Change: scriptstore.Change{Key: scriptstore.Generated(2), Op: scriptstore.ChangeWritten}})
	assert.Empty(t, m.notices)

	m.Update(ScriptChangedMsg{Change: scriptstore.Change{Key: scriptstore.Customized(2), Op: scriptstore.ChangeWritten}})
	m.Update(ScriptChangedMsg{Change: scriptstore.Change{Key: scriptstore.Customized(2), Op: scriptstore.ChangeRemoved}})

	require.Len(t, m.notices, 2)
	assert.Contains(t, m.notices[0], "modifiedScript-batch-2.ahk written")
	assert.Contains(t, m.notices[1], "batch 2 will use a generated script")
}

func TestModel_CustomizedRowLabel(t *testing.T) {
	m, _ := newTestModel()

	send(m, progress.Event{Type: progress.EventScriptSelected, Data: progress.EventData{Script: &progress.ScriptInfo{Batch: 2, Customized: true}}})

	assert.True(t, m.rows[1].Customized)
	assert.Contains(t, m.View(), "Batch 2 (customized)")
}

func TestBatchStatus_String(t *testing.T) {
	assert.Equal(t, "pending", BatchPending.String())
	assert.Equal(t, "running", BatchRunning.String())
	assert.Equal(t, "done", BatchDone.String())
	assert.Equal(t, "failed", BatchFailed.String())
	assert.Equal(t, "stopped", BatchStopped.String())
	assert.Equal(t, "unknown", BatchStatus(99).String())
}
