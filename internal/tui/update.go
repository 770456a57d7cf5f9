// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/vaxtag/internal/progress"
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
)

const (
	reservedLines       = 12
	minOutputHeight     = 3
	durationRounding    = time.Second
	maxNotices          = 3
	outputBorderPadding = 2
)

// EventMsg wraps a run event for the tea framework.
type EventMsg struct {
	Event progress.Event
}

// RunFinishedMsg indicates that the orchestrator returned.
type RunFinishedMsg struct {
	Err error
}

// ScriptChangedMsg reports a script edited on disk while the run is active.
type ScriptChangedMsg struct {
	Change scriptstore.Change
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.spinner.Tick,
	)
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case EventMsg:
		m.processEvent(msg.Event)
		return m, nil

	case ScriptChangedMsg:
		m.processScriptChange(msg.Change)
		return m, nil

	case RunFinishedMsg:
		m.phase = phaseEnded
		m.confirmation = nil

		if msg.Err != nil && m.errMsg == "" {
			m.errMsg = msg.Err.Error()
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.phase == phaseAwaiting && m.ctl.Confirm() {
			m.phase = phaseRunning
			m.confirmation = nil
		}

		return m, nil

	case "s":
		m.stop()
		return m, nil

	case "ctrl+c":
		if m.phase == phaseEnded {
			m.quitting = true
			return m, tea.Quit
		}

		m.stop()

		return m, nil

	case "q":
		if m.phase == phaseEnded {
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m *Model) stop() {
	if m.phase == phaseRunning || m.phase == phaseAwaiting {
		if m.ctl.Stop() {
			m.phase = phaseStopping
		}
	}
}

func (m *Model) processScriptChange(c scriptstore.Change) {
	if c.Key.Kind != scriptstore.KindCustomized || c.Key.Batch <= m.current || m.phase == phaseEnded {
		return
	}

	notice := fmt.Sprintf("%s %s; batch %d will use it", c.Key.Name(), c.Op, c.Key.Batch)
	if c.Op == scriptstore.ChangeRemoved {
		notice = fmt.Sprintf("%s removed; batch %d will use a generated script", c.Key.Name(), c.Key.Batch)
	}

	m.notices = append(m.notices, notice)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

func (m *Model) updateViewportSize() {
	m.viewport.Width = max(m.width-outputBorderPadding, 0)
	m.viewport.Height = max(m.height-reservedLines-len(m.rows), minOutputHeight)
	m.bar.Width = min(progressBarWidth, max(m.width-outputBorderPadding, 1))
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var view strings.Builder

	view.WriteString(m.styles.Title.Render(fmt.Sprintf("vaxtag: %s, %d tags in %d batches",
		m.info.Village, m.info.TotalTags, m.info.TotalBatches)))
	view.WriteString("\n")

	for _, r := range m.rows {
		m.renderRow(&view, r)
	}

	view.WriteString("\n")
	view.WriteString(m.bar.ViewAs(m.percent()))
	view.WriteString(fmt.Sprintf(" %d/%d tags\n", m.completedTag, m.info.TotalTags))

	for _, n := range m.notices {
		view.WriteString(m.styles.Notice.Render("✎ " + n))
		view.WriteString("\n")
	}

	if m.confirmation != nil && m.phase == phaseAwaiting {
		c := m.confirmation
		view.WriteString(m.styles.Prompt.Render(fmt.Sprintf(
			"Submit the form for batch %d of %d now.\nPress enter to run the next %d tags, or s to stop.",
			c.BatchNumber, c.TotalBatches, c.NextBatchSize)))
		view.WriteString("\n")
	}

	if len(m.output) > 0 {
		view.WriteString(m.styles.Border.Render(m.viewport.View()))
		view.WriteString("\n")
	}

	switch {
	case m.phase == phaseEnded && m.errMsg != "":
		view.WriteString(m.styles.Failed.Render("✗ " + m.errMsg))
		view.WriteString("\n")
	case m.phase == phaseEnded:
		view.WriteString(m.styles.Success.Render("✓ " + m.outcome))
		view.WriteString("\n")
	case m.phase == phaseStopping:
		view.WriteString(m.styles.Running.Render(m.spinner.View() + " stopping..."))
		view.WriteString("\n")
	}

	view.WriteString(m.styles.Help.Render(m.helpText()))

	return view.String()
}

func (m *Model) helpText() string {
	switch m.phase {
	case phaseAwaiting:
		return "enter: continue • s: stop • ↑/↓: scroll output"
	case phaseEnded:
		return "q: quit • ↑/↓: scroll output"
	default:
		return "s: stop • ↑/↓: scroll output"
	}
}

// renderRow renders one batch line.
func (m *Model) renderRow(b *strings.Builder, r *BatchRow) {
	var icon, label string

	name := fmt.Sprintf("Batch %d", r.Number)
	if r.Customized {
		name += " (customized)"
	}

	switch r.Status {
	case BatchRunning:
		icon = m.spinner.View()
		label = m.styles.Running.Render(name)
	case BatchDone:
		icon = "✓"
		label = m.styles.Success.Render(name)
	case BatchFailed:
		icon = "✗"
		label = m.styles.Failed.Render(name)
	case BatchStopped:
		icon = "■"
		label = m.styles.Pending.Render(name)
	default:
		icon = "·"
		label = m.styles.Pending.Render(name)
	}

	b.WriteString(icon)
	b.WriteString(" ")
	b.WriteString(label)

	if r.StartTime != nil {
		elapsed := time.Since(*r.StartTime)
		if r.EndTime != nil {
			elapsed = r.EndTime.Sub(*r.StartTime)
		}

		b.WriteString(m.styles.Output.Render(fmt.Sprintf(" (%v)", elapsed.Round(durationRounding))))
	}

	if r.Status == BatchDone && r.Tags > 0 {
		b.WriteString(m.styles.Output.Render(fmt.Sprintf(" %d tags", r.Tags)))
	}

	if r.Status == BatchRunning && r.LastOutput != "" {
		b.WriteString("  ")
		b.WriteString(m.styles.Output.Render(r.LastOutput))
	}

	b.WriteString("\n")
}
