// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	// ErrSlotNotFound is returned when a required parameter slot is missing from a script.
	ErrSlotNotFound = errors.New("script parameter slot not found")
	// ErrOverlappingSlots is returned when two parameter slots share text.
	ErrOverlappingSlots = errors.New("script parameter slots overlap")
)

// slot is one addressable parameter field of a script.
// render must produce text that pattern matches in full, which is what makes Patch idempotent.
// A pattern may capture leading indentation in group 1; that prefix is kept.
type slot struct {
	name     string
	pattern  *regexp.Regexp
	render   func(Params) string
	required bool
}

// The backtick (\x60) escapes the next character inside AutoHotkey strings.
var slots = []slot{
	{
		name:    "label",
		pattern: regexp.MustCompile(`(?m)^; Village: [^\r\n]*`),
		render:  renderLabel,
	},
	{
		name:    "count",
		pattern: regexp.MustCompile(`(?m)^; Batch \d+ of \d+ - \d+ tags`),
		render:  renderCount,
	},
	{
		name:     "items",
		pattern:  regexp.MustCompile(`(?ms)^([ \t]*)TagIDs\s*:=\s*\[(?:"(?:[^"\x60]|\x60.)*"|[^\]"])*\]`),
		render:   renderItems,
		required: true,
	},
	{
		name:     "variable",
		pattern:  regexp.MustCompile(`(?m)^([ \t]*)VillageName\s*:=\s*"(?:[^"\x60\r\n]|\x60[^\r\n])*"`),
		render:   renderVariable,
		required: true,
	},
}

func renderLabel(p Params) string {
	return "; Village: " + p.Village
}

func renderCount(p Params) string {
	return fmt.Sprintf("; Batch %d of %d - %d tags", p.Batch, p.Total, p.Count())
}

func renderItems(p Params) string {
	sb := strings.Builder{}
	sb.WriteString("TagIDs := [\n")

	for i, item := range p.Items {
		sb.WriteString(`    "`)
		sb.WriteString(Escape(item))
		sb.WriteString(`"`)

		if i < len(p.Items)-1 {
			sb.WriteString(",")
		}

		sb.WriteString("\n")
	}

	sb.WriteString("]")

	return sb.String()
}

func renderVariable(p Params) string {
	return `VillageName := "` + Escape(p.Village) + `"`
}

// Patch rewrites the parameter slots of an existing script with p.
// Only the first occurrence of each slot is replaced; all other text is preserved byte for byte.
// The tag list and village variable must be present; the two comment lines are optional.
// All slots are located in the original text before any of them is rewritten.
func Patch(text string, p Params) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	type edit struct {
		start, end int
		repl       string
	}

	edits := make([]edit, 0, len(slots))

	for _, s := range slots {
		m := s.pattern.FindStringSubmatchIndex(text)
		if m == nil {
			if s.required {
				return "", fmt.Errorf("%w: %s", ErrSlotNotFound, s.name)
			}

			continue
		}

		start := m[0]
		if len(m) > 3 && m[3] >= 0 {
			start = m[3]
		}

		edits = append(edits, edit{start: start, end: m[1], repl: s.render(p)})
	}

	slices.SortFunc(edits, func(a, b edit) int {
		return a.start - b.start
	})

	for i := 1; i < len(edits); i++ {
		if edits[i].start < edits[i-1].end {
			return "", ErrOverlappingSlots
		}
	}

	var sb strings.Builder

	prev := 0

	for _, e := range edits {
		sb.WriteString(text[prev:e.start])
		sb.WriteString(e.repl)
		prev = e.end
	}

	sb.WriteString(text[prev:])

	return sb.String(), nil
}
