// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	customizedMarker     = "; MODIFIED"
	customizedMarkerLine = "; MODIFIED SCRIPT - This script will be used for all future runs"
	markerLineIndex      = 2
)

var (
	villageLineRegex = regexp.MustCompile(`(?m)^; Village: ([^\r\n]+)`)
	countLineRegex   = regexp.MustCompile(`(?m)^; Batch (\d+) of (\d+) - (\d+) tags`)
)

// Header is the metadata readable from a script's comment lines.
type Header struct {
	Village    string // "Unknown" when the village line is missing
	Batch      int
	Total      int
	Tags       int
	Customized bool
}

// Inspect extracts the header of a script.
func Inspect(text string) Header {
	h := Header{
		Village:    "Unknown",
		Customized: strings.Contains(text, customizedMarker),
	}

	if m := villageLineRegex.FindStringSubmatch(text); m != nil {
		h.Village = strings.TrimSpace(m[1])
	}

	if m := countLineRegex.FindStringSubmatch(text); m != nil {
		h.Batch, _ = strconv.Atoi(m[1])
		h.Total, _ = strconv.Atoi(m[2])
		h.Tags, _ = strconv.Atoi(m[3])
	}

	return h
}

// MarkCustomized inserts the customized marker as the third line of text unless a marker is
// already present. Scripts shorter than three lines are returned unchanged.
func MarkCustomized(text string) string {
	if strings.Contains(text, customizedMarker) {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) <= markerLineIndex {
		return text
	}

	lines = append(lines[:markerLineIndex], append([]string{customizedMarkerLine}, lines[markerLineIndex:]...)...)

	return strings.Join(lines, "\n")
}
