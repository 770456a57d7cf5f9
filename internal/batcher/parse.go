// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batcher

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrReadItems is returned when the work item source cannot be read.
var ErrReadItems = errors.New("failed to read work items")

// ParseItems reads work items from r.
// Items are separated by new lines or commas; surrounding whitespace is trimmed and blank entries are dropped.
func ParseItems(r io.Reader) ([]string, error) {
	var items []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		items = append(items, splitLine(scanner.Text())...)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Join(ErrReadItems, err)
	}

	return items, nil
}

// ParseItemsString is ParseItems for in-memory input.
func ParseItemsString(s string) []string {
	var items []string
	for line := range strings.Lines(s) {
		items = append(items, splitLine(line)...)
	}

	return items
}

func splitLine(line string) []string {
	var items []string

	for field := range strings.SplitSeq(line, ",") {
		if field = strings.TrimSpace(field); field != "" {
			items = append(items, field)
		}
	}

	return items
}

// Clean trims every item and drops the blank ones, keeping order and duplicates.
func Clean(items []string) []string {
	cleaned := make([]string, 0, len(items))

	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}

	return cleaned
}
