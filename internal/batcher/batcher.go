// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batcher

import (
	"errors"
	"fmt"
)

// DefaultSize is the number of tags the registration form accepts per submission.
const DefaultSize = 25

// ErrInvalidSize is returned when the batch size is not a positive integer.
var ErrInvalidSize = errors.New("batch size must be a positive integer")

// Batch is an ordered, non-empty group of work items processed as one automation run.
type Batch struct {
	Number int      // 1-based position of the batch in its plan
	Items  []string // Work items, in input order
}

// Len returns the number of work items in the batch.
func (b Batch) Len() int {
	return len(b.Items)
}

// Plan is the ordered sequence of batches covering the input exactly once.
type Plan []Batch

// Len returns the number of batches in the plan.
func (p Plan) Len() int {
	return len(p)
}

// TotalItems returns the number of work items across all batches.
func (p Plan) TotalItems() int {
	n := 0
	for _, b := range p {
		n += b.Len()
	}

	return n
}

// IsLast reports whether the batch with the given number is the final batch of the plan.
func (p Plan) IsLast(number int) bool {
	return number == len(p)
}

// ItemsThrough returns the number of work items in batches 1 to number inclusive.
func (p Plan) ItemsThrough(number int) int {
	n := 0
	for _, b := range p {
		if b.Number > number {
			break
		}

		n += b.Len()
	}

	return n
}

// Split partitions items into batches of at most size items.
// An empty input produces an empty plan.
func Split(items []string, size int) (Plan, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	plan := make(Plan, 0, (len(items)+size-1)/size)

	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))

		// Clip capacity so appending to one batch can never spill into the next.
		plan = append(plan, Batch{
			Number: len(plan) + 1,
			Items:  items[start:end:end],
		})
	}

	return plan, nil
}
