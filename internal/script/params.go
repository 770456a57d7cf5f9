// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"errors"
	"fmt"
	"strings"
)

const (
	sampleVillage  = "tehang"
	sampleFirstTag = 102294708797
	sampleTagCount = 25
)

var (
	// ErrBlankLabel is returned when the village name is empty or whitespace.
	ErrBlankLabel = errors.New("village name is required")
	// ErrInvalidLabel is returned when the village name cannot be embedded in a script.
	ErrInvalidLabel = errors.New("village name must be a single line")
	// ErrInvalidParams is returned when batch numbering is inconsistent.
	ErrInvalidParams = errors.New("invalid script parameters")
)

// Params are the values embedded into a batch script.
type Params struct {
	Items   []string // Tag IDs of the batch, in order
	Batch   int      // 1-based batch number
	Total   int      // Number of batches in the run
	IsLast  bool     // Whether this is the final batch of the run
	Village string   // Village typed into the form's village selector
}

// Count returns the number of tags in the batch.
func (p Params) Count() int {
	return len(p.Items)
}

func (p Params) validate() error {
	if err := ValidateVillage(p.Village); err != nil {
		return err
	}

	if p.Batch < 1 || p.Total < p.Batch {
		return fmt.Errorf("%w: batch %d of %d", ErrInvalidParams, p.Batch, p.Total)
	}

	return nil
}

// ValidateVillage checks that a village name is usable as a script label.
func ValidateVillage(village string) error {
	if strings.TrimSpace(village) == "" {
		return ErrBlankLabel
	}

	if strings.ContainsAny(village, "\r\n") {
		return ErrInvalidLabel
	}

	return nil
}

// SampleParams returns placeholder parameters used to create a fresh template for a batch
// number outside of a run.
func SampleParams(batch int) Params {
	items := make([]string, sampleTagCount)
	for i := range items {
		items[i] = fmt.Sprintf("%d", sampleFirstTag+i)
	}

	return Params{
		Items:   items,
		Batch:   batch,
		Total:   batch,
		IsLast:  true,
		Village: sampleVillage,
	}
}

// Escape quotes s for an AutoHotkey v2 double-quoted string literal.
// The backtick is the escape character, so it is doubled before quotes are escaped.
func Escape(s string) string {
	return strings.NewReplacer("`", "``", `"`, "`\"").Replace(s)
}
