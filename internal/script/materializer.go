// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"github.com/matt-FFFFFF/vaxtag/internal/batcher"
)

// Materializer produces the script text for each batch of a run for one village.
type Materializer struct {
	gen     *Generator
	village string
}

// NewMaterializer returns a Materializer for village.
// It fails with ErrBlankLabel or ErrInvalidLabel rather than produce scripts with an unusable label.
func NewMaterializer(gen *Generator, village string) (*Materializer, error) {
	if err := ValidateVillage(village); err != nil {
		return nil, err
	}

	return &Materializer{
		gen:     gen,
		village: village,
	}, nil
}

// Village returns the village embedded into every script.
func (m *Materializer) Village() string {
	return m.village
}

// Materialize returns the script text for batch out of total batches.
// Generated sources are rendered from the template; customized sources are patched in place.
func (m *Materializer) Materialize(src Source, batch batcher.Batch, total int) (string, error) {
	p := Params{
		Items:   batch.Items,
		Batch:   batch.Number,
		Total:   total,
		IsLast:  batch.Number == total,
		Village: m.village,
	}

	if src.IsCustomized() {
		return Patch(src.Text, p)
	}

	return m.gen.Render(p)
}
