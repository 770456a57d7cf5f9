// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
)

// Source is the script a batch will run: either generated from the template, or the
// operator's customized script with its text.
type Source struct {
	Kind scriptstore.Kind
	Text string // Customized script text; empty for generated sources
}

// IsCustomized reports whether the source is an operator-saved script.
func (s Source) IsCustomized() bool {
	return s.Kind == scriptstore.KindCustomized
}

// Key returns the store key the materialized script is written to for a batch.
func (s Source) Key(batch int) scriptstore.Key {
	return scriptstore.Key{Batch: batch, Kind: s.Kind}
}

// Resolver picks the script source for a batch number.
type Resolver struct {
	store scriptstore.Store
}

// NewResolver creates a Resolver over store.
func NewResolver(store scriptstore.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the customized script for batch if one is stored, otherwise a generated source.
// It never modifies the store.
func (r *Resolver) Resolve(batch int) (Source, error) {
	key := scriptstore.Customized(batch)

	ok, err := r.store.Exists(key)
	if err != nil {
		return Source{}, err
	}

	if !ok {
		return Source{Kind: scriptstore.KindGenerated}, nil
	}

	text, err := r.store.Read(key)
	if err != nil {
		return Source{}, err
	}

	return Source{Kind: scriptstore.KindCustomized, Text: text}, nil
}
