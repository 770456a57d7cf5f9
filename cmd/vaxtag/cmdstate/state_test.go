// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdstate

import (
	"context"
	"testing"

	"github.com/matt-FFFFFF/vaxtag/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	assert.Equal(t, config.Default(), Config(context.Background()))

	cfg := config.Default()
	cfg.BatchSize = 5
	assert.Same(t, cfg, Config(WithConfig(context.Background(), cfg)))
}

func TestActive(t *testing.T) {
	a := &Active{}
	assert.False(t, a.Stop(), "nothing registered")

	var first, second int

	releaseFirst := a.Set(StopFunc(func() { first++ }))
	assert.True(t, a.Stop())
	assert.Equal(t, 1, first)

	releaseSecond := a.Set(StopFunc(func() { second++ }))
	releaseFirst()
	assert.True(t, a.Stop(), "stale release keeps the newer run")
	assert.Equal(t, 1, second)

	releaseSecond()
	assert.False(t, a.Stop())
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestActiveRun(t *testing.T) {
	a := &Active{}
	assert.Same(t, a, ActiveRun(WithActive(context.Background(), a)))
	assert.NotNil(t, ActiveRun(context.Background()))
}
