// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorize(t *testing.T) {
	orig := Enabled()
	defer SetEnabled(orig)

	SetEnabled(true)
	assert.Equal(t, "\033[31;1mfail\033[0m", Colorize("fail", FgRed, Bold))
	assert.Equal(t, "plain", Colorize("plain"))

	SetEnabled(false)
	assert.Equal(t, "fail", Colorize("fail", FgRed, Bold))
}
