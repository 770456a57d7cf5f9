// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scriptstore

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind identifies where a script came from.
type Kind int

const (
	// KindGenerated is a script rendered from the template for the current run.
	KindGenerated Kind = iota
	// KindCustomized is a script saved by an operator; it overrides generation for its batch number.
	KindCustomized
)

const (
	generatedPrefix  = "vaccination-batch-"
	customizedPrefix = "modifiedScript-batch-"
	scriptExt        = ".ahk"
)

var nameRegex = regexp.MustCompile(`^(vaccination-batch-|modifiedScript-batch-)(\d+)\.ahk$`)

// String implements the Stringer interface for Kind.
func (k Kind) String() string {
	switch k {
	case KindGenerated:
		return "generated"
	case KindCustomized:
		return "customized"
	default:
		return "unknown"
	}
}

// Key addresses one script in the store.
type Key struct {
	Batch int
	Kind  Kind
}

// Generated returns the key of the generated script for a batch number.
func Generated(batch int) Key {
	return Key{Batch: batch, Kind: KindGenerated}
}

// Customized returns the key of the customized script for a batch number.
func Customized(batch int) Key {
	return Key{Batch: batch, Kind: KindCustomized}
}

// Name returns the file name used for the key.
func (k Key) Name() string {
	prefix := generatedPrefix
	if k.Kind == KindCustomized {
		prefix = customizedPrefix
	}

	return fmt.Sprintf("%s%d%s", prefix, k.Batch, scriptExt)
}

// String implements the Stringer interface for Key.
func (k Key) String() string {
	return fmt.Sprintf("%s script for batch %d", k.Kind, k.Batch)
}

// ParseName returns the key for a script file name.
// The second return value is false for files that are not scripts managed by the store.
func ParseName(name string) (Key, bool) {
	m := nameRegex.FindStringSubmatch(name)
	if m == nil {
		return Key{}, false
	}

	batch, err := strconv.Atoi(m[2])
	if err != nil || batch < 1 {
		return Key{}, false
	}

	kind := KindGenerated
	if m[1] == customizedPrefix {
		kind = KindCustomized
	}

	return Key{Batch: batch, Kind: kind}, true
}
