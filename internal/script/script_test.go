// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"strings"
	"testing"

	"github.com/matt-FFFFFF/vaxtag/internal/batcher"
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customScript = `; AutoHotkey v2 Script for Vaccination Form Automation
; Batch 1 of 1 - 2 tags
; Village: old
; my own tweaks
TagIDs := [
    "1",
    "2"
]
VillageName := "old"
Click(100, 200) ; moved button
`

func params(items ...string) Params {
	return Params{
		Items:   items,
		Batch:   2,
		Total:   3,
		Village: "Dang",
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "plain", Escape("plain"))
	assert.Equal(t, "a`\"b", Escape(`a"b`))
	assert.Equal(t, "a``b", Escape("a`b"))
	assert.Equal(t, "```\"", Escape("`\""))
}

func TestValidateVillage(t *testing.T) {
	assert.ErrorIs(t, ValidateVillage(""), ErrBlankLabel)
	assert.ErrorIs(t, ValidateVillage("  \t"), ErrBlankLabel)
	assert.ErrorIs(t, ValidateVillage("a\nb"), ErrInvalidLabel)
	assert.ErrorIs(t, ValidateVillage("a\rb"), ErrInvalidLabel)
	assert.NoError(t, ValidateVillage("Birgunj"))
}

func TestPatch_ReplacesSlots(t *testing.T) {
	out, err := Patch(customScript, params("10", "20", "30"))
	require.NoError(t, err)

	assert.Contains(t, out, "; Batch 2 of 3 - 3 tags\n")
	assert.Contains(t, out, "; Village: Dang\n")
	assert.Contains(t, out, "TagIDs := [\n    \"10\",\n    \"20\",\n    \"30\"\n]")
	assert.Contains(t, out, `VillageName := "Dang"`)
	assert.Contains(t, out, "; my own tweaks\n")
	assert.Contains(t, out, "Click(100, 200) ; moved button\n")
	assert.NotContains(t, out, `"old"`)
}

func TestPatch_Idempotent(t *testing.T) {
	p := params("10", `with "quote"`, "back`tick")

	once, err := Patch(customScript, p)
	require.NoError(t, err)

	twice, err := Patch(once, p)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestPatch_ReparameterizesPreviousOutput(t *testing.T) {
	first, err := Patch(customScript, params("a", "b", "c", "d"))
	require.NoError(t, err)

	p := params("x")
	p.Village = `Quote "Town"`

	second, err := Patch(first, p)
	require.NoError(t, err)

	direct, err := Patch(customScript, p)
	require.NoError(t, err)

	assert.Equal(t, direct, second)
	assert.Contains(t, second, "VillageName := \"Quote `\"Town`\"\"")
}

func TestPatch_OnlyFirstOccurrence(t *testing.T) {
	text := customScript + "\n; Village: second\n"

	out, err := Patch(text, params("1"))
	require.NoError(t, err)

	assert.Contains(t, out, "; Village: Dang\n")
	assert.Contains(t, out, "; Village: second\n")
}

func TestPatch_VillageLookingLikeSlot(t *testing.T) {
	p := params("10", "20")
	p.Village = `TagIDs := ["x"]`

	out, err := Patch(customScript, p)
	require.NoError(t, err)

	assert.Contains(t, out, "; Village: TagIDs := [\"x\"]\n; my own tweaks\nTagIDs := [\n    \"10\",\n    \"20\"\n]\n")
	assert.NotContains(t, out, `"1",`)
	assert.Contains(t, out, "VillageName := \"TagIDs := [`\"x`\"]\"\n")

	again, err := Patch(out, p)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestPatch_KeepsIndentation(t *testing.T) {
	text := "if true {\n  TagIDs := [\"1\"]\n  VillageName := \"a\"\n}\n"

	out, err := Patch(text, params("9"))
	require.NoError(t, err)

	assert.Equal(t, "if true {\n  TagIDs := [\n    \"9\"\n]\n  VillageName := \"Dang\"\n}\n", out)
}

func TestPatch_PreservesCRLF(t *testing.T) {
	text := strings.ReplaceAll(customScript, "\n", "\r\n")

	out, err := Patch(text, params("1"))
	require.NoError(t, err)

	assert.Contains(t, out, "; Village: Dang\r\n")
	assert.Contains(t, out, "; Batch 2 of 3 - 1 tags\r\n")
	assert.Contains(t, out, "Click(100, 200) ; moved button\r\n")
}

func TestPatch_MissingSlots(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no tag list", text: `VillageName := "x"`},
		{name: "no village variable", text: "TagIDs := [\n]"},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Patch(tt.text, params("1"))
			assert.ErrorIs(t, err, ErrSlotNotFound)
		})
	}
}

func TestPatch_OptionalCommentLines(t *testing.T) {
	text := "TagIDs := [\"1\"]\nVillageName := \"a\"\n"

	out, err := Patch(text, params("9"))
	require.NoError(t, err)

	assert.Equal(t, "TagIDs := [\n    \"9\"\n]\nVillageName := \"Dang\"\n", out)
}

func TestPatch_InvalidParams(t *testing.T) {
	p := params("1")
	p.Village = ""

	_, err := Patch(customScript, p)
	require.ErrorIs(t, err, ErrBlankLabel)

	p = params("1")
	p.Batch = 4

	_, err = Patch(customScript, p)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestGenerator_Default(t *testing.T) {
	g := MustDefaultGenerator()
	p := params("111", "222")
	p.Batch = 3
	p.IsLast = true

	out, err := g.Render(p)
	require.NoError(t, err)

	assert.Contains(t, out, "; Batch 3 of 3 - 2 tags\n")
	assert.Contains(t, out, "; Village: Dang\n")
	assert.Contains(t, out, "TagIDs := [\n    \"111\",\n    \"222\"\n]")
	assert.Contains(t, out, `VillageName := "Dang"`)
	assert.Contains(t, out, "IsLastBatch := true")
	assert.Contains(t, out, "ExitApp(0)")

	h := Inspect(out)
	assert.Equal(t, Header{Village: "Dang", Batch: 3, Total: 3, Tags: 2}, h)
}

func TestGenerator_RenderThenPatchIsStable(t *testing.T) {
	g := MustDefaultGenerator()
	p := params("1", "2")

	out, err := g.Render(p)
	require.NoError(t, err)

	patched, err := Patch(out, p)
	require.NoError(t, err)

	assert.Equal(t, out, patched)
}

func TestNewGenerator_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "parse error", text: "{{ .Nope "},
		{name: "unknown field", text: "{{ .Nope }}"},
		{name: "not patchable", text: "{{ labelLine . }}\n{{ countLine . }}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.text)
			assert.ErrorIs(t, err, ErrTemplate)
		})
	}
}

func TestNewGenerator_Custom(t *testing.T) {
	g, err := NewGenerator("; {{ ahk .Village }}\n{{ tagList . }}\n{{ villageVar . }}\n")
	require.NoError(t, err)

	p := params("5")
	p.Village = `a"b`

	out, err := g.Render(p)
	require.NoError(t, err)
	assert.Equal(t, "; a`\"b\nTagIDs := [\n    \"5\"\n]\nVillageName := \"a`\"b\"\n", out)
}

func TestResolver(t *testing.T) {
	store := scriptstore.New(afero.NewMemMapFs(), "scripts")
	r := NewResolver(store)

	src, err := r.Resolve(1)
	require.NoError(t, err)
	assert.False(t, src.IsCustomized())
	assert.Equal(t, scriptstore.Generated(1), src.Key(1))

	require.NoError(t, store.Write(scriptstore.Generated(2), "generated"))
	require.NoError(t, store.Write(scriptstore.Customized(2), customScript))

	src, err = r.Resolve(2)
	require.NoError(t, err)
	assert.True(t, src.IsCustomized())
	assert.Equal(t, customScript, src.Text)
	assert.Equal(t, scriptstore.Customized(2), src.Key(2))

	// Resolution is read only.
	entries, err := store.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMaterializer(t *testing.T) {
	_, err := NewMaterializer(MustDefaultGenerator(), " ")
	require.ErrorIs(t, err, ErrBlankLabel)

	m, err := NewMaterializer(MustDefaultGenerator(), "Dang")
	require.NoError(t, err)
	assert.Equal(t, "Dang", m.Village())

	b := batcher.Batch{Number: 2, Items: []string{"7", "8"}}

	gen, err := m.Materialize(Source{Kind: scriptstore.KindGenerated}, b, 2)
	require.NoError(t, err)
	assert.Contains(t, gen, "IsLastBatch := true")
	assert.Contains(t, gen, "; Batch 2 of 2 - 2 tags")

	custom, err := m.Materialize(Source{Kind: scriptstore.KindCustomized, Text: customScript}, b, 3)
	require.NoError(t, err)
	assert.Contains(t, custom, "; Batch 2 of 3 - 2 tags")
	assert.Contains(t, custom, "Click(100, 200) ; moved button")
	assert.NotContains(t, custom, "IsLastBatch")

	_, err = m.Materialize(Source{Kind: scriptstore.KindCustomized, Text: "nothing here"}, b, 3)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestInspect(t *testing.T) {
	h := Inspect(customScript)
	assert.Equal(t, Header{Village: "old", Batch: 1, Total: 1, Tags: 2}, h)

	h = Inspect("no header")
	assert.Equal(t, Header{Village: "Unknown"}, h)
}

func TestMarkCustomized(t *testing.T) {
	marked := MarkCustomized(customScript)
	lines := strings.Split(marked, "\n")

	require.Greater(t, len(lines), 3)
	assert.Equal(t, customizedMarkerLine, lines[2])
	assert.True(t, Inspect(marked).Customized)
	assert.Equal(t, marked, MarkCustomized(marked))

	assert.Equal(t, "a\nb", MarkCustomized("a\nb"))
}
