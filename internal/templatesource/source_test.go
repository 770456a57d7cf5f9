// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package templatesource

import (
	"context"
	"testing"

	"github.com/matt-FFFFFF/vaxtag/internal/config"
	"github.com/matt-FFFFFF/vaxtag/internal/script"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "empty url", url: "", wantErr: true},
		{name: "unreachable git source", url: "git::http://notexist//form.ahk.tmpl", wantErr: true},
		{name: "local file", url: "./testdata/form.ahk.tmpl"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Fetch(context.Background(), tc.url)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrGetTemplate)
				assert.Nil(t, b)

				return
			}

			require.NoError(t, err)
			assert.Contains(t, string(b), "{{ tagList . }}")
		})
	}
}

func TestSplitFileNameFromGetterURL(t *testing.T) {
	testCases := []struct {
		url      string
		wantURL  string
		wantFile string
	}{
		{
			url:      "git::https://github.com/org/repo//templates/form.ahk.tmpl?ref=v1.0.0",
			wantURL:  "git::https://github.com/org/repo//templates?ref=v1.0.0",
			wantFile: "form.ahk.tmpl",
		},
		{
			url:      "git::https://github.com/org/repo//form.ahk.tmpl",
			wantURL:  "git::https://github.com/org/repo",
			wantFile: "form.ahk.tmpl",
		},
		{url: "https://example.com/form.ahk.tmpl"},
		{url: "git::https://github.com/org/repo//templates/"},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			gotURL, gotFile := splitFileNameFromGetterURL(tc.url)
			assert.Equal(t, tc.wantURL, gotURL)
			assert.Equal(t, tc.wantFile, gotFile)
		})
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "custom.tmpl", []byte("{{ tagList . }}\n{{ villageVar . }}\n"), 0o644))

	stub := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stub.Reset()

	text, err := Load(context.Background(), config.Template{})
	require.NoError(t, err)
	assert.Equal(t, script.DefaultTemplate(), text)

	text, err = Load(context.Background(), config.Template{File: "custom.tmpl"})
	require.NoError(t, err)
	assert.Equal(t, "{{ tagList . }}\n{{ villageVar . }}\n", text)

	_, err = Load(context.Background(), config.Template{File: "missing.tmpl"})
	require.ErrorIs(t, err, ErrGetTemplate)

	g, err := Generator(context.Background(), config.Template{File: "custom.tmpl"})
	require.NoError(t, err)

	out, err := g.Render(script.Params{Items: []string{"1"}, Batch: 1, Total: 1, Village: "v"})
	require.NoError(t, err)
	assert.Equal(t, "TagIDs := [\n    \"1\"\n]\nVillageName := \"v\"\n", out)
}

func TestGenerator_FromURL(t *testing.T) {
	g, err := Generator(context.Background(), config.Template{URL: "./testdata/form.ahk.tmpl"})
	require.NoError(t, err)

	out, err := g.Render(script.SampleParams(3))
	require.NoError(t, err)
	assert.Contains(t, out, "; ; Batch 3 of 3 - 25 tags")
}
