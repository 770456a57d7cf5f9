// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package templatesource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/vaxtag/internal/config"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
	"github.com/matt-FFFFFF/vaxtag/internal/script"
	"github.com/spf13/afero"
)

var (
	// ErrGetTemplate is returned when the template cannot be fetched or read.
	ErrGetTemplate = errors.New("failed to get script template")
)

// FsFactory returns the filesystem local template files are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Load returns the template text selected by t. With neither field set it returns the built-in template.
func Load(ctx context.Context, t config.Template) (string, error) {
	switch {
	case t.URL != "":
		ctxlog.Debug(ctx, "fetching script template", "url", t.URL)

		b, err := Fetch(ctx, t.URL)
		if err != nil {
			return "", err
		}

		return string(b), nil

	case t.File != "":
		ctxlog.Debug(ctx, "reading script template", "file", t.File)

		b, err := afero.ReadFile(FsFactory(), t.File)
		if err != nil {
			return "", errors.Join(ErrGetTemplate, err)
		}

		return string(b), nil
	}

	return script.DefaultTemplate(), nil
}

// Generator loads the template selected by t and builds a script generator from it.
func Generator(ctx context.Context, t config.Template) (*script.Generator, error) {
	text, err := Load(ctx, t)
	if err != nil {
		return nil, err
	}

	return script.NewGenerator(text)
}

// Fetch retrieves the content of a single file using Hashicorp's go-getter.
// The download directory is removed after reading.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrGetTemplate
	}

	tmpDir, err := os.MkdirTemp("", "vaxtag-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetTemplate, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetTemplate, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string
	// Remote sources are fetched as a directory and the file is read from it.
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, errors.Join(ErrGetTemplate, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return nil, fmt.Errorf("%w: invalid URL format: %s", ErrGetTemplate, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := cli.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetTemplate, err)
	}

	b, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, errors.Join(ErrGetTemplate, err)
	}

	return b, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // scheme, host and path
)

// splitFileNameFromGetterURL returns the getter URL of the directory holding the file, and the file name.
// Any query string is kept on the directory URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, ok := strings.Cut(last, goGetterRefSeparator); ok {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)
	dir := filepath.Dir(last)

	if dir == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
