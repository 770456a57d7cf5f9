// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrTemplate is returned when a script template cannot be parsed or rendered.
var ErrTemplate = errors.New("invalid script template")

//go:embed templates/default.ahk.tmpl
var defaultTemplate string

// DefaultTemplate returns the built-in script template.
func DefaultTemplate() string {
	return defaultTemplate
}

// Generator renders fresh batch scripts from a text/template.
//
// Templates receive Params and the functions labelLine, countLine, tagList and villageVar,
// which render the parameter slots in the exact form Patch recognises. A template must emit
// tagList and villageVar so that scripts saved from it can be re-parameterized later.
type Generator struct {
	tmpl *template.Template
}

// NewGenerator parses a template and checks that its output can be patched.
func NewGenerator(text string) (*Generator, error) {
	tmpl, err := template.New("script").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"labelLine":  renderLabel,
			"countLine":  renderCount,
			"tagList":    renderItems,
			"villageVar": renderVariable,
			"ahk":        Escape,
		}).
		Parse(text)
	if err != nil {
		return nil, errors.Join(ErrTemplate, err)
	}

	g := &Generator{tmpl: tmpl}

	sample, err := g.Render(SampleParams(1))
	if err != nil {
		return nil, err
	}

	if _, err := Patch(sample, SampleParams(1)); err != nil {
		return nil, errors.Join(ErrTemplate, err)
	}

	return g, nil
}

// MustDefaultGenerator returns a Generator for the built-in template.
func MustDefaultGenerator() *Generator {
	g, err := NewGenerator(defaultTemplate)
	if err != nil {
		panic(fmt.Sprintf("built-in script template is invalid: %v", err))
	}

	return g
}

// Render produces the script text for p.
func (g *Generator) Render(p Params) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := g.tmpl.Execute(&sb, p); err != nil {
		return "", errors.Join(ErrTemplate, err)
	}

	return sb.String(), nil
}
