package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// NamePlaceholder is replaced by the contact's name in every occurrence.
const NamePlaceholder = "{name}"

const escapedPlaceholder = "%7Bname%7D"

var markdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Template is the HTML body shared by every message of a run.
type Template struct {
	body string
}

func NewTemplate(body string) Template {
	return Template{body: body}
}

// LoadTemplate reads an HTML template. Markdown files (.md, .markdown) are converted to HTML first.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("%w: '%s' => %v", ErrTemplateNotFound, path, err)
	}
	if !utf8.Valid(data) {
		return Template{}, fmt.Errorf("%w: '%s' is not a readable UTF-8 text file", ErrTemplateNotFound, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		var buf bytes.Buffer
		if err := markdown.Convert(data, &buf); err != nil {
			return Template{}, fmt.Errorf("%w: render '%s' => %v", ErrTemplateNotFound, path, err)
		}
		// link destinations come out percent-encoded
		return NewTemplate(strings.ReplaceAll(buf.String(), escapedPlaceholder, NamePlaceholder)), nil
	}

	return NewTemplate(string(data)), nil
}

// Render substitutes name for the placeholder. A template without the placeholder is returned as is.
func (t Template) Render(name string) string {
	return strings.ReplaceAll(t.body, NamePlaceholder, name)
}

func (t Template) String() string {
	return t.body
}
