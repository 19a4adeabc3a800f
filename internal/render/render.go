// Package render writes parsed sections to a stream as labeled text blocks,
// JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"seqview/internal/section"
)

// Text prints each section as a colored heading followed by its body.
type Text struct {
	W       io.Writer
	NoColor bool
}

func (t Text) Render(secs []section.Section) error {
	heading := color.New(color.FgMagenta, color.Bold)
	meta := color.New(color.FgHiBlack)
	if t.NoColor {
		heading.DisableColor()
		meta.DisableColor()
	}
	for i, s := range secs {
		if i > 0 {
			if _, err := fmt.Fprintln(t.W); err != nil {
				return err
			}
		}
		if _, err := heading.Fprintf(t.W, "== %s ==\n", s.Description); err != nil {
			return err
		}
		if s.IsLines() {
			meta.Fprintf(t.W, "(%d lines)\n", len(s.Lines))
		} else {
			meta.Fprintf(t.W, "(%d chars)\n", len(s.Data))
		}
		body := s.Text()
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		if _, err := io.WriteString(t.W, body); err != nil {
			return err
		}
	}
	return nil
}

// JSON writes the sections as an indented JSON array.
type JSON struct {
	W io.Writer
}

func (j JSON) Render(secs []section.Section) error {
	enc := json.NewEncoder(j.W)
	enc.SetIndent("", "  ")
	return enc.Encode(secs)
}

// YAML writes the sections as a YAML sequence.
type YAML struct {
	W io.Writer
}

func (y YAML) Render(secs []section.Section) error {
	enc := yaml.NewEncoder(y.W)
	enc.SetIndent(2)
	if err := enc.Encode(secs); err != nil {
		return err
	}
	return enc.Close()
}

// Renderer displays sections. Each call replaces whatever was displayed
// before; the web and terminal UIs implement it as well.
type Renderer interface {
	Render(secs []section.Section) error
}

// ByName returns the renderer for name: text, json or yaml.
func ByName(name string, w io.Writer, noColor bool) (Renderer, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return Text{W: w, NoColor: noColor}, nil
	case "json":
		return JSON{W: w}, nil
	case "yaml", "yml":
		return YAML{W: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
	}
}
