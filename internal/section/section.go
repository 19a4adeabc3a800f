// Package section holds the Section value produced by the format parsers and
// consumed by the renderers.
package section

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Section is a labeled unit of parsed text. A section carries either a single
// string (Data) or an ordered list of raw lines (Lines).
type Section struct {
	Description string
	Data        string
	Lines       []string
}

// New returns a string-form section.
func New(desc, data string) Section {
	return Section{Description: desc, Data: data}
}

// NewLines returns a line-form section. A nil slice is stored as empty so
// that line-form sections are always distinguishable from string-form ones.
func NewLines(desc string, lines []string) Section {
	if lines == nil {
		lines = []string{}
	}
	return Section{Description: desc, Lines: lines}
}

// IsLines reports whether s carries raw lines rather than a single string.
func (s Section) IsLines() bool {
	return s.Lines != nil
}

// Text returns the displayable body of the section.
func (s Section) Text() string {
	if s.IsLines() {
		return strings.Join(s.Lines, "\n")
	}
	return s.Data
}

var lineBreak = regexp.MustCompile(`\r\n|\n`)

// SplitLines splits text on CRLF or LF. A lone carriage return is left in
// the line content.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// wire is the encoded shape: data is a string or an array of strings.
type wire struct {
	Description string `json:"description" yaml:"description"`
	Data        any    `json:"data" yaml:"data"`
}

func (s Section) wire() wire {
	if s.IsLines() {
		return wire{Description: s.Description, Data: s.Lines}
	}
	return wire{Description: s.Description, Data: s.Data}
}

// MarshalJSON encodes data as a string or an array depending on the form.
func (s Section) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

// UnmarshalJSON accepts both data shapes.
func (s *Section) UnmarshalJSON(b []byte) error {
	var raw struct {
		Description string          `json:"description"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.Description = raw.Description
	s.Data, s.Lines = "", nil
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}
	if raw.Data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(raw.Data, &lines); err != nil {
			return fmt.Errorf("section %q: %w", raw.Description, err)
		}
		*s = NewLines(raw.Description, lines)
		return nil
	}
	if err := json.Unmarshal(raw.Data, &s.Data); err != nil {
		return fmt.Errorf("section %q: %w", raw.Description, err)
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (s Section) MarshalYAML() (any, error) {
	return s.wire(), nil
}

// UnmarshalYAML accepts both data shapes.
func (s *Section) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Description string    `yaml:"description"`
		Data        yaml.Node `yaml:"data"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	s.Description = raw.Description
	s.Data, s.Lines = "", nil
	switch raw.Data.Kind {
	case 0:
		return nil
	case yaml.SequenceNode:
		var lines []string
		if err := raw.Data.Decode(&lines); err != nil {
			return fmt.Errorf("section %q: %w", raw.Description, err)
		}
		*s = NewLines(raw.Description, lines)
		return nil
	default:
		return raw.Data.Decode(&s.Data)
	}
}
