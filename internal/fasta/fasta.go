package fasta

// Package fasta splits FASTA formatted text into description/sequence
// sections. It keeps parsing simple and conservative: no validation of the
// sequence alphabet is performed.

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"seqview/internal/section"
)

// ErrSequenceBeforeHeader is returned when sequence data appears before the
// first '>' header line.
var ErrSequenceBeforeHeader = errors.New("fasta: sequence data before first header")

// ParseError records the line on which parsing failed.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse splits text into sections. Lines beginning with '>' start a new
// section whose description is the rest of the line; other lines are
// concatenated, without separator, onto the current section's data.
func Parse(text string) ([]section.Section, error) {
	records := []section.Section{}
	var current *section.Section
	for i, line := range section.SplitLines(text) {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if current != nil {
				records = append(records, *current)
			}
			current = &section.Section{Description: line[1:]}
			continue
		}
		if current == nil {
			return nil, &ParseError{Line: i + 1, Err: ErrSequenceBeforeHeader}
		}
		current.Data += line
	}
	if current != nil {
		records = append(records, *current)
	}
	return records, nil
}

// ParseReader reads all of r and parses it with Parse.
func ParseReader(r io.Reader) ([]section.Section, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}
