// Package format selects a parser from a file extension.
package format

import (
	"strings"

	"seqview/internal/fasta"
	"seqview/internal/genbank"
	"seqview/internal/section"
)

// Kind names the parser an extension maps to.
type Kind string

const (
	FASTA   Kind = "fasta"
	GenBank Kind = "genbank"
	Raw     Kind = "raw"
)

// KindOf maps ext to a parser kind. Matching is case-sensitive.
func KindOf(ext string) Kind {
	switch ext {
	case "fasta", "fa":
		return FASTA
	case "genbank", "gb", "gbk":
		return GenBank
	default:
		return Raw
	}
}

// Extension returns the substring after the last '.' in name, or name itself
// when it has no '.' or ends with one.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return name
	}
	return name[i+1:]
}

// Dispatch parses text with the parser selected by ext. Unrecognized
// extensions never error: the whole text is returned as a single section
// labeled with name.
func Dispatch(name, ext, text string) ([]section.Section, error) {
	switch KindOf(ext) {
	case FASTA:
		return fasta.Parse(text)
	case GenBank:
		return genbank.Parse(text), nil
	default:
		return []section.Section{section.New(name, text)}, nil
	}
}
