// Package genbank splits a GenBank flat file into its metadata, features and
// origin blocks. Lines are kept verbatim; nothing inside a block is
// interpreted.
package genbank

import (
	"strings"

	"seqview/internal/section"
)

// Section descriptions, in document order.
const (
	Metadata = "metadata"
	Features = "features"
	Origin   = "origin"
)

const (
	featuresKeyword = "FEATURES"
	originKeyword   = "ORIGIN"
)

// marker is an optional line index.
type marker struct {
	idx int
	ok  bool
}

// find locates keyword in lines[from:], case-insensitively. A line whose
// first field is the keyword wins over a line that merely contains it.
func find(lines []string, from int, keyword string) marker {
	sub := marker{}
	for i := from; i < len(lines); i++ {
		up := strings.ToUpper(lines[i])
		if !strings.Contains(up, keyword) {
			continue
		}
		if f := strings.Fields(up); len(f) > 0 && f[0] == keyword {
			return marker{idx: i, ok: true}
		}
		if !sub.ok {
			sub = marker{idx: i, ok: true}
		}
	}
	return sub
}

// Parse splits text into at most three line-form sections.
//
// With both markers present the result is exactly metadata, features and
// origin. A missing FEATURES line drops the features section, a missing
// ORIGIN line drops the origin section, and with neither the whole input is
// returned as metadata.
func Parse(text string) []section.Section {
	if text == "" {
		return []section.Section{}
	}
	lines := section.SplitLines(text)
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	feat := find(lines, 0, featuresKeyword)
	from := 0
	if feat.ok {
		from = feat.idx + 1
	}
	orig := find(lines, from, originKeyword)

	switch {
	case feat.ok && orig.ok:
		return []section.Section{
			section.NewLines(Metadata, clone(lines[:feat.idx])),
			section.NewLines(Features, clone(lines[feat.idx+1:orig.idx])),
			section.NewLines(Origin, clone(lines[orig.idx+1:])),
		}
	case feat.ok:
		return []section.Section{
			section.NewLines(Metadata, clone(lines[:feat.idx])),
			section.NewLines(Features, clone(lines[feat.idx+1:])),
		}
	case orig.ok:
		return []section.Section{
			section.NewLines(Metadata, clone(lines[:orig.idx])),
			section.NewLines(Origin, clone(lines[orig.idx+1:])),
		}
	default:
		return []section.Section{section.NewLines(Metadata, clone(lines))}
	}
}

// clone detaches a range so sections never share a backing array.
func clone(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}
