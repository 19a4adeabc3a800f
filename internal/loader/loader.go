// Package loader reads a selected file, dispatches it to the matching parser
// and hands the sections to a renderer.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"seqview/internal/format"
	"seqview/internal/render"
	"seqview/internal/section"
)

// ErrTooLarge is returned when the input exceeds the configured limit.
var ErrTooLarge = errors.New("loader: input exceeds size limit")

// Result is one loaded file.
type Result struct {
	Name     string
	Ext      string
	Kind     format.Kind
	Sections []section.Section
}

// Options configure a Loader.
type Options struct {
	Logger *log.Logger
	// FoldCase lower-cases the derived extension before dispatch.
	FoldCase bool
	// MaxBytes limits input size; 0 means no limit.
	MaxBytes int64
}

type Loader struct {
	logger   *log.Logger
	foldCase bool
	maxBytes int64
}

func New(opts Options) *Loader {
	ld := &Loader{logger: opts.Logger, foldCase: opts.FoldCase, maxBytes: opts.MaxBytes}
	if ld.logger == nil {
		ld.logger = log.New(io.Discard)
	}
	return ld
}

// LoadFile reads path and parses it.
func (ld *Loader) LoadFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return ld.Load(ctx, filepath.Base(path), f)
}

// Load reads r as text and parses it according to name's extension.
func (ld *Loader) Load(ctx context.Context, name string, r io.Reader) (Result, error) {
	if ld.maxBytes > 0 {
		r = io.LimitReader(r, ld.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", name, err)
	}
	if ld.maxBytes > 0 && int64(len(data)) > ld.maxBytes {
		return Result{}, fmt.Errorf("%s: %w (%d bytes)", name, ErrTooLarge, ld.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return ld.Parse(name, string(data))
}

// Parse dispatches already-read text.
func (ld *Loader) Parse(name, text string) (Result, error) {
	ext := format.Extension(name)
	if ld.foldCase {
		ext = strings.ToLower(ext)
	}
	res := Result{Name: name, Ext: ext, Kind: format.KindOf(ext)}
	secs, err := format.Dispatch(name, ext, text)
	if err != nil {
		ld.logger.Warn("parse failed", "file", name, "kind", res.Kind, "err", err)
		return res, fmt.Errorf("parse %s: %w", name, err)
	}
	res.Sections = secs
	ld.logger.Debug("parsed file", "file", name, "ext", ext, "kind", res.Kind, "sections", len(secs), "bytes", len(text))
	return res, nil
}

// Render hands res to r, which replaces anything it displayed before.
func (ld *Loader) Render(ctx context.Context, r render.Renderer, res Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.Render(res.Sections)
}
