package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqview/internal/fasta"
	"seqview/internal/format"
	"seqview/internal/section"
)

type recorder struct {
	calls [][]section.Section
}

func (r *recorder) Render(secs []section.Section) error {
	r.calls = append(r.calls, secs)
	return nil
}

func TestLoadFileFasta(t *testing.T) {
	p := filepath.Join(t.TempDir(), "reads.fa")
	require.NoError(t, os.WriteFile(p, []byte(">r1\nAC\nGT\n"), 0o644))

	res, err := New(Options{}).LoadFile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "reads.fa", res.Name)
	assert.Equal(t, "fa", res.Ext)
	assert.Equal(t, format.FASTA, res.Kind)
	assert.Equal(t, []section.Section{section.New("r1", "ACGT")}, res.Sections)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := New(Options{}).LoadFile(context.Background(), filepath.Join(t.TempDir(), "none.fa"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFoldCase(t *testing.T) {
	text := ">a\nAC\n"

	res, err := New(Options{}).Load(context.Background(), "UP.FASTA", strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, format.Raw, res.Kind)
	assert.Equal(t, []section.Section{section.New("UP.FASTA", text)}, res.Sections)

	res, err = New(Options{FoldCase: true}).Load(context.Background(), "UP.FASTA", strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, format.FASTA, res.Kind)
	assert.Equal(t, []section.Section{section.New("a", "AC")}, res.Sections)
}

func TestLoadTooLarge(t *testing.T) {
	ld := New(Options{MaxBytes: 4})
	_, err := ld.Load(context.Background(), "x.txt", strings.NewReader("12345"))
	assert.True(t, errors.Is(err, ErrTooLarge))

	res, err := ld.Load(context.Background(), "x.txt", strings.NewReader("1234"))
	require.NoError(t, err)
	assert.Equal(t, "1234", res.Sections[0].Data)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Load(ctx, "x.gb", strings.NewReader("LOCUS"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadParseError(t *testing.T) {
	res, err := New(Options{}).Load(context.Background(), "bad.fasta", strings.NewReader("ACGT\n"))
	assert.ErrorIs(t, err, fasta.ErrSequenceBeforeHeader)
	assert.Equal(t, format.FASTA, res.Kind)
	assert.Nil(t, res.Sections)
}

func TestRenderReplacesPerCall(t *testing.T) {
	ld := New(Options{})
	rec := &recorder{}
	ctx := context.Background()

	first, err := ld.Parse("a.gbk", "LOCUS x\nFEATURES\nORIGIN\nacgt")
	require.NoError(t, err)
	require.NoError(t, ld.Render(ctx, rec, first))

	second, err := ld.Parse("b.txt", "hello")
	require.NoError(t, err)
	require.NoError(t, ld.Render(ctx, rec, second))

	require.Len(t, rec.calls, 2)
	assert.Len(t, rec.calls[0], 3)
	assert.Equal(t, []section.Section{section.New("b.txt", "hello")}, rec.calls[1])
}
