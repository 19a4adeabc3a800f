package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqview/internal/fasta"
	"seqview/internal/section"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	// keep a stray ./config.json from leaking into tests
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.json")}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParseJSON(t *testing.T) {
	p := writeFile(t, "s.fasta", ">seq1\nACGT\nTTGG\n>seq2\nCCCC")
	out, _, err := run(t, "parse", "--format", "json", p)
	require.NoError(t, err)

	var got []section.Section
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []section.Section{section.New("seq1", "ACGTTTGG"), section.New("seq2", "CCCC")}, got)
}

func TestParseTextGenbank(t *testing.T) {
	p := writeFile(t, "r.gb", "LOCUS x\nFEATURES\n  CDS 1..10\nORIGIN\nATGC\n")
	out, _, err := run(t, "parse", "--no-color", p)
	require.NoError(t, err)
	assert.Contains(t, out, "== metadata ==\n(1 lines)\nLOCUS x\n")
	assert.Contains(t, out, "== origin ==\n(1 lines)\nATGC\n")
}

func TestParseFoldCase(t *testing.T) {
	p := writeFile(t, "UP.FASTA", ">a\nAC\n")

	out, _, err := run(t, "parse", "-f", "yaml", p)
	require.NoError(t, err)
	assert.Contains(t, out, "description: UP.FASTA")

	out, _, err = run(t, "parse", "-f", "yaml", "--fold-case", p)
	require.NoError(t, err)
	assert.Contains(t, out, "description: a")
}

func TestParseErrors(t *testing.T) {
	p := writeFile(t, "bad.fa", "ACGT\n")
	_, _, err := run(t, "parse", p)
	assert.ErrorIs(t, err, fasta.ErrSequenceBeforeHeader)

	_, _, err = run(t, "parse", "--format", "xml", p)
	assert.ErrorContains(t, err, "unknown output format")

	_, _, err = run(t, "parse")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "seqview "+version+"\n", out)
}

func TestFetchPrintsSections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/efetch.fcgi", r.URL.Path)
		if r.URL.Query().Get("id") != "ACC1" {
			http.Error(w, "unknown id", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, "LOCUS ACC1\nFEATURES\n gene 1..4\nORIGIN\n 1 acgt\n//\n")
	}))
	defer srv.Close()
	cfg := writeFile(t, "config.json", fmt.Sprintf(`{"ncbi_base_url": %q}`, srv.URL))

	out, _, err := run(t, "--config", cfg, "fetch", "--format", "json", "ACC1")
	require.NoError(t, err)
	var got []section.Section
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "features", got[1].Description)
	assert.Equal(t, []string{" 1 acgt", "//"}, got[2].Lines)

	_, _, err = run(t, "--config", cfg, "fetch", "MISSING")
	assert.Error(t, err)
}
