package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"seqview/internal/section"
)

var sample = []section.Section{
	section.New("seq1", "ACGTTTGG"),
	section.NewLines("origin", []string{"1 acgt", "//"}),
}

func TestTextRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text{W: &buf, NoColor: true}.Render(sample))

	want := "== seq1 ==\n(8 chars)\nACGTTTGG\n\n== origin ==\n(2 lines)\n1 acgt\n//\n"
	assert.Equal(t, want, buf.String())
}

func TestTextRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text{W: &buf, NoColor: true}.Render(nil))
	assert.Empty(t, buf.String())
}

func TestJSONRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{W: &buf}.Render(sample))

	var back []section.Section
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sample, back)
}

func TestYAMLRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML{W: &buf}.Render(sample))
	assert.Contains(t, buf.String(), "description: seq1")

	var back []section.Section
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sample, back)
}

func TestByName(t *testing.T) {
	var buf bytes.Buffer
	for name, want := range map[string]Renderer{
		"":     Text{W: &buf, NoColor: true},
		"TEXT": Text{W: &buf, NoColor: true},
		"json": JSON{W: &buf},
		"yml":  YAML{W: &buf},
	} {
		got, err := ByName(name, &buf, true)
		require.NoError(t, err, name)
		assert.IsType(t, want, got, name)
	}

	_, err := ByName("xml", &buf, false)
	assert.Error(t, err)
}
