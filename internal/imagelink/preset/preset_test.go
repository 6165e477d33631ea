package preset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	catalog, err := LoadDefaults()
	require.NoError(t, err)
	require.NotEmpty(t, catalog.List())

	p, err := catalog.Get("photoreal")
	require.NoError(t, err)
	require.Equal(t, "Photorealistic", p.Label)
	require.NotEmpty(t, p.PromptSuffix)
}

func TestLoadRejectsMissingSlug(t *testing.T) {
	_, err := Load("test", []byte("presets:\n  - label: Broken\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing slug")
}

func TestLoadRejectsDuplicateSlug(t *testing.T) {
	data := []byte(`presets:
  - slug: dup
    label: One
  - slug: dup
    label: Two
`)
	_, err := Load("test", data)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate slug")
}

func TestListSortedBySlug(t *testing.T) {
	data := []byte(`presets:
  - slug: zeta
    label: Z
  - slug: alpha
    label: A
`)
	catalog, err := Load("test", data)
	require.NoError(t, err)

	list := catalog.List()
	require.Len(t, list, 2)
	require.Equal(t, "alpha", list[0].Slug)
	require.Equal(t, "zeta", list[1].Slug)
}

func TestApplyKeepsCallerModel(t *testing.T) {
	p := Preset{Slug: "sketch", Label: "Sketch", Model: "preset/model", PromptSuffix: "pencil sketch"}

	model, prompt := p.Apply("caller/model", "a fox")
	require.Equal(t, "caller/model", model)
	require.Equal(t, "a fox, pencil sketch", prompt)

	model, prompt = p.Apply("", "a fox")
	require.Equal(t, "preset/model", model)
	require.Equal(t, "a fox, pencil sketch", prompt)
}
