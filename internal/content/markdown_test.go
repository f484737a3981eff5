package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("# Launch\n\nWe shot **Cadenza** in 360.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, html, `<h1 id="launch">Launch</h1>`)
	assert.Contains(t, html, "<strong>Cadenza</strong>")
	assert.Contains(t, html, "<table>")
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	html, err := RenderMarkdown("hello <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestExcerpt(t *testing.T) {
	src := "## Heading\n\nKampala skyline from the **drone**, shot at golden hour."
	assert.Equal(t, "Heading Kampala skyline from the drone, shot at golden hour.", Excerpt(src, 0))
	assert.Equal(t, "Heading Kampala…", Excerpt(src, 18))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Cadenza Residences Nakasero - 1 Bedroom": "cadenza-residences-nakasero-1-bedroom",
		"  VAAL's  New Tower!  ":                  "vaal-s-new-tower",
		"Café Résidence":                          "cafe-residence",
		"---":                                     "",
		"3D Renders & VR":                         "3d-renders-vr",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}
