package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestResolveImageURL(t *testing.T) {
	t.Run("default category", func(t *testing.T) {
		assert.Equal(t, "/images/properties/residential/a.jpg", ResolveImageURL("a.jpg"))
	})
	t.Run("category", func(t *testing.T) {
		assert.Equal(t, "/images/properties/commercial/a.jpg", ResolveImageURL("a.jpg", ResolveConfig{Category: CategoryCommercial}))
		assert.Equal(t, "/images/properties/vaal/a.jpg", ResolveImageURL("a.jpg", ResolveConfig{Category: "vaal"}))
	})
	t.Run("thumbnail wins over category", func(t *testing.T) {
		assert.Equal(t, "/images/properties/thumbnails/a.jpg", ResolveImageURL("a.jpg", ResolveConfig{Category: CategoryFeatured, UseThumbnail: true}))
	})
	t.Run("blank category falls back", func(t *testing.T) {
		assert.Equal(t, "/images/properties/residential/a.jpg", ResolveImageURL("a.jpg", ResolveConfig{Category: "  "}))
	})
}

func TestResolveImageURLSanitizes(t *testing.T) {
	want := ResolveImageURL("a.jpg")
	for _, raw := range []string{
		`"a.jpg"`,
		`'a.jpg'`,
		"  a.jpg\t",
		` "a.jpg" `,
		"`a.jpg`",
		`"'a.jpg'"`,
	} {
		assert.Equal(t, want, ResolveImageURL(raw), "input %q", raw)
	}
}

func TestResolveImageURLEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", `""`, `''`, "\n"} {
		assert.Equal(t, "/api/placeholder/400/300", ResolveImageURL(raw), "input %q", raw)
	}
	// thumbnail flag does not change the placeholder
	assert.Equal(t, DefaultPlaceholder, ResolveImageURL("", ResolveConfig{UseThumbnail: true}))
}

func TestResolveImageURLRejectsPaths(t *testing.T) {
	for _, raw := range []string{
		"../vaal/vaal-nakasero-exterior.jpg",
		"vaal/exterior.jpg",
		`..\vaal\exterior.jpg`,
		"..",
		` "/etc/passwd" `,
	} {
		assert.Equal(t, DefaultPlaceholder, ResolveImageURL(raw, ResolveConfig{Category: "vaal"}), "input %q", raw)
	}

	urls := ResolvePropertyImages(`["plot.jpg","../vaal/vaal-nakasero-exterior.jpg"]`)
	assert.Equal(t, []string{"/images/properties/residential/plot.jpg", DefaultPlaceholder}, urls)
}

func TestResolvePropertyImages(t *testing.T) {
	parsed := []string{"a.jpg", "b.jpg"}
	want := []string{"/images/properties/residential/a.jpg", "/images/properties/residential/b.jpg"}

	cases := []struct {
		name  string
		input any
	}{
		{"string slice", parsed},
		{"any slice", []any{"a.jpg", "b.jpg"}},
		{"json string", `["a.jpg","b.jpg"]`},
		{"double encoded", `"[\"a.jpg\",\"b.jpg\"]"`},
		{"raw message", json.RawMessage(`["a.jpg", "b.jpg"]`)},
		{"datatypes json", datatypes.JSON(`["a.jpg","b.jpg"]`)},
		{"bytes", []byte(`["a.jpg","b.jpg"]`)},
		{"blank entries", []string{"a.jpg", "", "  ", `""`, "b.jpg"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, want, ResolvePropertyImages(tc.input))
		})
	}
}

func TestResolvePropertyImagesFallbacks(t *testing.T) {
	placeholder := []string{"/api/placeholder/400/300"}

	assert.Equal(t, placeholder, ResolvePropertyImages(nil))
	assert.Equal(t, placeholder, ResolvePropertyImages((*string)(nil)))
	assert.Equal(t, placeholder, ResolvePropertyImages(""))
	assert.Equal(t, placeholder, ResolvePropertyImages("null"))
	assert.Equal(t, placeholder, ResolvePropertyImages([]string{}))
	assert.Equal(t, placeholder, ResolvePropertyImages(datatypes.JSON(nil)))
	assert.Equal(t, placeholder, ResolvePropertyImages(42))
}

func TestResolvePropertyImagesBareFilename(t *testing.T) {
	assert.Equal(t, []string{"/images/properties/residential/a.jpg"}, ResolvePropertyImages("a.jpg"))
	assert.Equal(t, []string{"/images/properties/residential/a.jpg"}, ResolvePropertyImages(`"a.jpg"`))
	assert.Equal(t, []string{"/images/properties/residential/a b.jpg"}, ResolvePropertyImages("a b.jpg"))
}

func TestResolvePropertyImagesForwardsConfig(t *testing.T) {
	got := ResolvePropertyImages(`["a.jpg","b.jpg"]`, ResolveConfig{UseThumbnail: true})
	assert.Equal(t, []string{"/images/properties/thumbnails/a.jpg", "/images/properties/thumbnails/b.jpg"}, got)

	got = ResolvePropertyImages("a.jpg", ResolveConfig{Category: CategoryFeatured})
	assert.Equal(t, []string{"/images/properties/featured/a.jpg"}, got)
}

func TestResolvePropertyImagesSkipsNonStrings(t *testing.T) {
	got := ResolvePropertyImages(`["a.jpg", 3, null, {"x": 1}]`)
	assert.Equal(t, []string{"/images/properties/residential/a.jpg"}, got)
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "/api/placeholder/800/600", PlaceholderURL(800, 600))

	w, h := ClampPlaceholderSize(0, 99999)
	assert.Equal(t, 400, w)
	assert.Equal(t, 4000, h)

	svg := string(PlaceholderSVG(120, 80))
	assert.Contains(t, svg, `width="120"`)
	assert.Contains(t, svg, `height="80"`)
	assert.Contains(t, svg, "120×80")
}
