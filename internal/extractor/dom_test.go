package extractor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
)

func newExtractor() DomExtractor {
	recorder := metadata.NewRecorder("extractor-test")
	return NewDomExtractor(&recorder)
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Sample Page Title</title>
	<meta name="Description" content="A sample description.">
	<meta property="og:type" content="article">
	<link rel="canonical" href="https://example.com/sample">
	<link rel="next" href="https://example.com/sample?page=2">
	<script type="application/ld+json">{"@type": "Article", "headline": "Sample"}</script>
	<script type="application/ld+json">{broken json</script>
</head>
<body>
	<nav><a href="/nav-link">nav</a></nav>
	<h1>Sample Heading</h1>
	<p>Body text for the sample page.</p>
	<a href="/relative">rel</a>
	<a href="https://example.com/absolute">abs</a>
	<a href="#fragment">frag</a>
	<a href="mailto:x@example.com">mail</a>
	<a href="tel:+123">tel</a>
	<a href="javascript:void(0)">js</a>
	<img src="/a.png" alt="picture" width="100" height="80" loading="lazy">
	<img src="/b.png">
	<footer>footer text</footer>
</body>
</html>`

func TestExtract_MetaAndCanonical(t *testing.T) {
	ext := newExtractor()
	result, err := ext.Extract(mustURL(t, "https://example.com/sample"), []byte(samplePage))
	require.Nil(t, err)

	assert.Equal(t, "Sample Page Title", result.Meta["title"])
	assert.Equal(t, "A sample description.", result.Meta["description"], "meta names are lowercased")
	assert.Equal(t, "article", result.Meta["og:type"], "property attributes count too")
	assert.Equal(t, "https://example.com/sample", result.CanonicalURL)
	assert.True(t, result.HasRelNext)
	assert.False(t, result.HasRelPrev)
}

func TestExtract_LinksFilterNonNavigableSchemes(t *testing.T) {
	ext := newExtractor()
	result, err := ext.Extract(mustURL(t, "https://example.com/sample"), []byte(samplePage))
	require.Nil(t, err)

	assert.Contains(t, result.Links, "/relative")
	assert.Contains(t, result.Links, "https://example.com/absolute")
	assert.Contains(t, result.Links, "/nav-link", "link harvesting runs before boilerplate stripping")
	for _, link := range result.Links {
		assert.NotContains(t, link, "mailto:")
		assert.NotContains(t, link, "tel:")
		assert.NotContains(t, link, "javascript:")
		assert.False(t, link[0] == '#')
	}
}

func TestExtract_Images(t *testing.T) {
	ext := newExtractor()
	result, err := ext.Extract(mustURL(t, "https://example.com/sample"), []byte(samplePage))
	require.Nil(t, err)

	require.Len(t, result.Images, 2)
	assert.Equal(t, "/a.png", result.Images[0].Src)
	assert.Equal(t, "picture", result.Images[0].Alt)
	assert.Equal(t, "100", result.Images[0].Width)
	assert.Equal(t, "lazy", result.Images[0].Loading)
	assert.Empty(t, result.Images[1].Alt)
}

func TestExtract_StructuredDataSkipsUnrepairableBlocks(t *testing.T) {
	ext := newExtractor()
	result, err := ext.Extract(mustURL(t, "https://example.com/sample"), []byte(samplePage))
	require.Nil(t, err)

	// the valid block parses; the broken one is repaired or silently skipped
	require.NotEmpty(t, result.StructuredData)
	first, ok := result.StructuredData[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Article", first["@type"])
}

func TestExtract_TextContentExcludesChrome(t *testing.T) {
	ext := newExtractor()
	result, err := ext.Extract(mustURL(t, "https://example.com/sample"), []byte(samplePage))
	require.Nil(t, err)

	assert.Contains(t, result.TextContent, "Body text for the sample page.")
	assert.NotContains(t, result.TextContent, "footer text")
	assert.Equal(t, 1, result.H1Count)
	assert.Greater(t, result.WordCount, 0)
}

func TestExtract_EmptyInputYieldsEmptyNotAbsentFields(t *testing.T) {
	ext := newExtractor()
	result, err := ext.Extract(mustURL(t, "https://example.com/empty"), []byte(""))
	require.Nil(t, err)

	assert.NotNil(t, result.Meta)
	assert.NotNil(t, result.Links)
	assert.NotNil(t, result.Images)
	assert.NotNil(t, result.StructuredData)
}
