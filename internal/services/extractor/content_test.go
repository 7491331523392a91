package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Go Memory Model</title>
	<script>trackVisitor();</script>
	<style>body { margin: 0; }</style>
</head>
<body>
	<header><h1>Site Banner</h1></header>
	<nav><a href="/home">Home</a><a href="/docs">Docs</a></nav>
	<main>
		<h1>The Go Memory Model</h1>
		<p>The memory model specifies the conditions under which reads
		observe writes in concurrent programs.</p>
		<a href="/ref/spec">language specification</a>
	</main>
	<aside>Related reading</aside>
	<footer>Copyright 2026</footer>
</body>
</html>`

func TestProcessHTML_StripsChrome(t *testing.T) {
	_, text, err := processHTML(samplePage, "https://example.org/memory")
	require.NoError(t, err)

	assert.Contains(t, text, "The Go Memory Model")
	assert.Contains(t, text, "memory model specifies")

	assert.NotContains(t, text, "trackVisitor")
	assert.NotContains(t, text, "margin: 0")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "Site Banner")
	assert.NotContains(t, text, "Related reading")
	assert.NotContains(t, text, "Copyright 2026")
}

func TestProcessHTML_ProducesMarkdown(t *testing.T) {
	_, text, err := processHTML(samplePage, "https://example.org/memory")
	require.NoError(t, err)

	assert.Contains(t, text, "# The Go Memory Model")
	assert.Contains(t, text, "[language specification](https://example.org/ref/spec)")
}

func TestProcessHTML_TitleFromTitleTag(t *testing.T) {
	title, _, err := processHTML(samplePage, "https://example.org/memory")
	require.NoError(t, err)
	assert.Equal(t, "Go Memory Model", title)
}

func TestProcessHTML_TitleFallsBackToOpenGraph(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="Shared Title">
	</head><body><p>content</p></body></html>`

	title, _, err := processHTML(page, "https://example.org/")
	require.NoError(t, err)
	assert.Equal(t, "Shared Title", title)
}

func TestProcessHTML_TitleFallsBackToFirstH1(t *testing.T) {
	page := `<html><body>
		<h1>Heading Title</h1>
		<h1>Second Heading</h1>
		<p>content</p>
	</body></html>`

	title, _, err := processHTML(page, "https://example.org/")
	require.NoError(t, err)
	assert.Equal(t, "Heading Title", title)
}

func TestProcessHTML_TitleFoundInsideRemovedHeader(t *testing.T) {
	// The h1 lives in a header element that cleanup strips; the title must
	// still be read while the text must not include it.
	page := `<html><body>
		<header><h1>Banner Heading</h1></header>
		<p>body content</p>
	</body></html>`

	title, text, err := processHTML(page, "https://example.org/")
	require.NoError(t, err)
	assert.Equal(t, "Banner Heading", title)
	assert.NotContains(t, text, "Banner Heading")
	assert.Contains(t, text, "body content")
}

func TestProcessHTML_NoTitleAnywhere(t *testing.T) {
	title, _, err := processHTML(`<html><body><p>just text</p></body></html>`, "https://example.org/")
	require.NoError(t, err)
	assert.Empty(t, title)
}

func TestProcessHTML_PrefersSemanticContentRoot(t *testing.T) {
	page := `<html><body>
		<div>sidebar cruft outside the article</div>
		<article><p>the actual article</p></article>
	</body></html>`

	_, text, err := processHTML(page, "https://example.org/")
	require.NoError(t, err)
	assert.Contains(t, text, "the actual article")
	assert.NotContains(t, text, "sidebar cruft")
}

func TestProcessHTML_WholeBodyWithoutContentRoot(t *testing.T) {
	page := `<html><body>
		<div><p>first block</p></div>
		<div><p>second block</p></div>
	</body></html>`

	_, text, err := processHTML(page, "https://example.org/")
	require.NoError(t, err)
	assert.Contains(t, text, "first block")
	assert.Contains(t, text, "second block")
}

func TestExtractTitle_TrimsWhitespace(t *testing.T) {
	page := `<html><head><title>
		Padded Title
	</title></head><body><p>x</p></body></html>`

	title, _, err := processHTML(page, "https://example.org/")
	require.NoError(t, err)
	assert.Equal(t, "Padded Title", title)
}

func TestPDFTitle_FromFilename(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/papers/raft-extended.pdf", "raft extended"},
		{"/whitepaper.PDF", "whitepaper"},
		{"/a/b/annual-report-2026.pdf", "annual report 2026"},
	}

	for _, tt := range tests {
		parsed := mustParse(t, "https://example.org"+tt.path)
		assert.Equal(t, tt.expected, pdfTitle(parsed))
	}
}

func TestIsPDF_ByContentTypeAndExtension(t *testing.T) {
	assert.True(t, isPDF("application/pdf", "/doc"))
	assert.True(t, isPDF("application/pdf; charset=binary", "/doc"))
	assert.True(t, isPDF("", "/files/paper.pdf"))
	assert.True(t, isPDF("", "/files/PAPER.PDF"))
	assert.False(t, isPDF("text/html", "/page"))
	assert.False(t, isPDF("", "/files/paper.html"))
}

func TestIsHTML_AcceptsMissingContentType(t *testing.T) {
	assert.True(t, isHTML(""))
	assert.True(t, isHTML("text/html; charset=utf-8"))
	assert.True(t, isHTML("application/xhtml+xml"))
	assert.False(t, isHTML("application/json"))
	assert.False(t, isHTML("image/png"))
}
