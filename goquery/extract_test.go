package goquery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecrawl/goquery"
)

func TestTextExtractor_ExtractText(t *testing.T) {
	t.Parallel()

	t.Run("extracts visible text without scripts and styles", func(t *testing.T) {
		t.Parallel()

		html := `<html>
<head><title>Title</title><style>body { color: red; }</style></head>
<body>
<script>var tracking = true;</script>
<h1>Welcome</h1>
<p>Some visible content.</p>
<noscript>Enable JavaScript</noscript>
</body>
</html>`

		e := goquery.NewTextExtractor()
		text, err := e.ExtractText(html)

		require.NoError(t, err)
		assert.Contains(t, text, "Welcome")
		assert.Contains(t, text, "Some visible content.")
		assert.NotContains(t, text, "tracking")
		assert.NotContains(t, text, "color: red")
		assert.NotContains(t, text, "Enable JavaScript")
	})

	t.Run("separates text from adjacent elements", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><p>first paragraph</p><p>second paragraph</p><div>a div</div></body></html>`

		e := goquery.NewTextExtractor()
		text, err := e.ExtractText(html)

		require.NoError(t, err)
		assert.NotContains(t, text, "paragraphsecond")
		assert.Contains(t, text, "first paragraph")
		assert.Contains(t, text, "second paragraph")
		assert.Contains(t, text, "a div")
	})

	t.Run("handles a document without a body", func(t *testing.T) {
		t.Parallel()

		e := goquery.NewTextExtractor()
		text, err := e.ExtractText("just some text")

		require.NoError(t, err)
		assert.Contains(t, text, "just some text")
	})
}

func TestLinkExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("resolves relative links against the base URL", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/docs">Docs</a>
<a href="about">About</a>
<a href="https://other.org/page">External</a>
</body></html>`

		e := goquery.NewLinkExtractor()
		links, err := e.ExtractLinks(html, "https://example.com/start/")

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://example.com/docs",
			"https://example.com/start/about",
			"https://other.org/page",
		}, links)
	})

	t.Run("skips non-http schemes and strips fragments", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="mailto:team@example.com">Mail</a>
<a href="javascript:void(0)">JS</a>
<a href="/docs#section-1">Docs</a>
<a href="/docs#section-2">Docs again</a>
</body></html>`

		e := goquery.NewLinkExtractor()
		links, err := e.ExtractLinks(html, "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/docs"}, links)
	})

	t.Run("returns no links for a page without anchors", func(t *testing.T) {
		t.Parallel()

		e := goquery.NewLinkExtractor()
		links, err := e.ExtractLinks("<html><body><p>nothing here</p></body></html>", "https://example.com/")

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("rejects an invalid base URL", func(t *testing.T) {
		t.Parallel()

		e := goquery.NewLinkExtractor()
		_, err := e.ExtractLinks("<html></html>", "://bad")
		assert.Error(t, err)
	})
}
