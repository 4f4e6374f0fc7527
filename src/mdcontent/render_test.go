package mdcontent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	t.Run("fenced code blocks", func(t *testing.T) {
		html := RenderMarkdown("```\nmultiple lines\n\tof code\n```")
		t.Log(html)
		assert.Equal(t, 1, strings.Count(html, "<pre"))
		assert.Contains(t, html, `class="mbbs-code"`)
		assert.Contains(t, html, "multiple lines\n\tof code")
	})
	t.Run("raw html passes through", func(t *testing.T) {
		html := RenderMarkdown(`<p style="color:red">styled</p>`)
		assert.Contains(t, html, `style="color:red"`)
	})
	t.Run("marker image renders inside blockquote", func(t *testing.T) {
		html := RenderMarkdown("> ![^mbbs_reply_visible_tag^](x.png)")
		assert.Contains(t, html, "<blockquote>")
		assert.Contains(t, html, `alt="^mbbs_reply_visible_tag^"`)
	})
}

func TestRenderPlaintext(t *testing.T) {
	text := RenderPlaintext("# Title\n\nSome **bold** text with [a link](https://example.com).")
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "bold")
	assert.Contains(t, text, "a link")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "](")
}
