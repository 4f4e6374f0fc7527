package htmltransform

import (
	"testing"

	"git.mbbs.network/mbbs/mbbs/src/config"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"github.com/stretchr/testify/assert"
)

func init() {
	config.Config.ResourceBaseUrl = "http://res.example.com/resources/"
}

func TestWillRenderHTML(t *testing.T) {
	t.Run("relative image sources become absolute", func(t *testing.T) {
		got := WillRenderHTML(`<p><img src="img/a.png" data-src="img/a.png"/></p>`, RenderOptions{})
		assert.Contains(t, got, `src="http://res.example.com/resources/img/a.png"`)
		assert.Contains(t, got, `data-src="http://res.example.com/resources/img/a.png"`)
	})

	t.Run("absolute and data sources pass through", func(t *testing.T) {
		got := WillRenderHTML(`<img src="https://elsewhere.com/a.png"/>`, RenderOptions{})
		assert.Contains(t, got, `src="https://elsewhere.com/a.png"`)
	})

	t.Run("base64 images skip lazy loading", func(t *testing.T) {
		got := WillRenderHTML(`<img data-src="data:image/png;base64,AAAA"/>`, RenderOptions{})
		assert.Contains(t, got, `src="data:image/png;base64,AAAA"`)
	})

	t.Run("marker images keep their source", func(t *testing.T) {
		got := WillRenderHTML(`<img alt="^mbbs_reply_visible_tag^" src="x.png"/>`, RenderOptions{})
		assert.Contains(t, got, `src="x.png"`)
		assert.NotContains(t, got, "res.example.com")
	})

	t.Run("marker style propagates to next sibling", func(t *testing.T) {
		got := WillRenderHTML(
			`<span data-next-node-style="" style="color:red"></span><p>styled</p>`,
			RenderOptions{},
		)
		assert.Contains(t, got, `<p style="color:red">styled</p>`)
	})

	t.Run("empty marker style clears the next sibling's style", func(t *testing.T) {
		got := WillRenderHTML(
			`<span data-next-node-style="" style=""></span><p style="color:red">plain</p>`,
			RenderOptions{},
		)
		assert.Contains(t, got, `<p style="">plain</p>`)
	})

	t.Run("attachment links get a resource token", func(t *testing.T) {
		viewer := &models.User{ID: 42, Token: "1234567890abcdef"}
		got := WillRenderHTML(
			`<a href="files/report.pdf">report</a>`,
			RenderOptions{TransformAttachmentLinks: true, Viewer: viewer},
		)
		assert.Contains(t, got, `href="http://res.example.com/resources/files/report.pdf?uid=42&amp;token=12345678"`)
	})

	t.Run("attachment links untouched without the option", func(t *testing.T) {
		got := WillRenderHTML(`<a href="files/report.pdf">report</a>`, RenderOptions{})
		assert.Contains(t, got, `href="files/report.pdf"`)
	})

	t.Run("video attachments become video elements", func(t *testing.T) {
		got := WillRenderHTML(
			`<a href="files/clip.mp4">clip</a>`,
			RenderOptions{TransformAttachmentLinks: true},
		)
		assert.Contains(t, got, "<video")
		assert.Contains(t, got, `preload="none"`)
		assert.NotContains(t, got, "<a ")
	})
}

func TestRenderHTMLForUpload(t *testing.T) {
	t.Run("strips the resource base from images", func(t *testing.T) {
		got := RenderHTMLForUpload(`<img src="http://res.example.com/resources/img/a.png"/>`)
		assert.Contains(t, got, `src="img/a.png"`)
	})

	t.Run("bare host links get a scheme", func(t *testing.T) {
		got := RenderHTMLForUpload(`<a href="example.com/page">link</a>`)
		assert.Contains(t, got, `href="http://example.com/page"`)
	})

	t.Run("relative paths keep no scheme", func(t *testing.T) {
		got := RenderHTMLForUpload(`<a href="files/report.pdf">link</a>`)
		assert.Contains(t, got, `href="files/report.pdf"`)
	})

	t.Run("spent style markers are dropped", func(t *testing.T) {
		got := RenderHTMLForUpload(`<div><p><span data-next-node-style=""></span></p></div><p>keep</p>`)
		assert.NotContains(t, got, "data-next-node-style")
		assert.Contains(t, got, "<p>keep</p>")
	})
}

func TestRenderUploadRoundTrip(t *testing.T) {
	// Image resource paths survive a render/upload round trip unchanged.
	stored := `<p><img src="img/a.png" data-src="img/a.png"/>hello</p>`
	rendered := WillRenderHTML(stored, RenderOptions{})
	uploaded := RenderHTMLForUpload(rendered)
	assert.Contains(t, uploaded, `src="img/a.png"`)
	assert.Contains(t, uploaded, `data-src="img/a.png"`)
	assert.Contains(t, uploaded, "hello")

	// A second round trip is stable.
	assert.Equal(t, uploaded, RenderHTMLForUpload(WillRenderHTML(uploaded, RenderOptions{})))
}
