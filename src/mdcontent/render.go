package mdcontent

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Used for generating the final HTML for post content. Raw HTML passes
// through unchanged because stored content is markdown-rendered HTML from
// the editor.
var RealMarkdown = goldmark.New(
	goldmark.WithExtensions(markdownExtensions()...),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Used for generating plain-text index entries and previews.
var PlaintextMarkdown = goldmark.New(
	goldmark.WithExtensions(markdownExtensions()...),
	goldmark.WithRenderer(plaintextRenderer{}),
)

func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := RealMarkdown.Convert([]byte(source), &buf); err != nil {
		panic(err)
	}
	return buf.String()
}

func RenderPlaintext(source string) string {
	var buf bytes.Buffer
	if err := PlaintextMarkdown.Convert([]byte(source), &buf); err != nil {
		panic(err)
	}
	return buf.String()
}

func markdownExtensions() []goldmark.Extender {
	return []goldmark.Extender{
		extension.GFM,
		highlightExtension,
	}
}

var highlightExtension = highlighting.NewHighlighting(
	highlighting.WithFormatOptions(chromaOptions...),
	highlighting.WithWrapperRenderer(func(w util.BufWriter, context highlighting.CodeBlockContext, entering bool) {
		if entering {
			w.WriteString(`<pre class="mbbs-code">`)
		} else {
			w.WriteString(`</pre>`)
		}
	}),
)
