package mdcontent

import (
	"strings"

	"git.mbbs.network/mbbs/mbbs/src/logging"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

/*
ToPureText converts post content to plain text for indexing and hidden-text
measurement. The content is rendered to HTML, parsed as a DOM, and any
blockquote carrying the reply-visible marker image gets its contents erased
so hidden text never leaks into the index.

Never fails: any parse problem is logged and yields an empty string.
*/
func ToPureText(markdown string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogPanicValue(nil, r, "failed to convert content to plain text")
			result = ""
		}
	}()

	doc, err := html.Parse(strings.NewReader(RenderMarkdown(markdown)))
	if err != nil {
		logging.Error().Err(err).Msg("failed to parse content as HTML")
		return ""
	}

	eachElement(doc, func(n *html.Node) {
		if n.DataAtom == atom.Blockquote && containsReplyVisibleMarkerImage(n) {
			for n.FirstChild != nil {
				n.RemoveChild(n.FirstChild)
			}
		}
	})

	var sb strings.Builder
	collectText(doc, &sb)
	return sb.String()
}

// Matches the original authoring convention: a marker image directly inside
// a paragraph of the blockquote.
func containsReplyVisibleMarkerImage(blockquote *html.Node) bool {
	found := false
	eachElement(blockquote, func(n *html.Node) {
		if found || n.DataAtom != atom.Img {
			return
		}
		if n.Parent == nil || n.Parent.DataAtom != atom.P {
			return
		}
		for _, attr := range n.Attr {
			if attr.Key == "alt" && attr.Val == ReplyVisibleMarkerAlt {
				found = true
				return
			}
		}
	})
	return found
}

func eachElement(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		eachElement(c, visit)
	}
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
