/*
Package htmltransform rewrites stored post HTML between its storage form
(relative resource paths, lazy-image attributes, style marker elements) and
its render form (absolute resource URLs, optionally tokenized attachment
links). The two transforms are inverses for image resource paths: applying
WillRenderHTML and then RenderHTMLForUpload restores the stored form.
*/
package htmltransform

import (
	"regexp"
	"strconv"
	"strings"

	"git.mbbs.network/mbbs/mbbs/src/auth"
	"git.mbbs.network/mbbs/mbbs/src/logging"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/resurl"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"mvdan.cc/xurls/v2"
)

type RenderOptions struct {
	// Rewrite attachment links too, appending the viewer's resource token
	// and converting video links to playable elements.
	TransformAttachmentLinks bool

	// Supplies the resource auth token for attachment links. May be nil.
	Viewer *models.User
}

// alt="^...^" marks special inline images (like the reply-visible tag) that
// must keep their source as-is, with no lazy loading.
var reMarkerAlt = regexp.MustCompile(`^\^.*\^$`)

var reVideoLink = regexp.MustCompile(`\.(mp4|avi)$`)
var reHTTPScheme = regexp.MustCompile(`^https?:`)
var reQuerySuffix = regexp.MustCompile(`\?.*`)

var relaxedURL = xurls.Relaxed()

/*
WillRenderHTML prepares stored HTML for display: image sources become
absolute resource URLs (both src and the lazy-loading data-src), style
marker elements propagate their inline style to the following sibling, and,
when requested, attachment links get absolutized with a short-lived resource
token and video links become video elements.
*/
func WillRenderHTML(source string, opts RenderOptions) string {
	return rewriteFragment(source, func(body *html.Node) {
		eachElement(body, func(n *html.Node) {
			if n.DataAtom == atom.Img {
				willRenderImg(n)
			}
		})

		propagateMarkerStyles(body)

		if opts.TransformAttachmentLinks {
			var links []*html.Node
			eachElement(body, func(n *html.Node) {
				if n.DataAtom == atom.A {
					links = append(links, n)
				}
			})
			for _, a := range links {
				willRenderLink(a, opts.Viewer)
			}
		}
	})
}

func willRenderImg(img *html.Node) {
	dataSrc := getAttr(img, "data-src")

	// base64 images need no lazy loading, and marker images must keep
	// their source untouched.
	if strings.HasPrefix(dataSrc, "data:image") || reMarkerAlt.MatchString(getAttr(img, "alt")) {
		src := dataSrc
		if src == "" {
			src = getAttr(img, "src")
		}
		setAttr(img, "src", src)
		return
	}

	if src := getAttr(img, "src"); src != "" {
		setAttr(img, "src", resurl.ResourceUrl(src))
	}
	if dataSrc != "" {
		setAttr(img, "data-src", resurl.ResourceUrl(dataSrc))
	}
}

func willRenderLink(a *html.Node, viewer *models.User) {
	href := getAttr(a, "href")
	isVideo := reVideoLink.MatchString(href)

	setAttr(a, "href", appendResourceToken(href, viewer))

	if isVideo {
		video := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Video,
			Data:     "video",
			Attr: []html.Attribute{
				{Key: "src", Val: getAttr(a, "href")},
				{Key: "controls", Val: ""},
				{Key: "preload", Val: "none"},
			},
		}
		a.Parent.InsertBefore(video, a)
		a.Parent.RemoveChild(a)
	}
}

// appendResourceToken absolutizes a relative resource path and appends the
// viewer's resource download token. Pass-through sources stay untouched.
func appendResourceToken(src string, viewer *models.User) string {
	if src == "" || resurl.IsPassthrough(src) {
		return src
	}
	src = resurl.ResourceUrl(src)
	src = reQuerySuffix.ReplaceAllString(src, "")
	if token := auth.ResourceToken(viewer); token != "" {
		src += "?uid=" + strconv.Itoa(viewer.ID) + "&token=" + token
	}
	return src
}

// Style marker elements ([data-next-node-style]) carry inline style meant
// for the element that follows them, a markdown authoring extension for
// font/color/alignment.
func propagateMarkerStyles(body *html.Node) {
	eachElement(body, func(n *html.Node) {
		if !hasAttr(n, "data-next-node-style") {
			return
		}
		next := nextElementSibling(n)
		if next == nil {
			return
		}
		// An empty marker style clears the sibling's style rather than
		// leaving it alone.
		setAttr(next, "style", getAttr(n, "style"))
	})
}

/*
RenderHTMLForUpload reverses the render transform before content is stored:
image sources lose the resource base URL, bare host-like link targets get an
explicit http scheme, and spent style marker elements are dropped.
*/
func RenderHTMLForUpload(source string) string {
	return rewriteFragment(source, func(body *html.Node) {
		eachElement(body, func(n *html.Node) {
			switch n.DataAtom {
			case atom.Img:
				if src := getAttr(n, "src"); src != "" {
					setAttr(n, "src", resurl.StripBase(src))
				}
				if dataSrc := getAttr(n, "data-src"); dataSrc != "" {
					setAttr(n, "data-src", resurl.StripBase(dataSrc))
				}
			case atom.A:
				uploadNormalizeLink(n)
			}
		})

		removeSpentMarkers(body)
	})
}

func uploadNormalizeLink(a *html.Node) {
	href := getAttr(a, "href")
	if href == "" {
		return
	}
	href = resurl.StripBase(href)
	if reHTTPScheme.MatchString(href) {
		return
	}
	// Only bare host-ish targets ("example.com/page") get a scheme;
	// relative resource paths stay as they are.
	if !strings.Contains(strings.SplitN(href, "/", 2)[0], ".") {
		return
	}
	if relaxedURL.FindString(href) == "" {
		return
	}
	setAttr(a, "href", "http://"+href)
}

// A marker whose style was already consumed renders as an empty artifact;
// drop its enclosing block.
func removeSpentMarkers(body *html.Node) {
	var doomed []*html.Node
	eachElement(body, func(n *html.Node) {
		if !hasAttr(n, "data-next-node-style") {
			return
		}
		if getAttr(n, "style") != "" {
			return
		}
		if n.Parent != nil && n.Parent.Parent != nil && n.Parent.Parent.Parent != nil {
			doomed = append(doomed, n.Parent.Parent)
		}
	})
	for _, n := range doomed {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

/*
rewriteFragment parses an HTML fragment, lets the callback mutate the tree,
and serializes it back. Parse failures degrade to the original source,
logged.
*/
func rewriteFragment(source string, mutate func(body *html.Node)) string {
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}

	nodes, err := html.ParseFragment(strings.NewReader(source), body)
	if err != nil {
		logging.Error().Err(err).Msg("failed to parse post HTML for transform")
		return source
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	mutate(body)

	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			logging.Error().Err(err).Msg("failed to serialize transformed post HTML")
			return source
		}
	}
	return sb.String()
}
