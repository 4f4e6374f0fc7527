package mdcontent

import (
	"fmt"
	"regexp"
	"strings"
)

// The reply-visible marker is a wire-format convention between the authoring
// UI and this filter: a blockquote line containing an image whose alt text
// is the marker tag. It must be preserved exactly for round-trip
// compatibility with stored content.
const ReplyVisibleMarkerAlt = "^mbbs_reply_visible_tag^"

const replyVisibleMarkerPrefix = "> ![" + ReplyVisibleMarkerAlt + "]"

var reReplyVisibleMarker = regexp.MustCompile(`> !\[\^mbbs_reply_visible_tag\^\]\(.+\)`)
var reBlockquoteLine = regexp.MustCompile(`^\s*>`)

var reWhitespace = regexp.MustCompile(`[\n\s]`)

// HasReplyHiddenContent reports whether the source contains a complete
// reply-visible marker line. Malformed variants (missing closing caret, no
// image target) do not count.
func HasReplyHiddenContent(markdown string) bool {
	return reReplyVisibleMarker.MatchString(markdown)
}

/*
FilterHiddenContent replaces each reply-hidden blockquote run with a summary
line reporting how many characters are hidden. The marker line itself stays;
the blockquote lines after it are dropped until the first non-blockquote
line. All other lines pass through in their original order.
*/
func FilterHiddenContent(markdown string) string {
	inFilter := false

	var contentLines []string
	var filteredLines []string
	for _, line := range strings.Split(markdown, "\n") {
		if inFilter {
			if reBlockquoteLine.MatchString(line) {
				filteredLines = append(filteredLines, line)
			} else {
				contentLines = append(contentLines, hiddenContentSummary(filteredLines))
				inFilter = false
				filteredLines = nil
				contentLines = append(contentLines, line)
			}
		} else {
			contentLines = append(contentLines, line)
			if strings.Contains(line, replyVisibleMarkerPrefix) {
				inFilter = true
			}
		}
	}
	// Hidden run reaching the end of the content.
	if len(filteredLines) > 0 {
		contentLines = append(contentLines, hiddenContentSummary(filteredLines))
	}

	return strings.Join(contentLines, "\n")
}

func hiddenContentSummary(filteredLines []string) string {
	pure := ToPureText(strings.Join(filteredLines, "\n"))
	count := len([]rune(reWhitespace.ReplaceAllString(pure, "")))
	return fmt.Sprintf("> （有隐藏内容共 %d 字，评论后可见）\n", count)
}
