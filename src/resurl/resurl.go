/*
Package resurl implements the resource URL convention: relative paths in
post content get rewritten to absolute URLs under the configured resource
server, and stripped back to relative paths before upload.
*/
package resurl

import (
	"regexp"
	"strings"

	"git.mbbs.network/mbbs/mbbs/src/config"
)

// Sources that are already absolute, special-scheme, or fragment/query
// prefixed pass through unchanged.
var rePassthrough = regexp.MustCompile(`^(https?:|data:|file:|/|\.|#|\?)`)

func IsPassthrough(src string) bool {
	return rePassthrough.MatchString(src)
}

// BaseUrl returns the resource server base URL, always with a trailing
// slash.
func BaseUrl() string {
	base := config.Config.ResourceBaseUrl
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// ResourceUrl makes a relative resource path absolute. Pass-through sources
// are returned as-is.
func ResourceUrl(src string) string {
	if src == "" || IsPassthrough(src) {
		return src
	}
	return BaseUrl() + src
}

// StripBase reverses ResourceUrl for sources under the configured base.
func StripBase(src string) string {
	return strings.TrimPrefix(src, BaseUrl())
}
