package resurl

import (
	"testing"

	"git.mbbs.network/mbbs/mbbs/src/config"
	"github.com/stretchr/testify/assert"
)

func TestResourceUrl(t *testing.T) {
	config.Config.ResourceBaseUrl = "http://res.example.com/resources/"

	t.Run("relative paths get the base", func(t *testing.T) {
		assert.Equal(t, "http://res.example.com/resources/img/a.png", ResourceUrl("img/a.png"))
	})

	t.Run("pass-through sources unchanged", func(t *testing.T) {
		passthrough := []string{
			"http://other.example.com/a.png",
			"https://other.example.com/a.png",
			"data:image/png;base64,AAAA",
			"file:///tmp/a.png",
			"/rooted/a.png",
			"./relative/a.png",
			"#fragment",
			"?query=1",
			"",
		}
		for _, src := range passthrough {
			assert.Equal(t, src, ResourceUrl(src))
		}
	})

	t.Run("strip reverses the rewrite", func(t *testing.T) {
		assert.Equal(t, "img/a.png", StripBase(ResourceUrl("img/a.png")))
		assert.Equal(t, "http://elsewhere.com/a.png", StripBase("http://elsewhere.com/a.png"))
	})

	t.Run("base without trailing slash still works", func(t *testing.T) {
		config.Config.ResourceBaseUrl = "http://res.example.com/resources"
		defer func() { config.Config.ResourceBaseUrl = "http://res.example.com/resources/" }()
		assert.Equal(t, "http://res.example.com/resources/a.png", ResourceUrl("a.png"))
	})
}
