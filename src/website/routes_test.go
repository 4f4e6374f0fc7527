package website

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRouter(t *testing.T) {
	router := &Router{}
	routes := RouteBuilder{Router: router}

	routes.GET(regexp.MustCompile(`^/ping$`), func(c *RequestContext) ResponseData {
		var res ResponseData
		res.WriteJson(map[string]any{"ok": true})
		return res
	})
	routes.GET(regexp.MustCompile(`^/things/(?P<id>\d+)$`), func(c *RequestContext) ResponseData {
		var res ResponseData
		res.Write([]byte(c.PathParams["id"]))
		return res
	})
	routes.POST(regexp.MustCompile(`^/things$`), func(c *RequestContext) ResponseData {
		res := ResponseData{StatusCode: http.StatusCreated}
		res.Write([]byte("created"))
		return res
	})
	routes.AnyMethod(regexp.MustCompile(`^`), FourOhFour)

	srv := httptest.NewServer(router)
	defer srv.Close()

	get := func(path string) (int, string) {
		res, err := http.Get(srv.URL + path)
		if !assert.Nil(t, err) {
			t.FailNow()
		}
		defer res.Body.Close()
		body, _ := io.ReadAll(res.Body)
		return res.StatusCode, string(body)
	}

	t.Run("plain route", func(t *testing.T) {
		status, body := get("/ping")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `"ok":true`)
	})

	t.Run("trailing slashes are ignored", func(t *testing.T) {
		status, _ := get("/ping/")
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("path params", func(t *testing.T) {
		status, body := get("/things/123")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "123", body)
	})

	t.Run("non-numeric id falls through to 404", func(t *testing.T) {
		status, _ := get("/things/abc")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("method matters", func(t *testing.T) {
		res, err := http.Post(srv.URL+"/ping", "application/json", nil)
		if assert.Nil(t, err) {
			defer res.Body.Close()
			assert.Equal(t, http.StatusNotFound, res.StatusCode)
		}

		res, err = http.Post(srv.URL+"/things", "application/json", nil)
		if assert.Nil(t, err) {
			defer res.Body.Close()
			assert.Equal(t, http.StatusCreated, res.StatusCode)
		}
	})

	t.Run("HEAD routes like GET but sends no body", func(t *testing.T) {
		res, err := http.Head(srv.URL + "/ping")
		if assert.Nil(t, err) {
			defer res.Body.Close()
			assert.Equal(t, http.StatusOK, res.StatusCode)
			body, _ := io.ReadAll(res.Body)
			assert.Empty(t, body)
		}
	})

	t.Run("unknown path hits the wildcard", func(t *testing.T) {
		status, _ := get("/nope/nope")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestPanicCatcher(t *testing.T) {
	router := &Router{}
	routes := RouteBuilder{
		Router:      router,
		Middlewares: []Middleware{panicCatcherMiddleware},
	}

	routes.GET(regexp.MustCompile(`^/boom$`), func(c *RequestContext) ResponseData {
		panic("kaboom")
	})
	routes.AnyMethod(regexp.MustCompile(`^`), FourOhFour)

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/boom")
	if assert.Nil(t, err) {
		defer res.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	}
}

func TestLogContextErrors(t *testing.T) {
	err1 := errors.New("test error 1")
	err2 := errors.New("test error 2")

	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Print("sanity check")

	assert.Contains(t, buf.String(), "sanity check")

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) ResponseData {
					c.Logger = &logger
					return h(c)
				}
			},
			logContextErrorsMiddleware,
		},
	}

	routes.GET(regexp.MustCompile(`^/test$`), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, err1, err2)
	})
	routes.AnyMethod(regexp.MustCompile(`^`), FourOhFour)

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/test")
	if assert.Nil(t, err) {
		defer res.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

		assert.Contains(t, buf.String(), err1.Error())
		assert.Contains(t, buf.String(), err2.Error())
	}
}
