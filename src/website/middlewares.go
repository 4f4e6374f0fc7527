package website

import (
	"fmt"
	"net/http"

	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/forumdata"
	"git.mbbs.network/mbbs/mbbs/src/oops"
)

// Auth token header for API requests. Issued by the login endpoint.
const TokenHeader = "X-Mbbs-Token"

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(*error)
				var err error
				if ok {
					err = *maybeError
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}()

		return h(c)
	}
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.Req.URL.String()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}

// Resolves the current user from the token header, if present. A bad token is
// not an error; the request simply proceeds anonymously.
func currentUserMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		token := c.Req.Header.Get(TokenHeader)
		if token != "" {
			user, err := forumdata.FetchUserByToken(c, c.Conn, token)
			if err == nil {
				c.CurrentUser = user
			} else if err != db.NotFound {
				return c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}

		return h(c)
	}
}

func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			return c.RejectRequest(http.StatusUnauthorized, "you must be signed in")
		}

		return h(c)
	}
}

func adminsOnly(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil || !c.CurrentUser.IsAdmin() {
			return FourOhFour(c)
		}

		return h(c)
	}
}
