package website

import (
	"net/http"
	"regexp"

	"git.mbbs.network/mbbs/mbbs/src/forumdata"
	"git.mbbs.network/mbbs/mbbs/src/logging"
	"github.com/jackc/pgx/v5/pgxpool"
)

type websiteRoutes struct {
	conn        *pgxpool.Pool
	threadCache *forumdata.ThreadCache
}

func NewWebsiteRoutes(conn *pgxpool.Pool) http.Handler {
	router := &Router{}
	s := &websiteRoutes{
		conn:        conn,
		threadCache: forumdata.NewThreadCache(forumdata.DefaultThreadCacheCapacity),
	}

	attachContext := func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Conn = conn
			c.ThreadCache = s.threadCache
			c.ctx = logging.AttachLoggerToContext(c.Logger, c.ctx)
			return h(c)
		}
	}

	anyone := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			attachContext,
			panicCatcherMiddleware,
			logContextErrorsMiddleware,
			currentUserMiddleware,
		},
	}
	authed := anyone.WithMiddleware(needsAuth)
	admins := anyone.WithMiddleware(adminsOnly)

	anyone.POST(regexp.MustCompile(`^/api/login$`), s.Login)

	anyone.GET(regexp.MustCompile(`^/api/threads$`), s.ThreadList)
	anyone.GET(regexp.MustCompile(`^/api/threads/(?P<id>\d+)$`), s.ThreadGet)
	authed.POST(regexp.MustCompile(`^/api/threads$`), s.ThreadCreate)
	authed.POST(regexp.MustCompile(`^/api/threads/(?P<id>\d+)/replies$`), s.ThreadReply)
	authed.POST(regexp.MustCompile(`^/api/threads/(?P<id>\d+)/like$`), s.ThreadLike)
	authed.POST(regexp.MustCompile(`^/api/threads/(?P<id>\d+)/edit$`), s.ThreadEdit)
	authed.DELETE(regexp.MustCompile(`^/api/threads/(?P<id>\d+)$`), s.ThreadDelete)
	admins.POST(regexp.MustCompile(`^/api/threads/(?P<id>\d+)/moderate$`), s.ThreadModerate)

	anyone.AnyMethod(regexp.MustCompile(`^`), FourOhFour)

	return router
}

func FourOhFour(c *RequestContext) ResponseData {
	return c.RejectRequest(http.StatusNotFound, "not found")
}
