// Package router assembles the gin engine: global middleware, ops endpoints
// and the route table.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"job-portal/internal/core/server"
	"job-portal/internal/core/session"
	"job-portal/internal/service"
	"job-portal/internal/transport/http/handler"
	mdw "job-portal/internal/transport/http/middleware"
)

// Limits are the request guards of the global middleware chain. A zero
// field turns its guard off.
type Limits struct {
	GlobalRPS      float64
	GlobalBurst    int
	LoginRPS       float64
	LoginBurst     int
	MaxInFlight    int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

type Deps struct {
	Log            *zap.Logger
	Mode           string
	AllowedOrigins []string
	Limits         Limits

	Sessions    *session.Store
	SessionName string
	Views       render.HTMLRender

	Auth    *service.AuthService
	Catalog *service.CatalogService
	Apps    *service.ApplicationService
}

func New(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{
		Mode:           d.Mode,
		AllowedOrigins: d.AllowedOrigins,
		Recovery:       mdw.Recovery,
	})
	r.HTMLRender = d.Views

	lim := d.Limits
	chain := []gin.HandlerFunc{mdw.RequestID(), mdw.Metrics(), mdw.AccessLog(d.Log)}
	if lim.GlobalRPS > 0 {
		chain = append(chain, mdw.RateLimit(rate.Limit(lim.GlobalRPS), max(1, lim.GlobalBurst)))
	}
	if lim.MaxInFlight > 0 {
		chain = append(chain, mdw.ConcurrencyLimit(lim.MaxInFlight))
	}
	if lim.MaxBodyBytes > 0 {
		chain = append(chain, mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.RequestTimeout > 0 {
		chain = append(chain, mdw.Timeout(lim.RequestTimeout))
	}
	// last: it keeps the writer and request the handlers see
	chain = append(chain, session.Middleware(d.Sessions, d.SessionName))
	r.Use(chain...)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	page := handler.Page{Log: d.Log}
	login := func(c *gin.Context) { c.Next() }
	if lim.LoginRPS > 0 {
		login = mdw.RateLimitPerIP(rate.Limit(lim.LoginRPS), max(1, lim.LoginBurst), page.DenyPage)
	}
	mount(r, Routes(d.Log, Handlers{
		Auth:    handler.NewAuthHandler(page, d.Auth),
		Admin:   handler.NewAdminHandler(page, d.Catalog, d.Apps),
		Student: handler.NewStudentHandler(page, d.Catalog, d.Apps),
	}, login))
	return r
}
