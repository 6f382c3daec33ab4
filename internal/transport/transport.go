package transport

import (
	"html/template"
	"net/http"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/service"
	"github.com/ds124wfegd/digit-ui/internal/transport/middleware"
	"github.com/ds124wfegd/digit-ui/internal/web"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Sessions *SessionHandler
	Previews *PreviewHandler
	Pages    *PageHandler
}

// InitRoutes wires the upload page, its JSON API and the preview endpoint.
// apiTimeout bounds API requests; websocket streams are not bounded.
func InitRoutes(h Handlers, apiTimeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(), middleware.CORS())

	router.SetHTMLTemplate(template.Must(template.ParseFS(web.Templates, "templates/*.html")))
	router.StaticFS("/static", http.FS(web.Static()))

	router.GET("/", h.Pages.Index)
	router.GET("/health", h.Pages.Health)
	router.GET(service.PreviewRoute+":ref", h.Previews.GetPreview)

	api := router.Group("/api/v1/sessions")
	{
		api.GET("/:id/ws", h.Sessions.Stream)

		timed := api.Group("", middleware.Timeout(apiTimeout))
		timed.POST("", h.Sessions.CreateSession)
		timed.GET("/:id", h.Sessions.GetSession)
		timed.DELETE("/:id", h.Sessions.DeleteSession)
		timed.POST("/:id/file", h.Sessions.SelectFile)
		timed.POST("/:id/submit", h.Sessions.Submit)
		timed.POST("/:id/reset", h.Sessions.Reset)
	}

	return router
}
