package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"version": h.version,
	})
}

// Health reports this service and, as information only, the classifier.
func (h *PageHandler) Health(c *gin.Context) {
	upstream := gin.H{"base_url": "", "status": "unknown"}
	if h.upstream != nil {
		upstream["base_url"] = h.upstream.BaseURL()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.upstream.Health(ctx); err != nil {
			upstream["status"] = "unreachable"
			upstream["error"] = err.Error()
		} else {
			upstream["status"] = "ok"
		}
	}

	body := gin.H{
		"status":   "ok",
		"service":  "digit-ui",
		"version":  h.version,
		"sessions": h.sessions.Count(),
		"previews": h.previews.Live(),
		"upstream": upstream,
	}
	if h.worker != nil {
		body["cleanup"] = h.worker.GetStats()
	}

	c.JSON(http.StatusOK, body)
}
