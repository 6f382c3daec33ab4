package transport

import (
	"net/http"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetPreview streams a live preview. Revoked refs answer 404.
func (h *PreviewHandler) GetPreview(c *gin.Context) {
	ref := entity.PreviewRef(c.Param("ref"))

	rc, preview, err := h.previews.Open(ref)
	if err != nil {
		if err != entity.ErrPreviewNotFound {
			logrus.WithError(err).WithField("ref", ref).Error("open preview")
		}
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, preview.ContentType, rc, map[string]string{
		"Cache-Control": "no-store",
	})
}
