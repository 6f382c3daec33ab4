package transport

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/ds124wfegd/digit-ui/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (h *SessionHandler) CreateSession(c *gin.Context) {
	id, ctrl := h.sessions.Create()

	c.JSON(http.StatusCreated, entity.SessionResponse{
		ID:       id,
		Snapshot: ctrl.Snapshot(),
	})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SelectFile handles picker, drop and paste uploads (multipart field "file").
func (h *SessionHandler) SelectFile(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	source, ok := entity.ParseSource(c.Query("source"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be one of picker, drop, paste"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "file exceeds " + strconv.FormatInt(h.maxUpload, 10) + " bytes",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided. Use 'file' as the form field name"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open form file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read form file"})
		return
	}

	err = ctrl.Select(entity.SelectedImage{
		Name:        file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
		Source:      source,
		SelectedAt:  time.Now(),
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ctrl.Snapshot())
	case errors.Is(err, entity.ErrNotImage) && source != entity.SourcePicker:
		// drop и paste молча игнорируют не-изображения
		c.Status(http.StatusNoContent)
	default:
		respondError(c, err)
	}
}

// Submit starts a prediction. With ?wait=true the response carries the settled
// snapshot unless the request context ends first.
func (h *SessionHandler) Submit(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	done, err := ctrl.Submit()
	if err != nil {
		if errors.Is(err, entity.ErrSubmitInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "snapshot": ctrl.Snapshot()})
			return
		}
		respondError(c, err)
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		select {
		case snap, ok := <-done:
			if ok {
				c.JSON(http.StatusOK, snap)
				return
			}
		case <-c.Request.Context().Done():
		}
	}

	c.JSON(http.StatusAccepted, ctrl.Snapshot())
}

func (h *SessionHandler) Reset(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if err := ctrl.Reset(); err != nil {
		logrus.WithError(err).WithField("session", ctrl.ID()).Warn("reset left a preview behind")
	}

	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (h *SessionHandler) controller(c *gin.Context) (*service.UploadController, bool) {
	ctrl, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ctrl, true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrPreviewNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrNotImage):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, entity.ErrNoImage), errors.Is(err, entity.ErrEmptyFile):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrSubmitInFlight):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
