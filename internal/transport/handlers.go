package transport

import (
	"context"

	"github.com/ds124wfegd/digit-ui/internal/service"
)

// Upstream is the external classifier as seen by the health endpoint.
type Upstream interface {
	Health(ctx context.Context) error
	BaseURL() string
}

// StatsReporter exposes background worker counters on /health.
type StatsReporter interface {
	GetStats() map[string]interface{}
}

type SessionHandler struct {
	sessions  service.SessionService
	maxUpload int64
}

func NewSessionHandler(sessions service.SessionService, maxUpload int64) *SessionHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &SessionHandler{sessions: sessions, maxUpload: maxUpload}
}

type PreviewHandler struct {
	previews service.PreviewService
}

func NewPreviewHandler(previews service.PreviewService) *PreviewHandler {
	return &PreviewHandler{previews: previews}
}

type PageHandler struct {
	sessions service.SessionService
	previews service.PreviewService
	upstream Upstream
	worker   StatsReporter
	version  string
}

func NewPageHandler(sessions service.SessionService, previews service.PreviewService, upstream Upstream, worker StatsReporter, version string) *PageHandler {
	return &PageHandler{
		sessions: sessions,
		previews: previews,
		upstream: upstream,
		worker:   worker,
		version:  version,
	}
}
