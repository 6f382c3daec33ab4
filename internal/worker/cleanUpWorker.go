package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/service"

	"github.com/sirupsen/logrus"
)

// SessionCleanupWorker closes sessions whose browser went away without
// unmounting, releasing their previews.
type SessionCleanupWorker struct {
	sessions service.SessionService
	interval time.Duration
	idleTTL  time.Duration
}

func NewSessionCleanupWorker(sessions service.SessionService, interval, idleTTL time.Duration) *SessionCleanupWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionCleanupWorker{
		sessions: sessions,
		interval: interval,
		idleTTL:  idleTTL,
	}
}

func (w *SessionCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Session cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Session cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleanupIdleSessions()
		}
	}
}

func (w *SessionCleanupWorker) cleanupIdleSessions() int {
	closed := w.sessions.CloseIdle(w.idleTTL)
	if closed > 0 {
		logrus.Infof("Idle sessions cleanup completed: %d closed, %d remaining",
			closed, w.sessions.Count())
	}
	return closed
}

func (w *SessionCleanupWorker) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"worker_type": "session_cleanup",
		"interval":    w.interval.String(),
		"idle_ttl":    w.idleTTL.String(),
	}
}
