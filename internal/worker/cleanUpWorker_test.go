package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/service"
	"github.com/stretchr/testify/assert"
)

type stubSessions struct {
	service.SessionService

	mu    sync.Mutex
	calls []time.Duration
}

func (s *stubSessions) CloseIdle(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, olderThan)
	return 2
}

func (s *stubSessions) Count() int { return 1 }

func (s *stubSessions) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestCleanupUsesIdleTTL(t *testing.T) {
	stub := &stubSessions{}
	w := NewSessionCleanupWorker(stub, time.Minute, 30*time.Minute)

	assert.Equal(t, 2, w.cleanupIdleSessions())
	assert.Equal(t, []time.Duration{30 * time.Minute}, stub.calls)
}

func TestStartSweepsUntilCancelled(t *testing.T) {
	stub := &stubSessions{}
	w := NewSessionCleanupWorker(stub, 5*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()

	assert.Eventually(t, func() bool { return stub.callCount() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestGetStats(t *testing.T) {
	w := NewSessionCleanupWorker(&stubSessions{}, 0, time.Hour)
	stats := w.GetStats()
	assert.Equal(t, "session_cleanup", stats["worker_type"])
	assert.Equal(t, "1m0s", stats["interval"])
}
