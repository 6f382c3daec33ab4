package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	keys     []string
	messages []interface{}
	sent     chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{sent: make(chan struct{}, 8)}
}

func (p *recordingPublisher) Publish(key string, message interface{}) error {
	p.mu.Lock()
	p.keys = append(p.keys, key)
	p.messages = append(p.messages, message)
	p.mu.Unlock()
	p.sent <- struct{}{}
	return nil
}

func newTestSessions(t *testing.T, publisher OutcomePublisher) (*sessionService, *countingPreviews) {
	t.Helper()
	previews := newTestPreviews(t)
	fake := newFakePredictor(&entity.Prediction{Digit: intPtr(2)}, nil)
	svc := NewSessionService(context.Background(), fake, previews, publisher).(*sessionService)
	t.Cleanup(svc.CloseAll)
	return svc, previews
}

func TestSessionLifecycle(t *testing.T) {
	svc, previews := newTestSessions(t, nil)

	id, ctrl := svc.Create()
	require.NotEmpty(t, id)
	assert.Equal(t, id, ctrl.ID())
	assert.Equal(t, 1, svc.Count())

	got, err := svc.Get(id)
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	require.NoError(t, ctrl.Select(pngImage(t, "two.png", 0)))
	assert.Equal(t, 1, previews.Live())

	require.NoError(t, svc.Delete(id))
	assert.Zero(t, svc.Count())
	assert.Zero(t, previews.Live(), "unmount releases the preview")

	_, err = svc.Get(id)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	assert.ErrorIs(t, svc.Delete(id), entity.ErrSessionNotFound)
}

func TestSessionsAreIsolated(t *testing.T) {
	svc, previews := newTestSessions(t, nil)

	idA, a := svc.Create()
	_, b := svc.Create()
	assert.NotEqual(t, a.ID(), b.ID())

	require.NoError(t, a.Select(pngImage(t, "a.png", 0)))
	require.NoError(t, b.Select(pngImage(t, "b.png", 50)))
	assert.Equal(t, 2, previews.Live())

	require.NoError(t, svc.Delete(idA))
	assert.Equal(t, 1, previews.Live())
	assert.Equal(t, entity.StateSelected, b.Snapshot().State)
}

func TestCloseIdle(t *testing.T) {
	svc, previews := newTestSessions(t, nil)

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	staleID, stale := svc.Create()
	require.NoError(t, stale.Select(pngImage(t, "old.png", 0)))

	watchedID, watched := svc.Create()
	updates, unsubscribe := watched.Subscribe()
	defer unsubscribe()
	<-updates

	now = now.Add(20 * time.Minute)
	freshID, _ := svc.Create()

	now = now.Add(15 * time.Minute)
	closed := svc.CloseIdle(30 * time.Minute)

	assert.Equal(t, 1, closed)
	_, err := svc.Get(staleID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	_, err = svc.Get(watchedID)
	assert.NoError(t, err)
	_, err = svc.Get(freshID)
	assert.NoError(t, err)
	assert.Zero(t, previews.Live())
}

func TestSessionPublishesOutcomes(t *testing.T) {
	publisher := newRecordingPublisher()
	svc, _ := newTestSessions(t, publisher)

	id, ctrl := svc.Create()
	require.NoError(t, ctrl.Select(pngImage(t, "two.png", 0)))
	done, err := ctrl.Submit()
	require.NoError(t, err)
	waitSettled(t, done)

	select {
	case <-publisher.sent:
	case <-time.After(5 * time.Second):
		t.Fatal("outcome was not published")
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.keys, 1)
	assert.Equal(t, id, publisher.keys[0])
	outcome, ok := publisher.messages[0].(entity.Outcome)
	require.True(t, ok)
	require.NotNil(t, outcome.Digit)
	assert.Equal(t, 2, *outcome.Digit)
}
