package service

import (
	"context"
	"sync"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/ds124wfegd/digit-ui/internal/predict"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type session struct {
	controller *UploadController
	lastSeen   time.Time
}

type sessionService struct {
	ctx       context.Context
	predictor predict.Predictor
	previews  PreviewService
	publisher OutcomePublisher
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionService keeps one UploadController per browser session.
// publisher may be nil.
func NewSessionService(ctx context.Context, predictor predict.Predictor, previews PreviewService, publisher OutcomePublisher) SessionService {
	return &sessionService{
		ctx:       ctx,
		predictor: predictor,
		previews:  previews,
		publisher: publisher,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

func (s *sessionService) Create() (string, *UploadController) {
	id := uuid.New().String()

	ctrl := NewUploadController(ControllerOptions{
		ID:        id,
		Predictor: s.predictor,
		Previews:  s.previews,
		OnSettle:  s.publish,
		Context:   s.ctx,
	})

	s.mu.Lock()
	s.sessions[id] = &session{controller: ctrl, lastSeen: s.now()}
	total := len(s.sessions)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{"session": id, "total": total}).Info("session opened")
	return id, ctrl
}

func (s *sessionService) Get(id string) (*UploadController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess.controller, nil
}

func (s *sessionService) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return entity.ErrSessionNotFound
	}

	sess.controller.Close()
	return nil
}

func (s *sessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CloseIdle closes sessions not seen for longer than olderThan. Sessions with
// a live snapshot stream are kept.
func (s *sessionService) CloseIdle(olderThan time.Duration) int {
	deadline := s.now().Add(-olderThan)

	var expired []*session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastSeen.After(deadline) || sess.controller.Subscribers() > 0 {
			continue
		}
		expired = append(expired, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.controller.Close()
	}
	return len(expired)
}

func (s *sessionService) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.controller.Close()
	}
}

func (s *sessionService) publish(outcome entity.Outcome) {
	if s.publisher == nil {
		return
	}
	go func() {
		if err := s.publisher.Publish(outcome.SessionID, outcome); err != nil {
			logrus.WithError(err).WithField("session", outcome.SessionID).Warn("publish prediction outcome")
		}
	}()
}
