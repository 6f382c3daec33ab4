package service

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/database"
	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/ds124wfegd/digit-ui/internal/pkg/processor"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type previewService struct {
	repo      database.PreviewRepository
	processor processor.ImageProcessor

	mu   sync.Mutex
	live map[entity.PreviewRef]struct{}
}

func NewPreviewService(repo database.PreviewRepository, processor processor.ImageProcessor) PreviewService {
	return &previewService{
		repo:      repo,
		processor: processor,
		live:      make(map[entity.PreviewRef]struct{}),
	}
}

func (s *previewService) Create(img *entity.SelectedImage) (entity.PreviewRef, error) {
	rendered, err := s.Render(img)
	if err != nil {
		return "", err
	}
	return s.Store(rendered)
}

func (s *previewService) Render(img *entity.SelectedImage) (*processor.Rendered, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, entity.ErrEmptyFile
	}

	rendered, err := s.processor.Preview(img.Data, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return rendered, nil
}

func (s *previewService) Store(rendered *processor.Rendered) (entity.PreviewRef, error) {
	if rendered == nil || len(rendered.Data) == 0 {
		return "", entity.ErrEmptyFile
	}

	preview := &entity.Preview{
		Ref:         entity.PreviewRef(uuid.New().String()),
		ContentType: rendered.ContentType,
		Width:       rendered.Width,
		Height:      rendered.Height,
		Thumbnail:   rendered.Thumbnail,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Save(preview, bytes.NewReader(rendered.Data)); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.live[preview.Ref] = struct{}{}
	s.mu.Unlock()

	return preview.Ref, nil
}

// Revoke releases ref. Unknown refs are ignored.
func (s *previewService) Revoke(ref entity.PreviewRef) error {
	if ref == "" {
		return nil
	}

	s.mu.Lock()
	_, ok := s.live[ref]
	delete(s.live, ref)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return s.repo.Delete(ref)
}

func (s *previewService) Open(ref entity.PreviewRef) (io.ReadCloser, *entity.Preview, error) {
	s.mu.Lock()
	_, ok := s.live[ref]
	s.mu.Unlock()
	if !ok {
		return nil, nil, entity.ErrPreviewNotFound
	}

	preview, err := s.repo.FindByRef(ref)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.repo.Open(ref)
	if err != nil {
		return nil, nil, err
	}
	return rc, preview, nil
}

func (s *previewService) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Purge drops every stored preview, including leftovers of a previous run.
func (s *previewService) Purge() error {
	s.mu.Lock()
	count := len(s.live)
	s.live = make(map[entity.PreviewRef]struct{})
	s.mu.Unlock()

	if count > 0 {
		logrus.Warnf("purging %d live previews", count)
	}
	return s.repo.Purge()
}
