package service

import (
	"io"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/ds124wfegd/digit-ui/internal/pkg/processor"
)

// PreviewRoute is the URL prefix under which preview refs are served.
const PreviewRoute = "/preview/"

type PreviewService interface {
	// Render does the image work only; nothing is stored.
	Render(img *entity.SelectedImage) (*processor.Rendered, error)
	Store(rendered *processor.Rendered) (entity.PreviewRef, error)
	Create(img *entity.SelectedImage) (entity.PreviewRef, error)
	Revoke(ref entity.PreviewRef) error
	Open(ref entity.PreviewRef) (io.ReadCloser, *entity.Preview, error)
	Live() int
	Purge() error
}

type SessionService interface {
	Create() (string, *UploadController)
	Get(id string) (*UploadController, error)
	Delete(id string) error
	Count() int
	CloseIdle(olderThan time.Duration) int
	CloseAll()
}

// OutcomePublisher receives settled predictions.
type OutcomePublisher interface {
	Publish(key string, message interface{}) error
}
