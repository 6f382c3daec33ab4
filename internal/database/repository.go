package database

import (
	"io"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/ds124wfegd/digit-ui/internal/pkg/storage"
)

// PreviewRepository stores preview blobs next to their metadata.
type PreviewRepository interface {
	Save(preview *entity.Preview, data io.Reader) error
	FindByRef(ref entity.PreviewRef) (*entity.Preview, error)
	Open(ref entity.PreviewRef) (io.ReadCloser, error)
	Delete(ref entity.PreviewRef) error
	Purge() error
}

type filePreviewRepository struct {
	storage storage.FileStorage
}
