package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/ds124wfegd/digit-ui/internal/pkg/storage"
)

func NewPreviewRepository(storage storage.FileStorage) PreviewRepository {
	return &filePreviewRepository{storage: storage}
}

func (r *filePreviewRepository) Save(preview *entity.Preview, data io.Reader) error {
	if err := r.storage.Save(r.blobPath(preview.Ref), data); err != nil {
		return fmt.Errorf("save preview blob: %w", err)
	}

	meta, err := json.Marshal(preview)
	if err != nil {
		return err
	}

	if err := r.storage.Save(r.metadataPath(preview.Ref), bytes.NewReader(meta)); err != nil {
		_ = r.storage.Delete(r.blobPath(preview.Ref))
		return fmt.Errorf("save preview metadata: %w", err)
	}
	return nil
}

func (r *filePreviewRepository) FindByRef(ref entity.PreviewRef) (*entity.Preview, error) {
	reader, err := r.storage.Get(r.metadataPath(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrPreviewNotFound
		}
		return nil, err
	}
	defer reader.Close()

	var preview entity.Preview
	if err := json.NewDecoder(reader).Decode(&preview); err != nil {
		return nil, err
	}

	return &preview, nil
}

func (r *filePreviewRepository) Open(ref entity.PreviewRef) (io.ReadCloser, error) {
	reader, err := r.storage.Get(r.blobPath(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entity.ErrPreviewNotFound
		}
		return nil, err
	}
	return reader, nil
}

func (r *filePreviewRepository) Delete(ref entity.PreviewRef) error {
	if err := r.storage.Delete(r.metadataPath(ref)); err != nil && !os.IsNotExist(err) {
		return err
	}

	if err := r.storage.Delete(r.blobPath(ref)); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func (r *filePreviewRepository) Purge() error {
	return r.storage.Purge()
}

func (r *filePreviewRepository) blobPath(ref entity.PreviewRef) string {
	return filepath.Join("blobs", string(ref))
}

func (r *filePreviewRepository) metadataPath(ref entity.PreviewRef) string {
	return filepath.Join("metadata", string(ref)+".json")
}
