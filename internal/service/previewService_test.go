package service

import (
	"bytes"
	"image/png"
	"io"
	"testing"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewServiceCreateOpenRevoke(t *testing.T) {
	previews := newTestPreviews(t)
	img := pngImage(t, "digit.png", 0)

	ref, err := previews.Create(&img)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.Equal(t, 1, previews.Live())

	rc, meta, err := previews.Open(ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)

	assert.Equal(t, "image/png", meta.ContentType)
	assert.True(t, meta.Thumbnail)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 28, decoded.Bounds().Dx())

	require.NoError(t, previews.Revoke(ref))
	assert.Zero(t, previews.Live())

	_, _, err = previews.Open(ref)
	assert.ErrorIs(t, err, entity.ErrPreviewNotFound)

	assert.NoError(t, previews.Revoke(ref))
	assert.NoError(t, previews.Revoke(""))
	assert.NoError(t, previews.Revoke("unknown"))
}

func TestPreviewServiceRejectsEmpty(t *testing.T) {
	previews := newTestPreviews(t)

	_, err := previews.Create(&entity.SelectedImage{Name: "empty.png"})
	assert.ErrorIs(t, err, entity.ErrEmptyFile)
	assert.Zero(t, previews.Live())
}

func TestPreviewServicePurge(t *testing.T) {
	previews := newTestPreviews(t)

	var refs []entity.PreviewRef
	for _, shade := range []uint8{0, 100} {
		img := pngImage(t, "x.png", shade)
		ref, err := previews.Create(&img)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	require.Equal(t, 2, previews.Live())

	require.NoError(t, previews.Purge())
	assert.Zero(t, previews.Live())
	for _, ref := range refs {
		_, _, err := previews.Open(ref)
		assert.ErrorIs(t, err, entity.ErrPreviewNotFound)
	}
}
