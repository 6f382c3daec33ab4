package processor

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// Rendered is a preview image ready to be served.
type Rendered struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Thumbnail   bool
}

// ImageProcessor turns uploaded image bytes into previews.
type ImageProcessor interface {
	Preview(data []byte, contentType string) (*Rendered, error)
}

type imageProcessor struct {
	maxSide int
}

func NewImageProcessor(maxSide int) ImageProcessor {
	if maxSide <= 0 {
		maxSide = 320
	}
	return &imageProcessor{maxSide: maxSide}
}

// Preview downscales the image to fit maxSide and encodes it as PNG. Images
// the decoder does not understand are passed through untouched so the browser
// can still render them itself.
func (p *imageProcessor) Preview(data []byte, contentType string) (*Rendered, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		if contentType == "" {
			contentType = DetectContentType(data)
		}
		return &Rendered{Data: data, ContentType: contentType}, nil
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.maxSide || bounds.Dy() > p.maxSide {
		img = imaging.Fit(img, p.maxSide, p.maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}

	size := img.Bounds()
	return &Rendered{
		Data:        buf.Bytes(),
		ContentType: "image/png",
		Width:       size.Dx(),
		Height:      size.Dy(),
		Thumbnail:   true,
	}, nil
}

// DetectContentType sniffs the MIME type from the leading bytes.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// ResolveContentType keeps a specific declared type and sniffs otherwise.
func ResolveContentType(declared string, data []byte) string {
	switch declared {
	case "", "application/octet-stream":
		return DetectContentType(data)
	}
	return declared
}
