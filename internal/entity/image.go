package entity

import (
	"strings"
	"time"
)

// Source names the input channel that produced a file.
type Source string

const (
	SourcePicker Source = "picker"
	SourceDrop   Source = "drop"
	SourcePaste  Source = "paste"
)

func ParseSource(s string) (Source, bool) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourcePicker:
		return SourcePicker, true
	case SourceDrop:
		return SourceDrop, true
	case SourcePaste:
		return SourcePaste, true
	}
	return "", false
}

// SelectedImage is the single file awaiting or having undergone prediction.
type SelectedImage struct {
	Name        string
	ContentType string
	Data        []byte
	Source      Source
	SelectedAt  time.Time
}

func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// PreviewRef is an opaque handle to the rendered preview of a SelectedImage.
type PreviewRef string

type Preview struct {
	Ref         PreviewRef `json:"ref"`
	ContentType string     `json:"content_type"`
	Width       int        `json:"width,omitempty"`
	Height      int        `json:"height,omitempty"`
	Thumbnail   bool       `json:"thumbnail"`
	CreatedAt   time.Time  `json:"created_at"`
}

type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Source      Source `json:"source"`
}
