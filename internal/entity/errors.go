package entity

import "errors"

var (
	// Upload errors
	ErrNoImage        = errors.New("no image selected")
	ErrSubmitInFlight = errors.New("prediction already in progress")
	ErrNotImage       = errors.New("file is not an image")
	ErrEmptyFile      = errors.New("file is empty")

	// Lookup errors
	ErrSessionNotFound = errors.New("session not found")
	ErrPreviewNotFound = errors.New("preview not found")
)
