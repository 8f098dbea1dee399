package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrContent marks payloads a slide cannot display
	ErrContent = errors.New("unsupported content")
	// ErrLayoutNotFound is returned for layout indices outside the template
	ErrLayoutNotFound = errors.New("layout not found")
	// ErrPlaceholderNotFound is returned when a slide lacks a placeholder
	ErrPlaceholderNotFound = errors.New("placeholder not found")
	// ErrShapeNotFound is returned when no shape matches an element descriptor
	ErrShapeNotFound = errors.New("shape not found")
	// ErrSlotNotFound is returned when no discovered slot has the requested name
	ErrSlotNotFound = errors.New("slot not found")
	// ErrMalformedSlot is returned for slot records without a tab separator
	ErrMalformedSlot = errors.New("malformed slot record")
	// ErrNoPath is returned when saving a session that has no storage path
	ErrNoPath = errors.New("no document path")
	// ErrUnsupportedImage is returned for files that do not decode as images
	ErrUnsupportedImage = errors.New("unsupported image")
)

// ContentError names a payload that could not be placed on a slide
type ContentError struct {
	Payload Payload
	Reason  string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("can't process image %s: %s", e.Payload, e.Reason)
}

// Is makes errors.Is(err, ErrContent) match
func (e *ContentError) Is(target error) bool {
	return target == ErrContent
}
