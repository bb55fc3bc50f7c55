package model

import (
	"sync"
	"time"

	"github.com/shinyyama/listing-studio/internal/mask"
)

// Image is an encoded picture with its decoded dimensions.
type Image struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// EditSession holds one property photo being edited. Fields after the mutex
// are guarded by it; InFlight marks a pending AI request.
type EditSession struct {
	sync.Mutex

	ID           string
	Original     Image
	Current      Image
	Mask         *mask.Engine
	InFlight     bool
	Revision     int
	CreatedAt    time.Time
	LastActivity time.Time
}

func (s *EditSession) Touch(now time.Time) {
	s.LastActivity = now
}
