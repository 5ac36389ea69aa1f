package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a remark left on a campground by a user.
// Comments are read-only in this service: they are expanded onto the
// campground detail view but created and managed elsewhere.
type Comment struct {
	ID           uuid.UUID `json:"id"`
	CampgroundID uuid.UUID `json:"campground_id"`
	Text         string    `json:"text"`
	Author       Author    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
}
