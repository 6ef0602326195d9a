package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/entity"
)

// Courthouse is an entry in the reference directory of court locations.
// Unlike incidents, directory entries are removed physically.
type Courthouse struct {
	ID        uuid.UUID `json:"id"`
	County    string    `json:"county"`
	Division  string    `json:"division"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// EntityKind implements entity.Entity.
func (*Courthouse) EntityKind() entity.Kind { return KindCourthouse }

// CreateCourthouseRequest is the payload for adding a directory entry.
type CreateCourthouseRequest struct {
	County   string `json:"county"`
	Division string `json:"division"`
	Name     string `json:"name"`
}

// Validate checks CreateCourthouseRequest fields.
func (r *CreateCourthouseRequest) Validate() error {
	if r.Name == "" {
		return ErrMissingName
	}

	return validateLocation(r.County, r.Division, r.Name, r.Name)
}

// NewCourthouse builds the directory row for the request.
func (r *CreateCourthouseRequest) NewCourthouse() *Courthouse {
	return &Courthouse{County: r.County, Division: r.Division, Name: r.Name}
}
