package client

import (
	"context"
	"net/url"
)

// CourthouseService handles the courthouse directory.
type CourthouseService struct {
	c *Client
}

// List returns every directory entry.
func (s *CourthouseService) List(ctx context.Context) ([]Courthouse, error) {
	var resp struct {
		Courthouses []Courthouse `json:"courthouses"`
	}
	if err := s.c.get(ctx, "/api/v1/courthouses", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Courthouses, nil
}

// Create adds a directory entry.
func (s *CourthouseService) Create(ctx context.Context, req *CreateCourthouseRequest) (*Courthouse, error) {
	var ch Courthouse
	if err := s.c.post(ctx, "/api/v1/courthouses", req, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Delete removes a directory entry.
func (s *CourthouseService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, "/api/v1/courthouses/"+url.PathEscape(id), nil, nil)
}
