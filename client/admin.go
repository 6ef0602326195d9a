package client

import (
	"context"
	"net/url"
)

// AdminService reads incidents including soft-deleted ones.
type AdminService struct {
	c *Client
}

// ListIncidents returns incidents whether or not they are deleted.
func (s *AdminService) ListIncidents(ctx context.Context, opts *IncidentListOptions) ([]Incident, bool, error) {
	var resp incidentListResponse
	if err := s.c.get(ctx, "/api/v1/admin/incidents", listParams(opts), &resp); err != nil {
		return nil, false, err
	}
	return resp.Incidents, resp.HasMore, nil
}

// GetIncident returns an incident whether or not it is deleted.
func (s *AdminService) GetIncident(ctx context.Context, id string) (*Incident, error) {
	var inc Incident
	if err := s.c.get(ctx, "/api/v1/admin/incidents/"+url.PathEscape(id), nil, &inc); err != nil {
		return nil, err
	}
	return &inc, nil
}
