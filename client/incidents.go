package client

import (
	"context"
	"net/url"
	"strconv"
)

// IncidentService handles incident operations.
type IncidentService struct {
	c *Client
}

// incidentListResponse wraps the paginated incident list response.
type incidentListResponse struct {
	Incidents []Incident `json:"incidents"`
	HasMore   bool       `json:"has_more"`
}

// auditListResponse wraps a paginated list of audit records.
type auditListResponse struct {
	Records []AuditRecord `json:"records"`
	HasMore bool          `json:"has_more"`
}

func listParams(opts *IncidentListOptions) url.Values {
	params := url.Values{}
	if opts != nil {
		if opts.Status != "" {
			params.Set("status", opts.Status)
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
	}
	return params
}

// List returns live incidents.
func (s *IncidentService) List(ctx context.Context, opts *IncidentListOptions) ([]Incident, bool, error) {
	var resp incidentListResponse
	if err := s.c.get(ctx, "/api/v1/incidents", listParams(opts), &resp); err != nil {
		return nil, false, err
	}
	return resp.Incidents, resp.HasMore, nil
}

// Get returns a live incident with its attachments.
func (s *IncidentService) Get(ctx context.Context, id string) (*Incident, error) {
	var inc Incident
	if err := s.c.get(ctx, "/api/v1/incidents/"+url.PathEscape(id), nil, &inc); err != nil {
		return nil, err
	}
	return &inc, nil
}

// Create reports a new incident.
func (s *IncidentService) Create(ctx context.Context, req *CreateIncidentRequest) (*Incident, error) {
	var inc Incident
	if err := s.c.post(ctx, "/api/v1/incidents", req, &inc); err != nil {
		return nil, err
	}
	return &inc, nil
}

// Update replaces the editable fields of an incident.
func (s *IncidentService) Update(ctx context.Context, id string, req *UpdateIncidentRequest) (*Incident, error) {
	var inc Incident
	if err := s.c.put(ctx, "/api/v1/incidents/"+url.PathEscape(id), req, &inc); err != nil {
		return nil, err
	}
	return &inc, nil
}

// Delete soft-deletes an incident and its attachments.
func (s *IncidentService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, "/api/v1/incidents/"+url.PathEscape(id), nil, nil)
}

// History returns the audit trail of an incident, newest first.
func (s *IncidentService) History(ctx context.Context, id string, limit, offset int) ([]AuditRecord, bool, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	var resp auditListResponse
	if err := s.c.get(ctx, "/api/v1/incidents/"+url.PathEscape(id)+"/history", params, &resp); err != nil {
		return nil, false, err
	}
	return resp.Records, resp.HasMore, nil
}
