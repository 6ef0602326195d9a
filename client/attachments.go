package client

import (
	"context"
	"net/url"
)

// AttachmentService handles attachment metadata.
type AttachmentService struct {
	c *Client
}

// Add files an attachment against an incident.
func (s *AttachmentService) Add(ctx context.Context, incidentID string, req *CreateAttachmentRequest) (*Attachment, error) {
	var att Attachment
	if err := s.c.post(ctx, "/api/v1/incidents/"+url.PathEscape(incidentID)+"/attachments", req, &att); err != nil {
		return nil, err
	}
	return &att, nil
}

// Delete soft-deletes an attachment.
func (s *AttachmentService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, "/api/v1/attachments/"+url.PathEscape(id), nil, nil)
}
