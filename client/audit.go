package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// AuditService reads the audit log.
type AuditService struct {
	c *Client
}

// Query returns audit records matching the given options, newest first.
func (s *AuditService) Query(ctx context.Context, opts *AuditQueryOptions) ([]AuditRecord, bool, error) {
	params := url.Values{}
	if opts != nil {
		if opts.TableName != "" {
			params.Set("table", opts.TableName)
		}
		if opts.PrimaryKey != "" {
			params.Set("primary_key", opts.PrimaryKey)
		}
		if opts.Action != "" {
			params.Set("action", opts.Action)
		}
		if opts.Since != nil {
			params.Set("since", opts.Since.Format(time.RFC3339))
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
	}
	var resp auditListResponse
	if err := s.c.get(ctx, "/api/v1/audit", params, &resp); err != nil {
		return nil, false, err
	}
	return resp.Records, resp.HasMore, nil
}
