package ws

import (
	"context"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/identity"
)

// Committer commits a change set on behalf of a caller.
type Committer interface {
	Commit(ctx context.Context, who identity.Provider, cs *commit.ChangeSet) (*commit.Result, error)
}

// Publisher forwards commits to an inner Committer and publishes the audit
// records of each successful commit to the hub. Failed commits publish
// nothing.
type Publisher struct {
	inner Committer
	hub   *Hub
}

// NewPublisher wraps inner.
func NewPublisher(inner Committer, hub *Hub) *Publisher {
	return &Publisher{inner: inner, hub: hub}
}

// Commit implements Committer.
func (p *Publisher) Commit(ctx context.Context, who identity.Provider, cs *commit.ChangeSet) (*commit.Result, error) {
	res, err := p.inner.Commit(ctx, who, cs)
	if err != nil {
		return nil, err
	}

	for _, rec := range res.Audit {
		p.hub.PublishAudit(rec)
	}

	return res, nil
}
