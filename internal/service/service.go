// Package service provides the operations behind the API handlers. Every
// write is staged as a change set and committed through the audited commit
// coordinator; services never write to storage directly.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/entity"
	"github.com/courtsec/courtsec/internal/identity"
)

// Committer commits a change set on behalf of a caller.
type Committer interface {
	Commit(ctx context.Context, who identity.Provider, cs *commit.ChangeSet) (*commit.Result, error)
}

// stored returns entry i of res as T.
func stored[T any, PT interface {
	*T
	entity.Entity
}](res *commit.Result, i int) (PT, error) {
	if res == nil || i >= len(res.Entities) {
		return nil, fmt.Errorf("commit result has no entry %d", i)
	}

	v, ok := res.Entities[i].(PT)
	if !ok || v == nil {
		return nil, fmt.Errorf("commit result entry %d is %T", i, res.Entities[i])
	}

	return v, nil
}

// notFound turns a row that vanished between read and write into notFoundErr.
func notFound(err, notFoundErr error) error {
	if errors.Is(err, commit.ErrMissingRow) {
		return fmt.Errorf("%w: %w", notFoundErr, err)
	}

	return err
}
