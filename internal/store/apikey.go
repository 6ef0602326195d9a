package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrUnknownAPIKey is returned when no active key matches.
var ErrUnknownAPIKey = errors.New("unknown api key")

// APIKeyStore maps API keys to the actor names recorded on audit rows.
// Keys are stored as sha256 hashes only.
type APIKeyStore struct {
	Base
}

// NewAPIKeyStore creates an APIKeyStore.
func NewAPIKeyStore(base Base) *APIKeyStore {
	return &APIKeyStore{Base: base}
}

func hashKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))

	return hex.EncodeToString(hash[:])
}

// ActorByAPIKey looks up the actor owning apiKey.
func (s *APIKeyStore) ActorByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var actor string

	err := s.Pool.QueryRow(ctx,
		"SELECT actor FROM api_keys WHERE key_hash = $1 AND revoked_at IS NULL", hashKey(apiKey),
	).Scan(&actor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUnknownAPIKey
		}

		return "", fmt.Errorf("looking up actor by API key: %w", err)
	}

	return actor, nil
}

// CreateAPIKey issues a new random key for actor and returns it. Only the
// hash is persisted, so the key cannot be recovered later.
func (s *APIKeyStore) CreateAPIKey(ctx context.Context, actor string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating api key: %w", err)
	}

	key := "cs_" + hex.EncodeToString(buf)

	if _, err := s.Pool.Exec(ctx,
		"INSERT INTO api_keys (key_hash, actor) VALUES ($1, $2)", hashKey(key), actor,
	); err != nil {
		return "", fmt.Errorf("storing api key: %w", err)
	}

	return key, nil
}

// RevokeAPIKeys revokes every active key of actor and returns how many were revoked.
func (s *APIKeyStore) RevokeAPIKeys(ctx context.Context, actor string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx,
		"UPDATE api_keys SET revoked_at = now() WHERE actor = $1 AND revoked_at IS NULL", actor,
	)
	if err != nil {
		return 0, fmt.Errorf("revoking api keys: %w", err)
	}

	return tag.RowsAffected(), nil
}
