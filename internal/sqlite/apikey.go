package sqlite

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/grantflow/internal/repository"
)

const tokenPrefix = "gf_"

// APIKeyRepository issues API keys and resolves them to principals.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create issues a new token for principal. Only its hash is stored.
func (r *APIKeyRepository) Create(ctx context.Context, principal, description string) (string, error) {
	if strings.TrimSpace(principal) == "" {
		return "", errors.New("principal is required")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := tokenPrefix + hex.EncodeToString(buf)
	if err := r.Add(ctx, token, principal, description); err != nil {
		return "", err
	}
	return token, nil
}

// Add registers a caller-chosen token for principal.
func (r *APIKeyRepository) Add(ctx context.Context, token, principal, description string) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, principal, created_at, description) VALUES (?, ?, ?, ?)`,
		HashToken(token), principal, time.Now().UTC(), description,
	)
	if err != nil {
		return mapWriteError(err, "create api key")
	}
	return nil
}

// ResolvePrincipal returns the principal owning token and records its use.
func (r *APIKeyRepository) ResolvePrincipal(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)
	var principal string
	err := r.db.conn(ctx).QueryRowContext(ctx, `SELECT principal FROM api_keys WHERE key_hash = ?`, hash).Scan(&principal)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}
	if _, err := r.db.conn(ctx).ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return principal, nil
}

// HashToken returns the hex sha256 of a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
