package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

// Validator turns a bearer token into an owner id. It is the only identity
// capability the rest of the server depends on.
type Validator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secretKey   []byte
}

func NewValidator(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *Validator {
	return &Validator{db: db, repomanager: m, secretKey: []byte(cfg.SecretKey)}
}

// Validate returns the owner id of a well-signed, unexpired and unrevoked
// token. Rejections wrap common.ErrorUnauthorized.
func (v *Validator) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: missing access token", common.ErrorUnauthorized)
	}

	userID, err := GetUserIDFromToken(token, v.secretKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	revoked, err := v.repomanager.RevokedTokens(v.db).IsRevoked(ctx, token)
	if err != nil {
		return "", fmt.Errorf("error checking token revocation: %w", err)
	}
	if revoked {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenRevoked)
	}

	return userID, nil
}
