package revokedtokens

import "context"

type Repository interface {
	// IsRevoked reports whether token has been blacklisted.
	IsRevoked(ctx context.Context, token string) (bool, error)
}
