package sharelinks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type Repository interface {
	// Create stores link. A token already in use yields common.ErrorConflict.
	Create(ctx context.Context, link *models.ShareLink) error

	// FindActive returns the link for token together with its target file.
	// Unknown tokens, links expired at now, and links whose file is gone
	// all yield common.ErrorNotFound.
	FindActive(ctx context.Context, token string, now time.Time) (*models.SharedFile, error)

	// DeleteByOwner removes every link pointing at a file of ownerID.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
