// Package files declares the metadata-store contract for File records and
// its PostgreSQL implementation. Every lookup and mutation is scoped by owner.
package files

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type Repository interface {
	// Create inserts a new file record.
	Create(ctx context.Context, file *models.File) error

	// GetByID returns the owner's file or common.ErrorNotFound.
	GetByID(ctx context.Context, ownerID, id string) (*models.File, error)

	// List returns one page of the owner's files matching filter together
	// with the total number of matches.
	List(ctx context.Context, ownerID string, filter models.FileFilter, q models.ListQuery) ([]*models.File, int64, error)

	// ListByOwner returns every file of the owner, unpaged.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error)

	// Update persists name, content, favourite flag and updated_at.
	// Returns common.ErrorNotFound when the owner has no such file.
	Update(ctx context.Context, file *models.File) error

	// Delete removes the owner's file and returns the removed record.
	Delete(ctx context.Context, ownerID, id string) (*models.File, error)

	// DeleteByOwner removes every file of the owner.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
