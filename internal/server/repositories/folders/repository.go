package folders

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Folder, error)
	List(ctx context.Context, ownerID string, q models.ListQuery) ([]*models.Folder, int64, error)
	// Update renames the owner's folder and returns the stored record.
	Update(ctx context.Context, ownerID, id, name string, updatedAt time.Time) (*models.Folder, error)
	// Delete removes only the folder row; files keep their folder_id.
	Delete(ctx context.Context, ownerID, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
