package httpapi

import (
	"context"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

// FileCatalog is satisfied by *services.FileService.
type FileCatalog interface {
	Create(ctx context.Context, ownerID string, in services.CreateFileInput) (*models.FileView, error)
	Get(ctx context.Context, ownerID, id string) (*models.FileView, error)
	List(ctx context.Context, ownerID string, filter services.FileListFilter, p services.ListParams) (*models.Page[models.FileView], error)
	ListByDate(ctx context.Context, ownerID, date string, filter services.FileListFilter, p services.ListParams) (*models.Page[models.FileView], error)
	Update(ctx context.Context, ownerID, id string, in services.UpdateFileInput) (*models.FileView, error)
	Delete(ctx context.Context, ownerID, id string) error
	OpenContent(ctx context.Context, ownerID, id string) (*services.ContentStream, error)
	Rename(ctx context.Context, ownerID, id, name string) (*models.FileView, error)
	Duplicate(ctx context.Context, ownerID, id string) (*models.FileView, error)
	Copy(ctx context.Context, ownerID, id, folderID string) (*models.FileView, error)
}

// FolderCatalog is satisfied by *services.FolderService.
type FolderCatalog interface {
	Create(ctx context.Context, ownerID string, in services.FolderInput) (*models.Folder, error)
	List(ctx context.Context, ownerID string, p services.ListParams) (*models.Page[*models.Folder], error)
	Get(ctx context.Context, ownerID, id string) (*models.Folder, error)
	Update(ctx context.Context, ownerID, id string, in services.FolderInput) (*models.Folder, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type QuotaReporter interface {
	Overview(ctx context.Context, ownerID string) (*models.StorageOverview, error)
	Details(ctx context.Context, ownerID string) (*models.StorageDetails, error)
}

type ShareLinks interface {
	Issue(ctx context.Context, ownerID, fileID string, expiresInDays *int, baseURL string) (*models.ShareResult, error)
	Resolve(ctx context.Context, token string) (*models.FileView, error)
	OpenContent(ctx context.Context, token string) (*services.ContentStream, error)
}

type AccountPurger interface {
	Purge(ctx context.Context, ownerID string) (*services.PurgeReport, error)
}

// TokenValidator is satisfied by *auth.Validator.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}
