package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/juju/clock"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

type FolderInput struct {
	Name string `validate:"required,max=255"`
}

// FolderService is the folder half of the catalog. Deleting a folder leaves
// its files in place with a dangling folder reference.
type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       clock.Clock
	logger      logging.Logger
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager, clk clock.Clock, logger logging.Logger) *FolderService {
	return &FolderService{db: db, repomanager: m, clock: clk, logger: logger.With("module", "folders")}
}

func (s *FolderService) Create(ctx context.Context, ownerID string, in FolderInput) (*models.Folder, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	f := &models.Folder{
		ID:        newID(),
		Name:      in.Name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repomanager.Folders(s.db).Create(ctx, f); err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}

	s.logger.Info(ctx, "folder created", "folder_id", f.ID, "owner_id", ownerID)
	return f, nil
}

func (s *FolderService) List(ctx context.Context, ownerID string, p ListParams) (*models.Page[*models.Folder], error) {
	q, err := p.query()
	if err != nil {
		return nil, err
	}
	folders, total, err := s.repomanager.Folders(s.db).List(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	return &models.Page[*models.Folder]{
		Data:       folders,
		Pagination: models.NewPagination(total, q.Page, q.Limit),
	}, nil
}

func (s *FolderService) Get(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	f, err := s.repomanager.Folders(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, notFound("folder", err)
	}
	return f, nil
}

func (s *FolderService) Update(ctx context.Context, ownerID, id string, in FolderInput) (*models.Folder, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	f, err := s.repomanager.Folders(s.db).Update(ctx, ownerID, id, in.Name, s.clock.Now().UTC())
	if err != nil {
		return nil, notFound("folder", err)
	}
	return f, nil
}

func (s *FolderService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repomanager.Folders(s.db).Delete(ctx, ownerID, id); err != nil {
		return notFound("folder", err)
	}

	s.logger.Info(ctx, "folder deleted", "folder_id", id, "owner_id", ownerID)
	return nil
}
