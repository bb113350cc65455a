package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

// PurgeReport counts what a purge removed.
type PurgeReport struct {
	Blobs      int   `json:"blobs"`
	Files      int64 `json:"files"`
	Folders    int64 `json:"folders"`
	ShareLinks int64 `json:"shareLinks"`
}

// AccountService removes everything an owner has stored.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       blobstore.Store
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, store blobstore.Store, logger logging.Logger) *AccountService {
	return &AccountService{db: db, repomanager: m, store: store, logger: logger.With("module", "account")}
}

// Purge deletes the owner's blobs, then in one transaction their share
// links, files and folders. Every step tolerates data already removed, so a
// purge interrupted after the blob step is completed by running it again.
func (s *AccountService) Purge(ctx context.Context, ownerID string) (*PurgeReport, error) {
	files, err := s.repomanager.Files(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &PurgeReport{}
	for _, f := range files {
		key := f.BlobLocation()
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			if errors.Is(err, blobstore.ErrBlobNotFound) {
				continue
			}
			return nil, fmt.Errorf("%w: failed to delete %s: %v", common.ErrorStorageIO, key, err)
		}
		report.Blobs++
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if report.ShareLinks, err = s.repomanager.ShareLinks(tx).DeleteByOwner(ctx, ownerID); err != nil {
			return fmt.Errorf("error deleting share links: %w", err)
		}
		if report.Files, err = s.repomanager.Files(tx).DeleteByOwner(ctx, ownerID); err != nil {
			return fmt.Errorf("error deleting files: %w", err)
		}
		if report.Folders, err = s.repomanager.Folders(tx).DeleteByOwner(ctx, ownerID); err != nil {
			return fmt.Errorf("error deleting folders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "owner purged", "owner_id", ownerID,
		"blobs", report.Blobs, "files", report.Files, "folders", report.Folders, "share_links", report.ShareLinks)
	return report, nil
}
