package sharelinks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, link *models.ShareLink) error {
	query := `INSERT INTO share_links (id, file_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		link.ID, link.FileID, link.Token, link.ExpiresAt, link.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: share token already issued", common.ErrorConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, token string, now time.Time) (*models.SharedFile, error) {
	query := `
		SELECT s.id, s.file_id, s.token, s.expires_at, s.created_at,
		       f.id, f.owner_id, f.folder_id, f.name, f.type, f.inline_content, f.blob_location,
		       f.is_favorite, f.created_at, f.updated_at
		FROM share_links s
		JOIN files f ON f.id = s.file_id
		WHERE s.token = $1 AND s.expires_at > $2
	`

	var (
		sf                       models.SharedFile
		fileType                 string
		folderID, inline, blobAt sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, token, now).Scan(
		&sf.Link.ID, &sf.Link.FileID, &sf.Link.Token, &sf.Link.ExpiresAt, &sf.Link.CreatedAt,
		&sf.File.ID, &sf.File.OwnerID, &folderID, &sf.File.Name, &fileType, &inline, &blobAt,
		&sf.File.IsFavorite, &sf.File.CreatedAt, &sf.File.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	sf.File.Type = models.FileType(fileType)
	if folderID.Valid {
		sf.File.FolderID = &folderID.String
	}
	var inlinePtr, blobPtr *string
	if inline.Valid {
		inlinePtr = &inline.String
	}
	if blobAt.Valid {
		blobPtr = &blobAt.String
	}
	sf.File.Content = models.ContentFromColumns(sf.File.Type, inlinePtr, blobPtr)

	return &sf, nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	query := `DELETE FROM share_links WHERE file_id IN (SELECT id FROM files WHERE owner_id = $1)`

	res, err := r.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
