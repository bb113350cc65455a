package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

const fileColumns = `id, owner_id, folder_id, name, type, inline_content, blob_location, is_favorite, created_at, updated_at`

// sortColumns maps external sort field names to columns.
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"name":       "name",
	"type":       "type",
	"isFavorite": "is_favorite",
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*models.File, error) {
	var (
		f                        models.File
		fileType                 string
		folderID, inline, blobAt sql.NullString
	)
	if err := row.Scan(&f.ID, &f.OwnerID, &folderID, &f.Name, &fileType, &inline, &blobAt,
		&f.IsFavorite, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Type = models.FileType(fileType)
	if folderID.Valid {
		f.FolderID = &folderID.String
	}
	f.Content = models.ContentFromColumns(f.Type, nullable(inline), nullable(blobAt))
	return &f, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// Create inserts file. The content variant is split into its two columns.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, owner_id, folder_id, name, type, inline_content, blob_location, is_favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	inline, location := models.ContentColumns(file.Content)
	if _, err := r.db.ExecContext(ctx, query,
		file.ID, file.OwnerID, file.FolderID, file.Name, string(file.Type), inline, location,
		file.IsFavorite, file.CreatedAt, file.UpdatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: file %s", common.ErrorConflict, file.ID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the file with id owned by ownerID.
func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND owner_id = $2`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// List pages through the owner's files. A folder filter only matches while
// the folder itself still exists for the same owner.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, filter models.FileFilter, q models.ListQuery) ([]*models.File, int64, error) {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unsupported sort field %q", common.ErrorValidation, q.SortBy)
	}
	direction := "DESC"
	if q.SortOrder == models.SortAsc {
		direction = "ASC"
	}

	conds := []string{"owner_id = $1"}
	args := []any{ownerID}

	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		conds = append(conds, fmt.Sprintf(
			"folder_id = $%d AND EXISTS (SELECT 1 FROM folders fo WHERE fo.id = files.folder_id AND fo.owner_id = files.owner_id)", len(args)))
	}
	if filter.IsFavorite != nil {
		args = append(args, *filter.IsFavorite)
		conds = append(conds, fmt.Sprintf("is_favorite = $%d", len(args)))
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	pageArgs := append(args, q.Limit, q.Offset())
	query := fmt.Sprintf(`SELECT %s FROM files WHERE %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		fileColumns, where, column, direction, direction, len(args)+1, len(args)+2)

	result, err := r.query(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ListByOwner returns all of the owner's files, oldest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 ORDER BY created_at, id`
	return r.query(ctx, query, ownerID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := make([]*models.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the mutable fields of file. Exactly one row must match.
func (r *PostgresRepository) Update(ctx context.Context, file *models.File) error {
	query := `
		UPDATE files
		SET name = $1, inline_content = $2, blob_location = $3, is_favorite = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7
	`
	inline, location := models.ContentColumns(file.Content)
	res, err := r.db.ExecContext(ctx, query,
		file.Name, inline, location, file.IsFavorite, file.UpdatedAt, file.ID, file.OwnerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Delete removes the owner's file and returns what was stored.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) (*models.File, error) {
	query := `DELETE FROM files WHERE id = $1 AND owner_id = $2 RETURNING ` + fileColumns

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// DeleteByOwner removes every file of ownerID and reports how many went.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
