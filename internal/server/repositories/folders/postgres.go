package folders

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

const folderColumns = `id, owner_id, name, created_at, updated_at`

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanFolder(row interface{ Scan(...any) error }) (*models.Folder, error) {
	var f models.Folder
	if err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `INSERT INTO folders (id, owner_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		folder.ID, folder.OwnerID, folder.Name, folder.CreatedAt, folder.UpdatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: folder %s", common.ErrorConflict, folder.ID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1 AND owner_id = $2`

	f, err := scanFolder(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, q models.ListQuery) ([]*models.Folder, int64, error) {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unsupported sort field %q", common.ErrorValidation, q.SortBy)
	}
	direction := "DESC"
	if q.SortOrder == models.SortAsc {
		direction = "ASC"
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count folders: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM folders WHERE owner_id = $1 ORDER BY %s %s, id %s LIMIT $2 OFFSET $3`,
		folderColumns, column, direction, direction)

	rows, err := r.db.QueryContext(ctx, query, ownerID, q.Limit, q.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID, id, name string, updatedAt time.Time) (*models.Folder, error) {
	query := `
		UPDATE folders SET name = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
		RETURNING ` + folderColumns

	f, err := scanFolder(r.db.QueryRowContext(ctx, query, name, updatedAt, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
