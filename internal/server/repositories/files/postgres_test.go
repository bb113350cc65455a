package files

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	t0      = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	columns = []string{"id", "owner_id", "folder_id", "name", "type", "inline_content", "blob_location", "is_favorite", "created_at", "updated_at"}
)

func TestCreate_Document(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	folder := "fo1"
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO files`)).
		WithArgs("f1", "u1", "fo1", "notes", "document", "hello", nil, false, t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.File{
		ID: "f1", OwnerID: "u1", FolderID: &folder, Name: "notes", Type: models.FileTypeDocument,
		Content: models.Document{Text: "hello"}, CreatedAt: t0, UpdatedAt: t0,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BlobWithoutFolder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO files`)).
		WithArgs("f2", "u1", nil, "scan.pdf", "pdf", nil, "documents/1-a-scan.pdf", true, t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.File{
		ID: "f2", OwnerID: "u1", Name: "scan.pdf", Type: models.FileTypePDF, IsFavorite: true,
		Content: models.Blob{Location: "documents/1-a-scan.pdf"}, CreatedAt: t0, UpdatedAt: t0,
	})
	require.NoError(t, err)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO files`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &models.File{ID: "f1", OwnerID: "u1", Type: models.FileTypeDocument, Content: models.Document{}})
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("f1", "u1", nil, "photo.png", "image", nil, "images/1-b-photo.png", false, t0, t0)
	mock.ExpectQuery(`SELECT .* FROM files WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("f1", "u1").
		WillReturnRows(rows)

	f, err := repo.GetByID(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, models.FileTypeImage, f.Type)
	assert.Nil(t, f.FolderID)
	assert.Equal(t, models.Blob{Location: "images/1-b-photo.png"}, f.Content)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM files WHERE id = \$1`).
		WithArgs("nope", "u1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_FiltersSortAndPaging(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	folder := "fo1"
	fav := true
	filter := models.FileFilter{FolderID: &folder, IsFavorite: &fav}
	q := models.ListQuery{SortBy: "name", SortOrder: models.SortAsc, Page: 2, Limit: 5}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM files WHERE owner_id = \$1 AND folder_id = \$2 AND EXISTS .* AND is_favorite = \$3`).
		WithArgs("u1", "fo1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	mock.ExpectQuery(`SELECT .* FROM files WHERE .* ORDER BY name ASC, id ASC LIMIT \$4 OFFSET \$5`).
		WithArgs("u1", "fo1", true, 5, 5).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("f6", "u1", "fo1", "zeta", "document", "z", nil, true, t0, t0))

	got, total, err := repo.List(context.Background(), "u1", filter, q)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, got, 1)
	assert.Equal(t, "fo1", *got[0].FolderID)
	assert.Equal(t, models.Document{Text: "z"}, got[0].Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_DateRange(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	from := t0
	to := t0.Add(24*time.Hour - time.Nanosecond)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM files WHERE owner_id = \$1 AND created_at >= \$2 AND created_at <= \$3`).
		WithArgs("u1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC`).
		WillReturnRows(sqlmock.NewRows(columns))

	got, total, err := repo.List(context.Background(), "u1",
		models.FileFilter{CreatedAfter: &from, CreatedBefore: &to},
		models.ListQuery{SortBy: "createdAt", SortOrder: models.SortDesc, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
}

func TestList_UnknownSortField(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	_, _, err := repo.List(context.Background(), "u1", models.FileFilter{}, models.ListQuery{SortBy: "size; DROP TABLE files"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestList_CountError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("boom"))

	_, _, err := repo.List(context.Background(), "u1", models.FileFilter{}, models.ListQuery{SortBy: "name", Limit: 10, Page: 1})
	assert.Error(t, err)
}

func TestListByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM files WHERE owner_id = \$1 ORDER BY created_at, id`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("f1", "u1", nil, "a", "document", "x", nil, false, t0, t0).
			AddRow("f2", "u1", nil, "b.pdf", "pdf", nil, "documents/b.pdf", false, t0, t0))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "documents/b.pdf", got[1].BlobLocation())
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		result  sql.Result
		execErr error
		wantErr error
	}{
		{name: "updated", result: sqlmock.NewResult(0, 1)},
		{name: "missing", result: sqlmock.NewResult(0, 0), wantErr: common.ErrorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(`UPDATE files\s+SET name = \$1, inline_content = \$2, blob_location = \$3, is_favorite = \$4, updated_at = \$5\s+WHERE id = \$6 AND owner_id = \$7`).
				WithArgs("renamed", nil, "images/renamed.png", true, t0, "f1", "u1").
				WillReturnResult(tt.result)

			err := repo.Update(context.Background(), &models.File{
				ID: "f1", OwnerID: "u1", Name: "renamed", Type: models.FileTypeImage,
				Content: models.Blob{Location: "images/renamed.png"}, IsFavorite: true, UpdatedAt: t0,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDelete_ReturnsRemovedRecord(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE FROM files WHERE id = \$1 AND owner_id = \$2 RETURNING`).
		WithArgs("f1", "u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("f1", "u1", nil, "p.png", "image", nil, "images/p.png", false, t0, t0))

	f, err := repo.Delete(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "images/p.png", f.BlobLocation())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE FROM files`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Delete(context.Background(), "u1", "f1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM files WHERE owner_id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
