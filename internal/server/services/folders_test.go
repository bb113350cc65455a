package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
)

func TestFolderService_CRUD(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created, err := fx.folders.Create(ctx, "u1", FolderInput{Name: "Work"})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.OwnerID)
	assert.Equal(t, t0, created.CreatedAt)

	got, err := fx.folders.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = fx.folders.Get(ctx, "u2", created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	fx.clock.Advance(time.Hour)
	updated, err := fx.folders.Update(ctx, "u1", created.ID, FolderInput{Name: "Projects"})
	require.NoError(t, err)
	assert.Equal(t, "Projects", updated.Name)
	assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)

	_, err = fx.folders.Update(ctx, "u2", created.ID, FolderInput{Name: "Mine"})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, fx.folders.Delete(ctx, "u2", created.ID), common.ErrorNotFound)
	require.NoError(t, fx.folders.Delete(ctx, "u1", created.ID))
	assert.ErrorIs(t, fx.folders.Delete(ctx, "u1", created.ID), common.ErrorNotFound)
}

func TestFolderService_Validation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.folders.Create(ctx, "u1", FolderInput{})
	assert.ErrorIs(t, err, common.ErrorValidation)

	f, err := fx.folders.Create(ctx, "u1", FolderInput{Name: "ok"})
	require.NoError(t, err)
	_, err = fx.folders.Update(ctx, "u1", f.ID, FolderInput{})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestFolderService_List(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := fx.folders.Create(ctx, "u1", FolderInput{Name: name})
		require.NoError(t, err)
	}
	_, err := fx.folders.Create(ctx, "u2", FolderInput{Name: "other"})
	require.NoError(t, err)

	page, err := fx.folders.List(ctx, "u1", ListParams{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, int64(2), page.Pagination.TotalPages)
}

func TestFolderService_LogsCreateAndDelete(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	var buf bytes.Buffer
	svc := NewFolderService(nil, fx.rm, fx.clock, logging.NewJSONLogger(&buf, "info"))

	created, err := svc.Create(ctx, "u1", FolderInput{Name: "Work"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "u1", created.ID))

	out := buf.String()
	assert.Contains(t, out, `"module":"folders"`)
	assert.Contains(t, out, `"msg":"folder created"`)
	assert.Contains(t, out, `"msg":"folder deleted"`)
	assert.Contains(t, out, `"folder_id":"`+created.ID+`"`)
}
