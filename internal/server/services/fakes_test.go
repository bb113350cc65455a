package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/spf13/afero"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/sharelinks"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// --- in-memory repositories ---

type memStore struct {
	mu      sync.Mutex
	files   map[string]models.File
	folders map[string]models.Folder
	links   []models.ShareLink

	createFileErr error
	updateFileErr error
}

func newMemStore() *memStore {
	return &memStore{files: map[string]models.File{}, folders: map[string]models.Folder{}}
}

type memFiles struct{ s *memStore }

func (r memFiles) Create(_ context.Context, f *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createFileErr != nil {
		return r.s.createFileErr
	}
	if _, ok := r.s.files[f.ID]; ok {
		return common.ErrorConflict
	}
	r.s.files[f.ID] = *f
	return nil
}

func (r memFiles) GetByID(_ context.Context, ownerID, id string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok || f.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return &f, nil
}

func (r memFiles) List(_ context.Context, ownerID string, filter models.FileFilter, q models.ListQuery) ([]*models.File, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var less func(a, b *models.File) bool
	switch q.SortBy {
	case "createdAt":
		less = func(a, b *models.File) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "name":
		less = func(a, b *models.File) bool { return a.Name < b.Name }
	default:
		return nil, 0, common.ErrorValidation
	}

	var matched []*models.File
	for _, f := range r.s.files {
		if f.OwnerID != ownerID {
			continue
		}
		if filter.FolderID != nil {
			if f.FolderID == nil || *f.FolderID != *filter.FolderID {
				continue
			}
			if fo, ok := r.s.folders[*f.FolderID]; !ok || fo.OwnerID != ownerID {
				continue
			}
		}
		if filter.IsFavorite != nil && f.IsFavorite != *filter.IsFavorite {
			continue
		}
		if filter.CreatedAfter != nil && f.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && f.CreatedAt.After(*filter.CreatedBefore) {
			continue
		}
		f := f
		matched = append(matched, &f)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if q.SortOrder == models.SortAsc {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	total := int64(len(matched))
	start := min(q.Offset(), len(matched))
	end := min(start+q.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r memFiles) ListByOwner(_ context.Context, ownerID string) ([]*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.File
	for _, f := range r.s.files {
		if f.OwnerID == ownerID {
			f := f
			out = append(out, &f)
		}
	}
	return out, nil
}

func (r memFiles) Update(_ context.Context, f *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.updateFileErr != nil {
		return r.s.updateFileErr
	}
	cur, ok := r.s.files[f.ID]
	if !ok || cur.OwnerID != f.OwnerID {
		return common.ErrorNotFound
	}
	r.s.files[f.ID] = *f
	return nil
}

func (r memFiles) Delete(_ context.Context, ownerID, id string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok || f.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	delete(r.s.files, id)
	return &f, nil
}

func (r memFiles) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, f := range r.s.files {
		if f.OwnerID == ownerID {
			delete(r.s.files, id)
			n++
		}
	}
	return n, nil
}

type memFolders struct{ s *memStore }

func (r memFolders) Create(_ context.Context, f *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.folders[f.ID] = *f
	return nil
}

func (r memFolders) GetByID(_ context.Context, ownerID, id string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return &f, nil
}

func (r memFolders) List(_ context.Context, ownerID string, q models.ListQuery) ([]*models.Folder, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Folder
	for _, f := range r.s.folders {
		if f.OwnerID == ownerID {
			f := f
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	start := min(q.Offset(), len(out))
	end := min(start+q.Limit, len(out))
	return out[start:end], total, nil
}

func (r memFolders) Update(_ context.Context, ownerID, id, name string, at time.Time) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	f.Name, f.UpdatedAt = name, at
	r.s.folders[id] = f
	return &f, nil
}

func (r memFolders) Delete(_ context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.folders[id]
	if !ok || f.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.s.folders, id)
	return nil
}

func (r memFolders) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, f := range r.s.folders {
		if f.OwnerID == ownerID {
			delete(r.s.folders, id)
			n++
		}
	}
	return n, nil
}

type memLinks struct{ s *memStore }

func (r memLinks) Create(_ context.Context, l *models.ShareLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.links {
		if existing.Token == l.Token {
			return common.ErrorConflict
		}
	}
	r.s.links = append(r.s.links, *l)
	return nil
}

func (r memLinks) FindActive(_ context.Context, token string, now time.Time) (*models.SharedFile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.links {
		if l.Token != token || !l.ExpiresAt.After(now) {
			continue
		}
		f, ok := r.s.files[l.FileID]
		if !ok {
			return nil, common.ErrorNotFound
		}
		return &models.SharedFile{Link: l, File: f}, nil
	}
	return nil, common.ErrorNotFound
}

func (r memLinks) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.links[:0]
	var n int64
	for _, l := range r.s.links {
		if f, ok := r.s.files[l.FileID]; ok && f.OwnerID == ownerID {
			n++
			continue
		}
		kept = append(kept, l)
	}
	r.s.links = kept
	return n, nil
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository                 { return memFiles{m.s} }
func (m *fakeRepoManager) Folders(dbx.DBTX) folders.Repository             { return memFolders{m.s} }
func (m *fakeRepoManager) ShareLinks(dbx.DBTX) sharelinks.Repository       { return memLinks{m.s} }
func (m *fakeRepoManager) RevokedTokens(dbx.DBTX) revokedtokens.Repository { return nil }

// --- byte store with injectable faults ---

type faultyStore struct {
	blobstore.Store
	renameErr error
	copyErr   error
	deleteErr error
	statErr   map[string]error

	deleted []string
}

func (f *faultyStore) Rename(ctx context.Context, from, to string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.Store.Rename(ctx, from, to)
}

func (f *faultyStore) Copy(ctx context.Context, from, to string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	return f.Store.Copy(ctx, from, to)
}

func (f *faultyStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if err := f.Store.Delete(ctx, key); err != nil {
		return err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *faultyStore) Stat(ctx context.Context, key string) (int64, error) {
	if err, ok := f.statErr[key]; ok {
		return 0, err
	}
	return f.Store.Stat(ctx, key)
}

// --- fixture ---

type fixture struct {
	mem     *memStore
	rm      *fakeRepoManager
	store   *faultyStore
	clock   *testclock.Clock
	files   *FileService
	folders *FolderService
	quota   *QuotaService
	shares  *ShareService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := newMemStore()
	rm := &fakeRepoManager{s: mem}
	store := &faultyStore{Store: blobstore.NewFSStore(afero.NewMemMapFs()), statErr: map[string]error{}}
	clk := testclock.NewClock(t0)
	log := logging.Nop{}
	return &fixture{
		mem:     mem,
		rm:      rm,
		store:   store,
		clock:   clk,
		files:   NewFileService(nil, rm, store, clk, log),
		folders: NewFolderService(nil, rm, clk, log),
		quota:   NewQuotaService(nil, rm, store, log),
		shares:  NewShareService(nil, rm, store, clk, log),
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
