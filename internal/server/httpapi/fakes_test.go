package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/spf13/afero"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/config"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

const (
	testToken = "good-token"
	testOwner = "owner-1"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type fakeValidator struct{}

func (fakeValidator) Validate(_ context.Context, token string) (string, error) {
	if token != testToken {
		return "", common.ErrorUnauthorized
	}
	return testOwner, nil
}

type fakeFiles struct {
	create     func(ownerID string, in services.CreateFileInput) (*models.FileView, error)
	get        func(ownerID, id string) (*models.FileView, error)
	list       func(ownerID string, f services.FileListFilter, p services.ListParams) (*models.Page[models.FileView], error)
	listByDate func(ownerID, date string, f services.FileListFilter, p services.ListParams) (*models.Page[models.FileView], error)
	update     func(ownerID, id string, in services.UpdateFileInput) (*models.FileView, error)
	del        func(ownerID, id string) error
	open       func(ownerID, id string) (*services.ContentStream, error)
	rename     func(ownerID, id, name string) (*models.FileView, error)
	duplicate  func(ownerID, id string) (*models.FileView, error)
	copy       func(ownerID, id, folderID string) (*models.FileView, error)
}

func (f *fakeFiles) Create(_ context.Context, ownerID string, in services.CreateFileInput) (*models.FileView, error) {
	return f.create(ownerID, in)
}

func (f *fakeFiles) Get(_ context.Context, ownerID, id string) (*models.FileView, error) {
	return f.get(ownerID, id)
}

func (f *fakeFiles) List(_ context.Context, ownerID string, filter services.FileListFilter, p services.ListParams) (*models.Page[models.FileView], error) {
	return f.list(ownerID, filter, p)
}

func (f *fakeFiles) ListByDate(_ context.Context, ownerID, date string, filter services.FileListFilter, p services.ListParams) (*models.Page[models.FileView], error) {
	return f.listByDate(ownerID, date, filter, p)
}

func (f *fakeFiles) Update(_ context.Context, ownerID, id string, in services.UpdateFileInput) (*models.FileView, error) {
	return f.update(ownerID, id, in)
}

func (f *fakeFiles) Delete(_ context.Context, ownerID, id string) error {
	return f.del(ownerID, id)
}

func (f *fakeFiles) OpenContent(_ context.Context, ownerID, id string) (*services.ContentStream, error) {
	return f.open(ownerID, id)
}

func (f *fakeFiles) Rename(_ context.Context, ownerID, id, name string) (*models.FileView, error) {
	return f.rename(ownerID, id, name)
}

func (f *fakeFiles) Duplicate(_ context.Context, ownerID, id string) (*models.FileView, error) {
	return f.duplicate(ownerID, id)
}

func (f *fakeFiles) Copy(_ context.Context, ownerID, id, folderID string) (*models.FileView, error) {
	return f.copy(ownerID, id, folderID)
}

type fakeFolders struct {
	folders map[string]*models.Folder
}

func (f *fakeFolders) Create(_ context.Context, ownerID string, in services.FolderInput) (*models.Folder, error) {
	if in.Name == "" {
		return nil, common.ErrorValidation
	}
	folder := &models.Folder{ID: "folder-1", Name: in.Name, OwnerID: ownerID, CreatedAt: t0, UpdatedAt: t0}
	f.folders[folder.ID] = folder
	return folder, nil
}

func (f *fakeFolders) List(_ context.Context, ownerID string, p services.ListParams) (*models.Page[*models.Folder], error) {
	page := &models.Page[*models.Folder]{Pagination: models.NewPagination(int64(len(f.folders)), 1, 10)}
	for _, folder := range f.folders {
		page.Data = append(page.Data, folder)
	}
	return page, nil
}

func (f *fakeFolders) Get(_ context.Context, ownerID, id string) (*models.Folder, error) {
	folder, ok := f.folders[id]
	if !ok || folder.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return folder, nil
}

func (f *fakeFolders) Update(ctx context.Context, ownerID, id string, in services.FolderInput) (*models.Folder, error) {
	folder, err := f.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	folder.Name = in.Name
	return folder, nil
}

func (f *fakeFolders) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := f.Get(ctx, ownerID, id); err != nil {
		return err
	}
	delete(f.folders, id)
	return nil
}

type fakeQuota struct{}

func (fakeQuota) Overview(context.Context, string) (*models.StorageOverview, error) {
	return &models.StorageOverview{
		TotalStorage:   models.Size{Bytes: services.TotalCapacity, HumanReadable: services.FormatBytes(services.TotalCapacity)},
		UsedSpace:      models.Size{Bytes: 0, HumanReadable: "0.00 B"},
		AvailableSpace: models.Size{Bytes: services.TotalCapacity, HumanReadable: services.FormatBytes(services.TotalCapacity)},
	}, nil
}

func (fakeQuota) Details(context.Context, string) (*models.StorageDetails, error) {
	return &models.StorageDetails{Files: []models.BlobUsage{}}, nil
}

type fakeShares struct {
	issuedBaseURL string
	issuedDays    *int
	views         map[string]*models.FileView
	blobs         map[string]string
}

func (f *fakeShares) Issue(_ context.Context, ownerID, fileID string, days *int, baseURL string) (*models.ShareResult, error) {
	f.issuedBaseURL, f.issuedDays = baseURL, days
	if fileID != "f1" {
		return nil, common.ErrorNotFound
	}
	return &models.ShareResult{ShareURL: strings.TrimRight(baseURL, "/") + "/files/share/tok", ExpiresAt: t0.AddDate(0, 0, 7)}, nil
}

func (f *fakeShares) Resolve(_ context.Context, token string) (*models.FileView, error) {
	v, ok := f.views[token]
	if !ok {
		return nil, errShareGone
	}
	return v, nil
}

func (f *fakeShares) OpenContent(_ context.Context, token string) (*services.ContentStream, error) {
	body, ok := f.blobs[token]
	if !ok {
		return nil, errShareGone
	}
	return stream(body, "images/x.png", int64(len(body))), nil
}

var errShareGone = fmt.Errorf("share link is invalid or expired: %w", common.ErrorNotFound)

type fakeAccounts struct{ purged []string }

func (f *fakeAccounts) Purge(_ context.Context, ownerID string) (*services.PurgeReport, error) {
	f.purged = append(f.purged, ownerID)
	return &services.PurgeReport{Blobs: 2, Files: 3, Folders: 1, ShareLinks: 1}, nil
}

type fixture struct {
	server   *HTTPServer
	handler  http.Handler
	files    *fakeFiles
	folders  *fakeFolders
	shares   *fakeShares
	accounts *fakeAccounts
	store    *recordingStore
	fs       afero.Fs
}

type recordingStore struct {
	blobstore.Store
	puts []string
}

func (r *recordingStore) Put(ctx context.Context, key string, body io.Reader) (int64, error) {
	r.puts = append(r.puts, key)
	return r.Store.Put(ctx, key, body)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MaxUploadSize = 1 << 20

	fs := afero.NewMemMapFs()
	fx := &fixture{
		files:    &fakeFiles{},
		folders:  &fakeFolders{folders: map[string]*models.Folder{}},
		shares:   &fakeShares{views: map[string]*models.FileView{}, blobs: map[string]string{}},
		accounts: &fakeAccounts{},
		store:    &recordingStore{Store: blobstore.NewFSStore(fs)},
		fs:       fs,
	}
	fx.server = NewHTTPServer(cfg, logging.Nop{}, Deps{
		Files:     fx.files,
		Folders:   fx.folders,
		Quota:     fakeQuota{},
		Shares:    fx.shares,
		Accounts:  fx.accounts,
		Validator: fakeValidator{},
		Store:     fx.store,
		Clock:     testclock.NewClock(t0),
	})
	fx.handler = fx.server.Handler()
	return fx
}

func (fx *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

type nopCloser struct{ *strings.Reader }

func (nopCloser) Close() error { return nil }

func stream(body, key string, size int64) *services.ContentStream {
	return &services.ContentStream{ReadCloser: nopCloser{strings.NewReader(body)}, Key: key, Size: size}
}
