// Package services contains the server-side storage and sharing logic:
// the file and folder catalog, byte store operations, quota accounting,
// share links and the owner purge. Every operation is scoped by owner.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdrive/internal/timex"
)

var newID = uuid.NewString

const copyPrefix = "Copy of "

// Upload describes a blob already written by the upload collaborator.
type Upload struct {
	Location string
	MIME     string
}

type CreateFileInput struct {
	Name     string          `validate:"required,max=255"`
	Type     models.FileType `validate:"required"`
	FolderID *string
	Content  *string
	Upload   *Upload
}

// UpdateFileInput is a partial update; nil fields are left untouched.
type UpdateFileInput struct {
	Name       *string `validate:"omitempty,max=255"`
	Content    *string
	IsFavorite *bool
}

type FileListFilter struct {
	FolderID   *string
	IsFavorite *bool
}

// ContentStream is an open blob handed to the transport for streaming.
type ContentStream struct {
	io.ReadCloser
	Name string
	Key  string
	// Size is -1 when the store could not report it.
	Size int64
}

// FileService implements the file catalog and byte store operations.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       blobstore.Store
	clock       clock.Clock
	logger      logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store blobstore.Store, clk clock.Clock, logger logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		store:       store,
		clock:       clk,
		logger:      logger.With("module", "files"),
	}
}

func (s *FileService) now() time.Time {
	return s.clock.Now().UTC()
}

// mimeMatches checks the declared type against the MIME type reported by
// the upload collaborator.
func mimeMatches(t models.FileType, mime string) bool {
	mime, _, _ = strings.Cut(strings.ToLower(strings.TrimSpace(mime)), ";")
	switch t {
	case models.FileTypePDF:
		return mime == "application/pdf"
	case models.FileTypeImage:
		return strings.HasPrefix(mime, "image/")
	}
	return false
}

// Create stores a new file. Documents need non-empty content; pdf and image
// files need an upload whose MIME type agrees with the declared type.
func (s *FileService) Create(ctx context.Context, ownerID string, in CreateFileInput) (*models.FileView, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, validationError("invalid file type")
	}

	var content models.Content
	if in.Type.IsBinary() {
		if in.Upload == nil || in.Upload.Location == "" {
			return nil, validationError("file is required for pdf and image types")
		}
		if !mimeMatches(in.Type, in.Upload.MIME) {
			return nil, validationError(fmt.Sprintf("uploaded %s does not match type %s", in.Upload.MIME, in.Type))
		}
		content = models.Blob{Location: in.Upload.Location}
	} else {
		if in.Upload != nil {
			return nil, validationError("documents cannot carry an uploaded file")
		}
		if in.Content == nil || *in.Content == "" {
			return nil, validationError("content is required for documents")
		}
		content = models.Document{Text: *in.Content}
	}

	now := s.now()
	f := &models.File{
		ID:        newID(),
		Name:      in.Name,
		Type:      in.Type,
		FolderID:  nonEmpty(in.FolderID),
		OwnerID:   ownerID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repomanager.Files(s.db).Create(ctx, f); err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	s.logger.Info(ctx, "file created", "file_id", f.ID, "owner_id", ownerID, "type", f.Type)
	view := ResolveContent(f, OwnerAccess())
	return &view, nil
}

func (s *FileService) get(ctx context.Context, ownerID, id string) (*models.File, error) {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, notFound("file", err)
	}
	return f, nil
}

func (s *FileService) Get(ctx context.Context, ownerID, id string) (*models.FileView, error) {
	f, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	view := ResolveContent(f, OwnerAccess())
	return &view, nil
}

func (s *FileService) list(ctx context.Context, ownerID string, filter models.FileFilter, p ListParams) (*models.Page[models.FileView], error) {
	q, err := p.query()
	if err != nil {
		return nil, err
	}
	files, total, err := s.repomanager.Files(s.db).List(ctx, ownerID, filter, q)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.FileView]{
		Data:       resolveAll(files, OwnerAccess()),
		Pagination: models.NewPagination(total, q.Page, q.Limit),
	}, nil
}

// List returns one page of the owner's files. Filtering by a folder that no
// longer exists yields an empty page.
func (s *FileService) List(ctx context.Context, ownerID string, filter FileListFilter, p ListParams) (*models.Page[models.FileView], error) {
	return s.list(ctx, ownerID, models.FileFilter{
		FolderID:   nonEmpty(filter.FolderID),
		IsFavorite: filter.IsFavorite,
	}, p)
}

// ListByDate is List restricted to files created on the UTC calendar day
// given as YYYY-MM-DD.
func (s *FileService) ListByDate(ctx context.Context, ownerID, date string, filter FileListFilter, p ListParams) (*models.Page[models.FileView], error) {
	if date == "" {
		return nil, validationError("date is required")
	}
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, validationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}
	from, to := timex.StartOfDay(day), timex.EndOfDay(day)

	return s.list(ctx, ownerID, models.FileFilter{
		FolderID:      nonEmpty(filter.FolderID),
		IsFavorite:    filter.IsFavorite,
		CreatedAfter:  &from,
		CreatedBefore: &to,
	}, p)
}

// Update applies a partial update. Content is only written on documents and
// ignored for binary files; an empty name is ignored.
func (s *FileService) Update(ctx context.Context, ownerID, id string, in UpdateFileInput) (*models.FileView, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	f, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != "" {
		f.Name = *in.Name
	}
	if in.Content != nil && f.Type == models.FileTypeDocument {
		f.Content = models.Document{Text: *in.Content}
	}
	if in.IsFavorite != nil {
		f.IsFavorite = *in.IsFavorite
	}
	f.UpdatedAt = s.now()

	if err := s.repomanager.Files(s.db).Update(ctx, f); err != nil {
		return nil, notFound("file", err)
	}
	view := ResolveContent(f, OwnerAccess())
	return &view, nil
}

// Delete removes the record and then its blob. A blob that is already gone
// is only logged; any other failure to remove it is reported after the
// record is gone.
func (s *FileService) Delete(ctx context.Context, ownerID, id string) error {
	f, err := s.repomanager.Files(s.db).Delete(ctx, ownerID, id)
	if err != nil {
		return notFound("file", err)
	}

	key := f.BlobLocation()
	if key == "" {
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			s.logger.Warn(ctx, "blob already missing", "file_id", f.ID, "key", key)
			return nil
		}
		s.logger.Error(ctx, "orphaned blob after file delete", "file_id", f.ID, "key", key, "error", err)
		return fmt.Errorf("%w: failed to delete file on disk: %v", common.ErrorStorageIO, err)
	}
	return nil
}

// OpenContent opens the blob of a pdf or image file for streaming.
func (s *FileService) OpenContent(ctx context.Context, ownerID, id string) (*ContentStream, error) {
	f, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return openBlob(ctx, s.store, f, "file")
}

func openBlob(ctx context.Context, store blobstore.Store, f *models.File, what string) (*ContentStream, error) {
	key := f.BlobLocation()
	if key == "" {
		return nil, fmt.Errorf("%s %w", what, common.ErrorNotFound)
	}
	rc, err := store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			return nil, fmt.Errorf("%s %w", what, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorStorageIO, err)
	}
	size, err := store.Stat(ctx, key)
	if err != nil {
		size = -1
	}
	return &ContentStream{ReadCloser: rc, Name: f.Name, Key: key, Size: size}, nil
}

// sanitizeName reduces a display name to one path element usable in a key.
func sanitizeName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	switch base {
	case "", ".", "..", "/":
		return "", validationError(fmt.Sprintf("%q cannot be used as a file name", name))
	}
	return base, nil
}

// Rename changes the display name. For blobs the key is re-derived from the
// new name in the same directory with the old extension, and the blob is
// moved before anything is persisted. A move failure leaves the record
// untouched; a persist failure moves the blob back.
func (s *FileService) Rename(ctx context.Context, ownerID, id, name string) (*models.FileView, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationError("new name is required")
	}
	f, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	oldKey := f.BlobLocation()
	newKey := oldKey
	if oldKey != "" {
		base, err := sanitizeName(name)
		if err != nil {
			return nil, err
		}
		newKey = path.Join(path.Dir(oldKey), base+path.Ext(oldKey))
		if newKey != oldKey {
			exists, err := s.store.Exists(ctx, newKey)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", common.ErrorStorageIO, err)
			}
			if exists {
				return nil, validationError(fmt.Sprintf("a file named %q already exists", path.Base(newKey)))
			}
			if err := s.store.Rename(ctx, oldKey, newKey); err != nil {
				return nil, fmt.Errorf("%w: failed to rename file on disk: %v", common.ErrorStorageIO, err)
			}
			f.Content = models.Blob{Location: newKey}
		}
	}

	f.Name = name
	f.UpdatedAt = s.now()
	if err := s.repomanager.Files(s.db).Update(ctx, f); err != nil {
		if newKey != oldKey {
			if rerr := s.store.Rename(ctx, newKey, oldKey); rerr != nil {
				s.logger.Error(ctx, "failed to restore blob after rename", "file_id", f.ID, "key", newKey, "error", rerr)
			}
		}
		return nil, notFound("file", err)
	}

	s.logger.Info(ctx, "file renamed", "file_id", f.ID, "key", newKey)
	view := ResolveContent(f, OwnerAccess())
	return &view, nil
}

// siblingKey returns a fresh key next to key, keeping its extension.
func (s *FileService) siblingKey(key string) (string, error) {
	suffix, err := common.MakeRandHexString(6)
	if err != nil {
		return "", err
	}
	return path.Join(path.Dir(key), fmt.Sprintf("%d-%s%s", s.clock.Now().UnixMilli(), suffix, path.Ext(key))), nil
}

// clone stores a copy of src under a new id with its own payload.
func (s *FileService) clone(ctx context.Context, src *models.File, name string, folderID *string) (*models.FileView, error) {
	now := s.now()
	f := &models.File{
		ID:        newID(),
		Name:      name,
		Type:      src.Type,
		FolderID:  folderID,
		OwnerID:   src.OwnerID,
		Content:   src.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var copied string
	if key := src.BlobLocation(); key != "" {
		dst, err := s.siblingKey(key)
		if err != nil {
			return nil, err
		}
		if err := s.store.Copy(ctx, key, dst); err != nil {
			return nil, fmt.Errorf("%w: failed to copy file on disk: %v", common.ErrorStorageIO, err)
		}
		copied = dst
		f.Content = models.Blob{Location: dst}
		if size, err := s.store.Stat(ctx, dst); err == nil {
			s.logger.Debug(ctx, "blob copied", "from", key, "to", dst, "size", humanize.IBytes(uint64(size)))
		}
	}

	if err := s.repomanager.Files(s.db).Create(ctx, f); err != nil {
		if copied != "" {
			if derr := s.store.Delete(ctx, copied); derr != nil {
				s.logger.Error(ctx, "failed to remove copied blob", "key", copied, "error", derr)
			}
		}
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	view := ResolveContent(f, OwnerAccess())
	return &view, nil
}

// Duplicate copies a file into the same folder as "Copy of <name>".
func (s *FileService) Duplicate(ctx context.Context, ownerID, id string) (*models.FileView, error) {
	src, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.clone(ctx, src, copyPrefix+src.Name, src.FolderID)
}

// Copy copies a file into another folder of the same owner.
func (s *FileService) Copy(ctx context.Context, ownerID, id, folderID string) (*models.FileView, error) {
	if folderID == "" {
		return nil, validationError("target folderId is required")
	}
	src, err := s.get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	folder, err := s.repomanager.Folders(s.db).GetByID(ctx, ownerID, folderID)
	if err != nil {
		return nil, notFound("target folder", err)
	}
	return s.clone(ctx, src, src.Name, &folder.ID)
}
