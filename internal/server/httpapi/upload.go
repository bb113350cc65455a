package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

const (
	uploadDirDocuments = "documents"
	uploadDirImages    = "images"
	maxStoredNameLen   = 100
)

var (
	errUnsupportedUpload = fmt.Errorf("%w: only pdf and image files are allowed", common.ErrorValidation)
	errDocumentWithFile  = fmt.Errorf("%w: documents cannot carry an uploaded file", common.ErrorValidation)
)

// handleUpload reads the multipart create-file form, writes any attached
// file to the byte store and hands the result to the catalog. The blob is
// removed again when the catalog rejects the file.
func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request, ownerID string) (*models.FileView, error) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", common.ErrorValidation, tooBig.Limit)
		}
		return nil, fmt.Errorf("%w: expected a multipart form: %v", common.ErrorValidation, err)
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Warn(ctx, "error removing multipart temp files", "error", err)
		}
	}()

	in := services.CreateFileInput{
		Name:     r.FormValue("name"),
		Type:     models.FileType(r.FormValue("type")),
		FolderID: formString(r, "folderId"),
		Content:  formString(r, "content"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return nil, fmt.Errorf("%w: reading file part: %v", common.ErrorValidation, err)
	default:
		defer file.Close()
		if in.Type == models.FileTypeDocument {
			return nil, errDocumentWithFile
		}
		upload, err := s.storeUpload(ctx, file, header)
		if err != nil {
			return nil, err
		}
		in.Upload = upload
		if in.Name == "" {
			in.Name = header.Filename
		}
	}

	view, err := s.deps.Files.Create(ctx, ownerID, in)
	if err != nil {
		if in.Upload != nil {
			if derr := s.deps.Store.Delete(ctx, in.Upload.Location); derr != nil {
				s.logger.Warn(ctx, "error removing rejected upload", "key", in.Upload.Location, "error", derr)
			}
		}
		return nil, err
	}
	return view, nil
}

func formString(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := r.FormValue(key)
	return &v
}

// storeUpload sniffs the payload, rejects anything but pdf and images and
// writes it under documents/ or images/.
func (s *HTTPServer) storeUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*services.Upload, error) {
	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", common.ErrorValidation, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error rewinding upload: %w", err)
	}

	var dir string
	switch {
	case mt.Is("application/pdf"):
		dir = uploadDirDocuments
	case strings.HasPrefix(mt.String(), "image/"):
		dir = uploadDirImages
	default:
		return nil, errUnsupportedUpload
	}

	key, err := s.uploadKey(dir, header.Filename, mt.Extension())
	if err != nil {
		return nil, err
	}

	n, err := s.deps.Store.Put(ctx, key, file)
	if err != nil {
		return nil, fmt.Errorf("%w: error storing upload: %v", common.ErrorStorageIO, err)
	}
	s.logger.Debug(ctx, "upload stored", "key", key, "bytes", n, "mime", mt.String())

	return &services.Upload{Location: key, MIME: mt.String()}, nil
}

// uploadKey builds "<dir>/<unix-ms>-<random>-<name>".
func (s *HTTPServer) uploadKey(dir, filename, ext string) (string, error) {
	rnd, err := common.MakeRandHexString(4)
	if err != nil {
		return "", fmt.Errorf("error generating upload key: %w", err)
	}
	name := storedName(filename)
	if name == "" {
		name = "upload" + ext
	}
	return fmt.Sprintf("%s/%d-%s-%s", dir, s.deps.Clock.Now().UnixMilli(), rnd, name), nil
}

// storedName keeps the last path element of filename and replaces anything
// outside [A-Za-z0-9._-] with an underscore.
func storedName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if len(clean) > maxStoredNameLen {
		clean = clean[len(clean)-maxStoredNameLen:]
	}
	return clean
}
