package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

type updateFileRequest struct {
	Name       *string `json:"name"`
	Content    *string `json:"content"`
	IsFavorite *bool   `json:"isFavorite"`
}

type renameFileRequest struct {
	Name string `json:"name"`
}

type copyFileRequest struct {
	FolderID string `json:"folderId"`
}

func (s *HTTPServer) createFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := s.handleUpload(w, r, ownerFrom(ctx))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusCreated, view)
}

func (s *HTTPServer) listFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	p, err := listParams(q)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	filter, err := fileListFilter(q)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	page, err := s.deps.Files.List(ctx, ownerFrom(ctx), filter, p)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, page)
}

func (s *HTTPServer) listFilesByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	p, err := listParams(q)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	filter, err := fileListFilter(q)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	page, err := s.deps.Files.ListByDate(ctx, ownerFrom(ctx), q.Get("date"), filter, p)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, page)
}

func (s *HTTPServer) getFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := s.deps.Files.Get(ctx, ownerFrom(ctx), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, view)
}

func (s *HTTPServer) fileContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.streamContent(ctx, w, func() (*services.ContentStream, error) {
		return s.deps.Files.OpenContent(ctx, ownerFrom(ctx), mux.Vars(r)["id"])
	})
}

func (s *HTTPServer) updateFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateFileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	view, err := s.deps.Files.Update(ctx, ownerFrom(ctx), mux.Vars(r)["id"], services.UpdateFileInput{
		Name:       req.Name,
		Content:    req.Content,
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, view)
}

func (s *HTTPServer) renameFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req renameFileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	view, err := s.deps.Files.Rename(ctx, ownerFrom(ctx), mux.Vars(r)["id"], req.Name)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, view)
}

func (s *HTTPServer) duplicateFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := s.deps.Files.Duplicate(ctx, ownerFrom(ctx), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusCreated, view)
}

func (s *HTTPServer) copyFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req copyFileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	view, err := s.deps.Files.Copy(ctx, ownerFrom(ctx), mux.Vars(r)["id"], req.FolderID)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusCreated, view)
}

func (s *HTTPServer) deleteFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.deps.Files.Delete(ctx, ownerFrom(ctx), mux.Vars(r)["id"]); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) storageOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	overview, err := s.deps.Quota.Overview(ctx, ownerFrom(ctx))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, overview)
}

func (s *HTTPServer) storageDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	details, err := s.deps.Quota.Details(ctx, ownerFrom(ctx))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, details)
}

func (s *HTTPServer) purgeAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := s.deps.Accounts.Purge(ctx, ownerFrom(ctx))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, report)
}
