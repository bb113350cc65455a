package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

type folderRequest struct {
	Name string `json:"name"`
}

func (s *HTTPServer) createFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req folderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	folder, err := s.deps.Folders.Create(ctx, ownerFrom(ctx), services.FolderInput{Name: req.Name})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusCreated, folder)
}

func (s *HTTPServer) listFolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := listParams(r.URL.Query())
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	page, err := s.deps.Folders.List(ctx, ownerFrom(ctx), p)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, page)
}

func (s *HTTPServer) getFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	folder, err := s.deps.Folders.Get(ctx, ownerFrom(ctx), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, folder)
}

func (s *HTTPServer) updateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req folderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	folder, err := s.deps.Folders.Update(ctx, ownerFrom(ctx), mux.Vars(r)["id"], services.FolderInput{Name: req.Name})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, folder)
}

func (s *HTTPServer) deleteFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.deps.Folders.Delete(ctx, ownerFrom(ctx), mux.Vars(r)["id"]); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
