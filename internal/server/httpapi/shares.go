package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

type shareFileRequest struct {
	ExpiresInDays *int `json:"expiresInDays"`
}

func (s *HTTPServer) shareFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req shareFileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	res, err := s.deps.Shares.Issue(ctx, ownerFrom(ctx), mux.Vars(r)["id"], req.ExpiresInDays, s.baseURL(r))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, res)
}

func (s *HTTPServer) resolveShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := s.deps.Shares.Resolve(ctx, mux.Vars(r)["token"])
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, view)
}

func (s *HTTPServer) shareContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.streamContent(ctx, w, func() (*services.ContentStream, error) {
		return s.deps.Shares.OpenContent(ctx, mux.Vars(r)["token"])
	})
}
