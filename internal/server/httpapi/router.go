package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes builds the router. Fixed /files paths and the public share paths
// are registered before /files/{id} so they are not captured as ids.
func (s *HTTPServer) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.observeMiddleware)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Public.
	r.HandleFunc("/files/share/{token}", s.resolveShare).Methods(http.MethodGet)
	r.HandleFunc("/files/share/{token}/content", s.shareContent).Methods(http.MethodGet)

	r.Handle("/files", s.authenticated(s.createFile)).Methods(http.MethodPost)
	r.Handle("/files", s.authenticated(s.listFiles)).Methods(http.MethodGet)
	r.Handle("/files/by-date", s.authenticated(s.listFilesByDate)).Methods(http.MethodGet)
	r.Handle("/files/overview", s.authenticated(s.storageOverview)).Methods(http.MethodGet)
	r.Handle("/files/storage-details", s.authenticated(s.storageDetails)).Methods(http.MethodGet)
	r.Handle("/files/{id}", s.authenticated(s.getFile)).Methods(http.MethodGet)
	r.Handle("/files/{id}", s.authenticated(s.updateFile)).Methods(http.MethodPut)
	r.Handle("/files/{id}", s.authenticated(s.deleteFile)).Methods(http.MethodDelete)
	r.Handle("/files/{id}/content", s.authenticated(s.fileContent)).Methods(http.MethodGet)
	r.Handle("/files/{id}/rename", s.authenticated(s.renameFile)).Methods(http.MethodPut)
	r.Handle("/files/{id}/duplicate", s.authenticated(s.duplicateFile)).Methods(http.MethodPost)
	r.Handle("/files/{id}/copy", s.authenticated(s.copyFile)).Methods(http.MethodPost)
	r.Handle("/files/{id}/share", s.authenticated(s.shareFile)).Methods(http.MethodPost)

	r.Handle("/folders", s.authenticated(s.createFolder)).Methods(http.MethodPost)
	r.Handle("/folders", s.authenticated(s.listFolders)).Methods(http.MethodGet)
	r.Handle("/folders/{id}", s.authenticated(s.getFolder)).Methods(http.MethodGet)
	r.Handle("/folders/{id}", s.authenticated(s.updateFolder)).Methods(http.MethodPut)
	r.Handle("/folders/{id}", s.authenticated(s.deleteFolder)).Methods(http.MethodDelete)

	r.Handle("/account", s.authenticated(s.purgeAccount)).Methods(http.MethodDelete)

	return r
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "OK"})
}
