package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// observeMiddleware records metrics and writes one access log line per request.
func (s *HTTPServer) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.deps.Clock.Now()
		rec := &statusRecorder{ResponseWriter: w}

		s.metrics.inFlight.Inc()
		defer s.metrics.inFlight.Dec()

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := routeTemplate(r)
		elapsed := s.deps.Clock.Now().Sub(start)
		s.metrics.observe(r.Method, route, rec.status, elapsed)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", elapsed.String(),
		)
	})
}

// recoverMiddleware turns a handler panic into the generic 500 response.
func (s *HTTPServer) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.writeError(r.Context(), w, fmt.Errorf("%w: panic: %v", common.ErrorInternal, v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	n := len(common.BearerPrefix)
	if len(h) > n && strings.EqualFold(h[:n], common.BearerPrefix) {
		return strings.TrimSpace(h[n:])
	}
	return ""
}

// authenticated resolves the bearer token to an owner id and stores it in
// the request context. Share endpoints are registered without it.
func (s *HTTPServer) authenticated(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := s.deps.Validator.Validate(r.Context(), bearerToken(r))
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
		h(w, r.WithContext(withOwner(r.Context(), ownerID)))
	})
}
