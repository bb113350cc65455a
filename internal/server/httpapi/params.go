package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

const maxJSONBody = 1 << 20

func queryInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", common.ErrorValidation, key)
	}
	return n, nil
}

func queryBool(q url.Values, key string) (*bool, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", common.ErrorValidation, key)
	}
	return &b, nil
}

func queryString(q url.Values, key string) *string {
	if v := q.Get(key); v != "" {
		return &v
	}
	return nil
}

func listParams(q url.Values) (services.ListParams, error) {
	page, err := queryInt(q, "page")
	if err != nil {
		return services.ListParams{}, err
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		return services.ListParams{}, err
	}
	return services.ListParams{
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Page:      page,
		Limit:     limit,
	}, nil
}

func fileListFilter(q url.Values) (services.FileListFilter, error) {
	fav, err := queryBool(q, "isFavorite")
	if err != nil {
		return services.FileListFilter{}, err
	}
	return services.FileListFilter{FolderID: queryString(q, "folderId"), IsFavorite: fav}, nil
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: malformed JSON body: %v", common.ErrorValidation, err)
}

// baseURL is the prefix for share URLs: the configured public URL, or the
// scheme and host the request arrived on.
func (s *HTTPServer) baseURL(r *http.Request) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}
