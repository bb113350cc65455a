package httpapi

import (
	"bufio"
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/gophdrive/internal/server/services"
)

const sniffLen = 3072

// contentType sniffs the leading bytes, falling back to the key extension
// and then to a generic binary type.
func contentType(head []byte, key string) string {
	mt := mimetype.Detect(head)
	if mt.Is("application/octet-stream") {
		if byExt := mime.TypeByExtension(path.Ext(key)); byExt != "" {
			return byExt
		}
	}
	return mt.String()
}

// streamContent writes the blob returned by open as the raw response body.
func (s *HTTPServer) streamContent(ctx context.Context, w http.ResponseWriter, open func() (*services.ContentStream, error)) {
	stream, err := open()
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	defer stream.Close()

	br := bufio.NewReaderSize(stream, sniffLen)
	head, _ := br.Peek(sniffLen)

	w.Header().Set("Content-Type", contentType(head, stream.Key))
	if stream.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(stream.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if n, err := io.Copy(w, br); err != nil {
		s.logger.Warn(ctx, "content stream interrupted", "key", stream.Key, "written", n, "error", err)
	}
}
