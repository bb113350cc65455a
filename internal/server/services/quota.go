package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

// TotalCapacity is the fixed per-owner storage allowance (15 GiB).
const TotalCapacity int64 = 15 << 30

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n in binary units with two decimals, e.g. "1.50 KB".
func FormatBytes(n int64) string {
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}

func newSize(n int64) models.Size {
	return models.Size{Bytes: n, HumanReadable: FormatBytes(n)}
}

// QuotaService recomputes storage usage from scratch on every call: blob
// sizes come from the byte store, document sizes from their UTF-8 length.
type QuotaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       blobstore.Store
	logger      logging.Logger
}

func NewQuotaService(db *sql.DB, m repomanager.RepositoryManager, store blobstore.Store, logger logging.Logger) *QuotaService {
	return &QuotaService{db: db, repomanager: m, store: store, logger: logger.With("module", "quota")}
}

// blobSize stats a binary file. Unreadable blobs are logged and reported
// as not ok so callers skip them.
func (s *QuotaService) blobSize(ctx context.Context, f *models.File) (int64, bool) {
	key := f.BlobLocation()
	if key == "" {
		return 0, false
	}
	n, err := s.store.Stat(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "skipping unreadable blob", "file_id", f.ID, "key", key, "error", err)
		return 0, false
	}
	return n, true
}

func (s *QuotaService) Overview(ctx context.Context, ownerID string) (*models.StorageOverview, error) {
	files, err := s.repomanager.Files(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var used int64
	for _, f := range files {
		switch c := f.Content.(type) {
		case models.Document:
			// len of a Go string is its UTF-8 byte length.
			used += int64(len(c.Text))
		case models.Blob:
			if n, ok := s.blobSize(ctx, f); ok {
				used += n
			}
		}
	}

	s.logger.Debug(ctx, "storage overview", "owner_id", ownerID, "files", len(files), "used", humanize.IBytes(uint64(max(used, 0))))
	return &models.StorageOverview{
		TotalStorage:   newSize(TotalCapacity),
		UsedSpace:      newSize(used),
		AvailableSpace: newSize(TotalCapacity - used),
	}, nil
}

// Details lists every readable pdf and image with its byte-store key.
func (s *QuotaService) Details(ctx context.Context, ownerID string) (*models.StorageDetails, error) {
	files, err := s.repomanager.Files(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	details := &models.StorageDetails{Files: make([]models.BlobUsage, 0)}
	var used int64
	for _, f := range files {
		if !f.Type.IsBinary() {
			continue
		}
		n, ok := s.blobSize(ctx, f)
		if !ok {
			continue
		}
		used += n
		details.Files = append(details.Files, models.BlobUsage{
			ID:        f.ID,
			Name:      f.Name,
			Type:      f.Type,
			Size:      newSize(n),
			Path:      f.BlobLocation(),
			CreatedAt: f.CreatedAt,
		})
	}
	details.TotalUsedSpace = newSize(used)
	return details, nil
}
