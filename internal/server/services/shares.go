package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juju/clock"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/logging"
	"github.com/dmitrijs2005/gophdrive/internal/server/blobstore"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/repomanager"
)

const (
	DefaultShareDays = 7
	MinShareDays     = 1
	MaxShareDays     = 30

	shareTokenBytes = 24
)

// errShareNotFound is returned for unknown, expired and dangling tokens alike.
var errShareNotFound = fmt.Errorf("share link is invalid or expired: %w", common.ErrorNotFound)

var makeShareToken = func() (string, error) {
	return common.MakeRandToken(shareTokenBytes)
}

// ShareService issues and resolves public share links. Expiry is only ever
// evaluated on read; expired links stay in the store.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       blobstore.Store
	clock       clock.Clock
	logger      logging.Logger
}

func NewShareService(db *sql.DB, m repomanager.RepositoryManager, store blobstore.Store, clk clock.Clock, logger logging.Logger) *ShareService {
	return &ShareService{db: db, repomanager: m, store: store, clock: clk, logger: logger.With("module", "shares")}
}

// Issue creates a link to the owner's file valid for expiresInDays (default
// 7, 1..30). baseURL is the absolute prefix the share URL is built on.
func (s *ShareService) Issue(ctx context.Context, ownerID, fileID string, expiresInDays *int, baseURL string) (*models.ShareResult, error) {
	days := DefaultShareDays
	if expiresInDays != nil {
		days = *expiresInDays
	}
	if days < MinShareDays || days > MaxShareDays {
		return nil, validationError(fmt.Sprintf("expiration must be between %d and %d days", MinShareDays, MaxShareDays))
	}

	f, err := s.repomanager.Files(s.db).GetByID(ctx, ownerID, fileID)
	if err != nil {
		return nil, notFound("file", err)
	}

	token, err := makeShareToken()
	if err != nil {
		return nil, fmt.Errorf("error generating share token: %w", err)
	}
	now := s.clock.Now().UTC()
	link := &models.ShareLink{
		ID:        newID(),
		FileID:    f.ID,
		Token:     token,
		ExpiresAt: now.Add(time.Duration(days) * 24 * time.Hour),
		CreatedAt: now,
	}
	if err := s.repomanager.ShareLinks(s.db).Create(ctx, link); err != nil {
		return nil, fmt.Errorf("error saving share link: %w", err)
	}

	s.logger.Info(ctx, "share link issued", "file_id", f.ID, "expires_at", link.ExpiresAt)
	return &models.ShareResult{
		ShareURL:  strings.TrimRight(baseURL, "/") + "/files/share/" + token,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

func (s *ShareService) find(ctx context.Context, token string) (*models.SharedFile, error) {
	if token == "" {
		return nil, errShareNotFound
	}
	sf, err := s.repomanager.ShareLinks(s.db).FindActive(ctx, token, s.clock.Now().UTC())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errShareNotFound
		}
		return nil, err
	}
	return sf, nil
}

// Resolve returns the shared file with its content URL pointing at the
// public share endpoint.
func (s *ShareService) Resolve(ctx context.Context, token string) (*models.FileView, error) {
	sf, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}
	view := ResolveContent(&sf.File, ShareAccess(token))
	return &view, nil
}

// OpenContent streams the shared blob. Shared documents have no raw content.
func (s *ShareService) OpenContent(ctx context.Context, token string) (*ContentStream, error) {
	sf, err := s.find(ctx, token)
	if err != nil {
		return nil, err
	}
	stream, err := openBlob(ctx, s.store, &sf.File, "shared file")
	if errors.Is(err, common.ErrorNotFound) {
		return nil, errShareNotFound
	}
	return stream, err
}
