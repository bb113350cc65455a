package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophdrive/internal/dbx"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/folders"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gophdrive/internal/server/repositories/sharelinks"
)

// RepositoryManager vends repositories bound to a DBTX so services can use
// the same code path inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Folders(db dbx.DBTX) folders.Repository
	Files(db dbx.DBTX) files.Repository
	ShareLinks(db dbx.DBTX) sharelinks.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}
