package repomanager

import (
	"context"
	"database/sql"

	"github.com/quickbyte/quickbyte-auth/internal/dbx"
	"github.com/quickbyte/quickbyte-auth/internal/server/repositories/resettokens"
	"github.com/quickbyte/quickbyte-auth/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the pool or a
// transaction handle, so services can run multi-repo units of work inside
// dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
