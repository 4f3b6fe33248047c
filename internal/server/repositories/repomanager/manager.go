package repomanager

import (
	"context"
	"database/sql"

	"github.com/Ak2k04/Life-Tracker/internal/dbx"
	"github.com/Ak2k04/Life-Tracker/internal/server/repositories/resetchallenges"
	"github.com/Ak2k04/Life-Tracker/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so a
// service can use the same repository code inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetChallenges(db dbx.DBTX) resetchallenges.Repository
}
