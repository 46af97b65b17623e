package repomanager

import (
	"context"
	"database/sql"

	"github.com/osenouci/tokenkeeper/internal/dbx"
	"github.com/osenouci/tokenkeeper/internal/server/repositories/credentials"
	"github.com/osenouci/tokenkeeper/internal/server/repositories/devices"
	"github.com/osenouci/tokenkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Devices(db dbx.DBTX) devices.Repository
}
