package pg

import (
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/nimasrn/household-ledger/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found at the root of migrations.
func Migrate(cfg Config, migrations fs.FS) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = goose.Up(db, "."); err != nil {
		return err
	}

	version, err := goose.GetDBVersion(db)
	if err == nil {
		logger.Info("migrations applied", "version", version)
	}
	return nil
}
