package repository

import (
	"testing"

	"github.com/nimasrn/household-ledger/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entities lists every table of the ledger, in creation order.
var Entities = []any{
	&ProfileEntity{},
	&PaymentTypeEntity{},
	&CreditCardEntity{},
	&CategoryEntity{},
	&PayableEntity{},
	&ReceivableEntity{},
	&CardTransactionEntity{},
	&PiggyBankEntryEntity{},
}

// OpenTestDB returns an in-memory sqlite database with every ledger table.
func OpenTestDB(t testing.TB) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// one connection, or every new one would see its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Entities...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return pg.Wrap(db)
}
