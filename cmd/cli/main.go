package main

import (
	"os"
	"strings"

	"github.com/nimasrn/household-ledger/internal/config"
	"github.com/nimasrn/household-ledger/migrations"
	"github.com/nimasrn/household-ledger/pkg/logger"
	"github.com/nimasrn/household-ledger/pkg/pg"
)

// main applies the embedded migrations: cli [--env=path]
func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
		SSLMode:  config.Get().PostgresSSLMode,
	}
	if err = pg.Migrate(pgConf, migrations.FS); err != nil {
		logger.Error("migration: error running migrations", "error", err)
		os.Exit(1)
	}
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Stat(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Stat(".env"); err != nil {
		return ""
	}
	return ".env"
}
