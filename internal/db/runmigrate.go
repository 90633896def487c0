package db

import (
	"github.com/rmedina/go-tienda/internal/config"

	"github.com/sirupsen/logrus"
)

// RunMigrations is a lightweight entry point for invoking SQL migrations from
// tooling or tests. It respects the MIGRATIONS env var just like ConnectAndMigrate.
func RunMigrations(log *logrus.Logger) error {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil
	}
	if !config.ParseBool("MIGRATIONS", false) {
		log.Info("MIGRATIONS not enabled; skipping sql migrations (AutoMigrate path used at app start)")
		return nil
	}
	log.Info("running explicit SQL migrations")
	return runSQLMigrations(dsn)
}
