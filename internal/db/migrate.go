package db

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rmedina/go-tienda/internal/config"
	"github.com/rmedina/go-tienda/internal/models"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models in dependency order; referenced tables first.
func allModels() []interface{} {
	return []interface{}{
		&models.Category{}, &models.Supplier{}, &models.Customer{}, &models.Employee{},
		&models.Product{}, &models.Sale{}, &models.SaleLine{}, &models.InventoryMovement{},
	}
}

func ConnectAndMigrate(rawDSN string, log *logrus.Logger) (*gorm.DB, error) {
	dsn := NormalizeDSN(rawDSN)
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty; check the environment configuration")
	}
	var db *gorm.DB
	var err error
	logLevel := logger.Silent
	if config.ParseBool("DB_DEBUG", false) {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.WithError(err).Warn("retrying DB connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	log.WithField("dsn", maskDSN(dsn)).Info("database connected")

	// MIGRATIONS=1 runs SQL migrations via golang-migrate; otherwise AutoMigrate
	// keeps the schema in sync (dev convenience).
	if config.ParseBool("MIGRATIONS", false) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range allModels() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// Sanity check: core tables must exist after migration.
	for _, table := range []string{"products", "sales", "sale_lines", "inventory_movements"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	// Seeding only when explicitly requested (e.g. development) via DB_SEED=1|true.
	if config.ParseBool("DB_SEED", false) {
		seed(db)
	}
	return db, nil
}

func maskDSN(dsn string) string {
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	if u := regexp.MustCompile(`(postgres(?:ql)?://[^:/]+:)[^@]+@`); u.MatchString(masked) {
		masked = u.ReplaceAllString(masked, `${1}***@`)
	}
	return masked
}

func seed(db *gorm.DB) {
	baseCategories := []models.Category{
		{Name: "Abarrotes", Active: true},
		{Name: "Bebidas", Active: true},
		{Name: "Limpieza", Active: true},
	}
	for _, c := range baseCategories {
		var existing models.Category
		if err := db.Where("name = ?", c.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			db.Create(&c)
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate's
// file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", ToURLDSN(dsn))
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
