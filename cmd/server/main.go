package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmedina/go-tienda/internal/config"
	"github.com/rmedina/go-tienda/internal/db"
	"github.com/rmedina/go-tienda/internal/server"

	"github.com/joho/godotenv"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()
	log := config.NewLogger(cfg)

	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(cfg.DatabaseDSN, log); err != nil {
			log.WithError(err).Fatal("migrate-only failed")
		}
		log.Info("migrations completed; exiting as requested")
		return
	}

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.WithField("env", cfg.Env).WithField("port", cfg.Port).Info("starting server")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(dbConn, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("error during shutdown")
	}
	log.Info("server gracefully stopped")
}
