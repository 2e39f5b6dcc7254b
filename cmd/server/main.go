// Command server runs the Relato CRM API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	app "github.com/relato-crm/relato/internal/app"
	"github.com/relato-crm/relato/internal/app/auth"
	"github.com/relato-crm/relato/internal/app/httpapi"
	"github.com/relato-crm/relato/internal/app/storage/postgres"
	"github.com/relato-crm/relato/internal/config"
	"github.com/relato-crm/relato/internal/platform/database"
	"github.com/relato-crm/relato/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	stores := app.Stores{}
	if cfg.Database.DSN != "" {
		db, err := database.Open(cfg.Database.DSN)
		if err != nil {
			log.WithError(err).Fatalf("database connect failed")
		}
		defer db.Close()
		if err := database.Migrate(db.DB); err != nil {
			log.WithError(err).Fatalf("database migrate failed")
		}
		store := postgres.New(db)
		stores = app.Stores{
			Users:      store,
			Companies:  store,
			Contacts:   store,
			Deals:      store,
			Activities: store,
		}
		log.Info("using postgres store")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
	}

	tokens := auth.NewManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)
	application := app.New(stores, tokens, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpapi.New(application, cfg.AllowedOrigins, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatalf("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown incomplete")
	}
}
