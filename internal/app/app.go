package app

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"
	"koffa/internal/config"
	"koffa/internal/db"
	familydomain "koffa/internal/domain/family"
	invitationdomain "koffa/internal/domain/invitation"
	profiledomain "koffa/internal/domain/profile"
	settingsdomain "koffa/internal/domain/settings"
	"koffa/internal/notify"
	"koffa/internal/repository/inmemory"
	familyrepo "koffa/internal/repository/postgres/family"
	invitationrepo "koffa/internal/repository/postgres/invitation"
	profilerepo "koffa/internal/repository/postgres/profile"
	settingsrepo "koffa/internal/repository/postgres/settings"
	"koffa/internal/transport/httpserver"
	"koffa/internal/transport/httpserver/handler"
	"koffa/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	log        logger.Logger
}

func New(ctx context.Context, bootLog logger.Logger) (*App, error) {
	bootLog.Info("app: loading config")
	cfg, err := config.Load(bootLog)
	if err != nil {
		return nil, err
	}

	log := logger.NewFromConfig(cfg.Env, cfg.Log.Level, cfg.Log.Format)

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(dbConn, log); err != nil {
			closeDB(dbConn)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	sender, err := notify.NewSender(ctx, cfg.Email, cfg.AppBaseURL, log)
	if err != nil {
		closeDB(dbConn)
		return nil, err
	}

	log.Info("app: initializing router")
	router := NewRouter(cfg, dbConn, sender, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		log:        log,
	}, nil
}

// NewRouter wires repositories, services and handlers on top of dbConn.
func NewRouter(cfg config.Config, dbConn *gorm.DB, sender invitationdomain.Sender, log logger.Logger) http.Handler {
	profiles := profiledomain.NewService(profilerepo.NewPostgres(dbConn))

	families := familydomain.NewServiceWithConfig(familyrepo.NewPostgres(dbConn), familydomain.Config{
		PrecreateInvitation: cfg.Invitations.Precreate,
		InvitationTTL:       cfg.Invitations.TTL,
	})

	invitations := invitationdomain.NewServiceWithConfig(invitationrepo.NewPostgres(dbConn), invitationdomain.Config{
		TTL: cfg.Invitations.TTL,
	}, sender)

	var store settingsdomain.Store
	switch cfg.Settings.Store {
	case "memory":
		store = inmemory.NewSettingsStore()
	default:
		store = settingsrepo.NewPostgres(dbConn)
	}
	settings := settingsdomain.NewService(store, families)

	handlers := handler.New(profiles, families, invitations, settings, log)
	return httpserver.NewRouter(cfg, handlers, profiles, log)
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Logger() logger.Logger {
	return a.log
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(dbConn *gorm.DB) {
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
