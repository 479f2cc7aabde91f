package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/catalog"
	"github.com/praxislabs/execemy-backend/internal/db"
	"github.com/praxislabs/execemy-backend/internal/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Catalog  *catalog.Catalog
	Repos    Repos
	Services Services
	clients  Clients
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	cat, err := catalog.Load()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients := wireClients(log)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, cat, reposet, clients)
	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(handlerset, middleware)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Catalog:  cat,
		Repos:    reposet,
		Services: serviceset,
		clients:  clients,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.clients.Popularity != nil {
		if err := a.clients.Popularity.Close(); err != nil {
			a.Log.Warn("Failed to close popularity store", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
