// Package server wires the store, the API handler and the gin engine.
package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"restock/internal/api"
	"restock/internal/backup"
	"restock/internal/config"
	"restock/internal/logger"
	"restock/internal/parser"
	"restock/internal/store"
)

// devFrontend serves the UI while developing.
const devFrontend = "http://localhost:5173"

// Server is the HTTP server.
type Server struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	store   *store.Store
	api     *api.Handler
	dataDir string
	log     *logger.Logger
}

// NewServer opens the configured store and builds the router.
func NewServer(cfg *config.AppConfig, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Discard()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	st, err := openStore(cfg, dataDir)
	if err != nil {
		return nil, err
	}

	handler := api.NewHandler(st, api.Options{
		UploadDir: filepath.Join(dataDir, "uploads"),
		ExportDir: filepath.Join(dataDir, "exports"),
		BackupDir: filepath.Join(dataDir, "backups"),
		Columns:   importColumns(cfg.Import),
		Logger:    log,
	})

	s := &Server{
		cfg:     cfg,
		router:  gin.New(),
		store:   st,
		api:     handler,
		dataDir: dataDir,
		log:     log.WithComponent("server"),
	}
	s.setupRoutes(log)

	s.log.Info("server ready", "driver", st.Dialect(), "data_dir", dataDir)
	return s, nil
}

func openStore(cfg *config.AppConfig, dataDir string) (*store.Store, error) {
	driver := cfg.Database.Driver
	if driver == "" || driver == string(store.SQLite) {
		if cfg.Database.DSN == "" {
			return store.New(filepath.Join(dataDir, "restock.db"))
		}
		driver = string(store.SQLite)
	}
	st, err := store.Open(driver, config.DatabaseDSN(cfg, dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}
	return st, nil
}

func importColumns(ic config.ImportConfig) parser.Columns {
	return parser.Columns{
		DestinationCode: ic.DestinationCodeColumn,
		Reference:       ic.ReferenceColumn,
		Name:            ic.NameColumn,
		StockUnit:       ic.StockUnitColumn,
		Consumption:     ic.ConsumptionColumn,
	}
}

func (s *Server) setupRoutes(log *logger.Logger) {
	s.router.Use(gin.Recovery())
	s.router.Use(log.GinMiddleware())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.api.RegisterRoutes(s.router.Group("/api"))

	s.router.NoRoute(func(c *gin.Context) {
		if s.cfg.Server.DevMode && c.Request.Method == http.MethodGet {
			c.Redirect(http.StatusTemporaryRedirect, devFrontend+c.Request.URL.Path)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// SaveNow writes a backup when auto backups are enabled. The database
// itself is always up to date.
func (s *Server) SaveNow() error {
	if !s.cfg.Data.AutoBackup {
		return nil
	}
	path, err := backup.Write(s.store, filepath.Join(s.dataDir, "backups"), time.Now())
	if err != nil {
		return err
	}
	s.log.Info("backup written", "path", path)
	return nil
}

// Close closes the store.
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore returns the store, for tests.
func (s *Server) GetStore() *store.Store {
	return s.store
}
