// Package api exposes the planner, the stores and the spreadsheet tools
// over HTTP.
package api

import (
	"os"

	"github.com/gin-gonic/gin"
	"restock/internal/exporter"
	"restock/internal/importer"
	"restock/internal/logger"
	"restock/internal/parser"
	"restock/internal/service/planner"
	"restock/internal/store"
)

// Options configures a Handler.
type Options struct {
	UploadDir string // where uploaded workbooks are staged
	ExportDir string // where streamed exports wait for download
	BackupDir string
	Columns   parser.Columns
	Logger    *logger.Logger
}

// Handler serves the /api routes.
type Handler struct {
	store     *store.Store
	planner   *planner.Planner
	importer  *importer.Coordinator
	exporter  *exporter.Exporter
	downloads *exportDownloadStore
	opts      Options
	log       *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(st *store.Store, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.UploadDir == "" {
		opts.UploadDir = os.TempDir()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = os.TempDir()
	}

	p := planner.New(st, opts.Logger)
	return &Handler{
		store:     st,
		planner:   p,
		importer:  importer.NewCoordinator(st, opts.Columns, opts.Logger),
		exporter:  exporter.NewExporter(p),
		downloads: newExportDownloadStore(),
		opts:      opts,
		log:       opts.Logger.WithComponent("api"),
	}
}

// RegisterRoutes registers the API routes on router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.POST("/weeks/select", h.SelectWeek)

	// calendar
	router.GET("/calendar/weeks", h.ListWeeksInMonth)
	router.GET("/calendar/:year/:week", h.GetCalendarWeek)

	// weeks
	router.GET("/weeks/:year/:week", h.OpenWeek)
	router.PATCH("/weeks/:year/:week/forecast", h.SetForecast)
	router.GET("/weeks/:year/:week/plan", h.GetPlan)
	router.GET("/weeks/:year/:week/export", h.Export)
	router.POST("/weeks/:year/:week/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)
	router.POST("/weeks/:year/:week/import", h.Import)

	// orders
	router.PATCH("/orders/:id/stock", h.UpdateStock)
	router.PATCH("/orders/:id/quantity", h.UpdateQuantity)

	// products
	router.GET("/products", h.ListProducts)
	router.PATCH("/products/:id", h.UpdateProduct)
	router.POST("/products/:id/visibility", h.SetVisibility)
	router.PUT("/products/:id/conversion", h.SetConversion)
	router.DELETE("/products/:id", h.DeleteProduct)

	// categories
	router.GET("/categories", h.ListCategories)
	router.POST("/categories", h.CreateCategory)
	router.PATCH("/categories/:id", h.RenameCategory)
	router.DELETE("/categories/:id", h.DeleteCategory)

	router.POST("/backup", h.Backup)
}

// Planner returns the planner the handler drives.
func (h *Handler) Planner() *planner.Planner {
	return h.planner
}
