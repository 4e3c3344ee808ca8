package api

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"restock/internal/importer"
	"restock/internal/service/calendar"
)

// Import loads products and consumption ratios for a week from an uploaded
// workbook, streaming progress as server-sent events.
// POST /api/weeks/:year/:week/import (multipart, field "file")
func (h *Handler) Import(c *gin.Context) {
	year, week, ok := paramWeek(c)
	if !ok {
		return
	}
	if !calendar.ValidWeek(year, week) {
		badRequest(c, "invalid week")
		return
	}

	uploaded, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "no file uploaded")
		return
	}

	if err := os.MkdirAll(h.opts.UploadDir, 0o755); err != nil {
		h.respondError(c, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}
	tempPath := filepath.Join(h.opts.UploadDir, fmt.Sprintf("restock_import_%s%s", uuid.NewString(), filepath.Ext(uploaded.Filename)))
	if err := c.SaveUploadedFile(uploaded, tempPath); err != nil {
		h.respondError(c, fmt.Errorf("failed to save upload: %w", err))
		return
	}
	defer os.Remove(tempPath)

	send, ok := startStream(c)
	if !ok {
		return
	}

	events := h.importer.Import(importer.ImportOptions{
		FilePath: tempPath,
		Filename: filepath.Base(uploaded.Filename),
		Year:     year,
		Week:     week,
	})
	for event := range events {
		send(event)
	}
}
