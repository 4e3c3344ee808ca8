package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"restock/internal/exporter"
)

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Export writes the week's plan as an xlsx attachment.
// GET /api/weeks/:year/:week/export?hidden=true
func (h *Handler) Export(c *gin.Context) {
	year, week, ok := paramWeek(c)
	if !ok {
		return
	}

	file, err := h.exporter.Export(exporter.ExportOptions{
		Year:          year,
		Week:          week,
		IncludeHidden: queryBool(c, "hidden"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", exporter.ContentDisposition(exporter.Filename(year, week)))
	c.Header("Content-Type", exporter.ContentType)
	c.Status(http.StatusOK)
	if err := file.Write(c.Writer); err != nil {
		h.log.Error("failed to write export", "year", year, "week", week, "error", err)
	}
}

// ExportStream builds the export while streaming progress, then hands out
// a one-shot download url.
// POST /api/weeks/:year/:week/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	year, week, ok := paramWeek(c)
	if !ok {
		return
	}
	includeHidden := queryBool(c, "hidden")

	send, ok := startStream(c)
	if !ok {
		return
	}
	event := func(typ, message string, data interface{}) {
		send(exportProgressEvent{Type: typ, Message: message, Data: data, Timestamp: time.Now()})
	}

	event("start", "export started", gin.H{"year": year, "week": week})

	lastPercent := -1
	file, err := h.exporter.Export(exporter.ExportOptions{
		Year:          year,
		Week:          week,
		IncludeHidden: includeHidden,
		Progress: func(p exporter.ProgressEvent) {
			if p.Percent == lastPercent {
				return
			}
			lastPercent = p.Percent
			event("progress", p.Stage, gin.H{"percent": p.Percent})
		},
	})
	if err != nil {
		event("error", "export failed: "+err.Error(), gin.H{})
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.opts.ExportDir, 0o755); err != nil {
		event("error", "export failed: "+err.Error(), gin.H{})
		return
	}
	path := filepath.Join(h.opts.ExportDir, fmt.Sprintf("restock_export_%d_%d.xlsx", time.Now().UnixNano(), os.Getpid()))
	if err := file.SaveAs(path); err != nil {
		_ = os.Remove(path)
		event("error", "failed to write export file: "+err.Error(), gin.H{})
		return
	}

	token := h.downloads.put(path, year, week, exportTTL)
	event("done", "export finished", gin.H{
		"percent":     100,
		"downloadUrl": "/api/export/download/" + token,
	})
}

// DownloadExport serves a streamed export once, then removes it.
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "export file not found"})
		return
	}

	c.Header("Content-Disposition", exporter.ContentDisposition(exporter.Filename(item.year, item.week)))
	c.Header("Content-Type", exporter.ContentType)
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}
