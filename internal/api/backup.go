package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"restock/internal/backup"
)

// Backup writes a snapshot of the store now.
// POST /api/backup
func (h *Handler) Backup(c *gin.Context) {
	if h.opts.BackupDir == "" {
		badRequest(c, "backups are not configured")
		return
	}

	path, err := backup.Write(h.store, h.opts.BackupDir, time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("backup written", "path", path)
	c.JSON(http.StatusCreated, gin.H{"path": path})
}
