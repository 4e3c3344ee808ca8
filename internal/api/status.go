package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"restock/internal/model"
	"restock/internal/service/calendar"
)

// StatusResponse describes the state of the tool.
type StatusResponse struct {
	Initialized   bool             `json:"initialized"` // products were imported
	CurrentYear   int              `json:"currentYear"`
	CurrentWeek   int              `json:"currentWeek"`
	WeekSelected  bool             `json:"weekSelected"`
	TotalProducts int              `json:"totalProducts"`
	Database      string           `json:"database"`
	LastImport    *model.ImportLog `json:"lastImport,omitempty"`
}

// GetStatus returns the selected week and store statistics. Without a
// selection the current ISO week is reported.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	year, week, selected, err := h.store.GetCurrentWeek()
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !selected {
		year, week = calendar.CurrentWeek(time.Now())
	}

	count, err := h.store.CountProducts()
	if err != nil {
		h.respondError(c, err)
		return
	}

	last, err := h.store.LastImportLog()
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:   count > 0,
		CurrentYear:   year,
		CurrentWeek:   week,
		WeekSelected:  selected,
		TotalProducts: count,
		Database:      string(h.store.Dialect()),
		LastImport:    last,
	})
}

type selectWeekRequest struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// SelectWeek stores the week the UI works on.
// POST /api/weeks/select
func (h *Handler) SelectWeek(c *gin.Context) {
	var req selectWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if !calendar.ValidWeek(req.Year, req.Week) {
		badRequest(c, "invalid week")
		return
	}

	if err := h.store.SetCurrentWeek(req.Year, req.Week); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": req.Year, "week": req.Week})
}
