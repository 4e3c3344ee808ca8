package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"restock/internal/service/planner"
)

// OpenWeek returns a week with its orders, creating them on first access.
// GET /api/weeks/:year/:week
func (h *Handler) OpenWeek(c *gin.Context) {
	year, week, ok := paramWeek(c)
	if !ok {
		return
	}

	wk, err := h.planner.OpenWeek(year, week)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wk)
}

type forecastRequest struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// SetForecast records one day of sales forecast.
// PATCH /api/weeks/:year/:week/forecast
func (h *Handler) SetForecast(c *gin.Context) {
	year, week, ok := paramWeek(c)
	if !ok {
		return
	}

	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		badRequest(c, "date and value are required")
		return
	}

	w, err := h.planner.SetSalesForecast(year, week, strings.TrimSpace(req.Date), *req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// GetPlan computes the needs of every order of the week.
// Query: q (search), hidden (include hidden products), sort, desc, persist.
// GET /api/weeks/:year/:week/plan
func (h *Handler) GetPlan(c *gin.Context) {
	year, week, ok := paramWeek(c)
	if !ok {
		return
	}

	plan, err := h.planner.Plan(year, week, planner.PlanOptions{
		Search:        c.Query("q"),
		IncludeHidden: queryBool(c, "hidden"),
		SortBy:        c.Query("sort"),
		Descending:    queryBool(c, "desc"),
		Persist:       queryBool(c, "persist"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.render(c, http.StatusOK, plan)
}
