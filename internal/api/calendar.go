package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"restock/internal/service/calendar"
)

// ListWeeksInMonth lists the ISO weeks touching a month.
// GET /api/calendar/weeks?year=2024&month=12
func (h *Handler) ListWeeksInMonth(c *gin.Context) {
	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil || year <= 0 || month < 1 || month > 12 {
		badRequest(c, "year and month are required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":  year,
		"month": month,
		"weeks": calendar.WeeksInMonth(year, time.Month(month)),
	})
}

// GetCalendarWeek returns the days and delivery dates of a week.
// GET /api/calendar/:year/:week
func (h *Handler) GetCalendarWeek(c *gin.Context) {
	year, week, ok := paramWeek(c)
	if !ok {
		return
	}
	if !calendar.ValidWeek(year, week) {
		badRequest(c, "invalid week")
		return
	}

	nextYear, nextWeek := calendar.NextWeek(year, week)
	prevYear, prevWeek := calendar.PreviousWeek(year, week)
	c.JSON(http.StatusOK, gin.H{
		"year":          year,
		"week":          week,
		"dates":         calendar.DatesOfWeek(year, week),
		"deliveryDates": calendar.DeliveryDatesFor(year, week),
		"next":          gin.H{"year": nextYear, "week": nextWeek},
		"previous":      gin.H{"year": prevYear, "week": prevWeek},
	})
}
