package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vmihailenco/msgpack/v5"
	"restock/internal/model"
	"restock/internal/service/planner"
	"restock/internal/store"
)

// MsgpackContentType is served when the client asks for msgpack.
const MsgpackContentType = "application/x-msgpack"

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// respondError maps store and planner errors to status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, planner.ErrInvalidInput), errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString("request_id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Sprintf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

// paramWeek reads :year and :week.
func paramWeek(c *gin.Context) (year, week int, ok bool) {
	year, errY := strconv.Atoi(c.Param("year"))
	week, errW := strconv.Atoi(c.Param("week"))
	if errY != nil || errW != nil {
		badRequest(c, "year and week must be integers")
		return 0, 0, false
	}
	return year, week, true
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

func wantsMsgpack(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, MsgpackContentType) || strings.Contains(accept, "application/msgpack")
}

// render writes v as msgpack when the client accepts it, JSON otherwise.
// Msgpack field names follow the json tags.
func (h *Handler) render(c *gin.Context, status int, v interface{}) {
	if !wantsMsgpack(c) {
		c.JSON(status, v)
		return
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		h.respondError(c, fmt.Errorf("failed to encode msgpack: %w", err))
		return
	}
	c.Data(status, MsgpackContentType, buf.Bytes())
}
