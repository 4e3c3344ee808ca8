package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type quantityRequest struct {
	ProductID int64    `json:"productId"`
	Value     *float64 `json:"value"`
}

func bindQuantity(c *gin.Context) (quantityRequest, bool) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 || req.Value == nil {
		badRequest(c, "productId and value are required")
		return req, false
	}
	return req, true
}

// UpdateStock records the physical stock counted for a product, in packages.
// PATCH /api/orders/:id/stock
func (h *Handler) UpdateStock(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	req, ok := bindQuantity(c)
	if !ok {
		return
	}

	order, err := h.planner.UpdateRealStock(id, req.ProductID, *req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateQuantity records the packages ordered for a product.
// PATCH /api/orders/:id/quantity
func (h *Handler) UpdateQuantity(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	req, ok := bindQuantity(c)
	if !ok {
		return
	}

	order, err := h.planner.UpdateOrderedQuantity(id, req.ProductID, *req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
