package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"restock/internal/model"
	"restock/internal/service/calculator"
)

// ListProducts lists products, optionally filtered by name or reference.
// GET /api/products?q=&hidden=true
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.store.ListProducts(queryBool(c, "hidden"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	q := c.Query("q")
	filtered := make([]*model.Product, 0, len(products))
	for _, p := range products {
		if p.Matches(q) {
			filtered = append(filtered, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": filtered, "total": len(filtered)})
}

// UpdateProductRequest carries the editable product fields; nil fields are
// left unchanged.
type UpdateProductRequest struct {
	Name            *string `json:"name"`
	DestinationCode *string `json:"destinationCode"`
	StockUnit       *string `json:"stockUnit"`
	CategoryID      *int64  `json:"categoryId"`
	ClearCategory   bool    `json:"clearCategory"`
}

// UpdateProduct edits a product.
// PATCH /api/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	p, err := h.store.GetProduct(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			badRequest(c, "name cannot be empty")
			return
		}
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.DestinationCode != nil {
		p.DestinationCode = strings.TrimSpace(*req.DestinationCode)
	}
	if req.StockUnit != nil {
		if strings.TrimSpace(*req.StockUnit) == "" {
			badRequest(c, "stock unit cannot be empty")
			return
		}
		p.StockUnit = strings.TrimSpace(*req.StockUnit)
	}
	switch {
	case req.ClearCategory:
		p.CategoryID = nil
	case req.CategoryID != nil:
		if _, err := h.store.GetCategory(*req.CategoryID); err != nil {
			h.respondError(c, err)
			return
		}
		p.CategoryID = req.CategoryID
	}

	if err := h.store.UpdateProduct(p); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type visibilityRequest struct {
	Hidden *bool `json:"hidden"`
}

// SetVisibility hides or shows a product.
// POST /api/products/:id/visibility
func (h *Handler) SetVisibility(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Hidden == nil {
		badRequest(c, "hidden is required")
		return
	}

	if err := h.store.SetProductHidden(id, *req.Hidden); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "isHidden": *req.Hidden})
}

// SetConversion sets or clears (JSON null) the unit conversion of a product.
// PUT /api/products/:id/conversion
func (h *Handler) SetConversion(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "invalid request body")
		return
	}
	// decoded by hand: a null body is a valid request that clears the
	// conversion
	var conv *model.UnitConversion
	if err := json.Unmarshal(body, &conv); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if errs := calculator.ValidateConversion(conv); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(errs, "; "), "errors": errs})
		return
	}

	if err := h.store.SetUnitConversion(id, conv); err != nil {
		h.respondError(c, err)
		return
	}
	p, err := h.store.GetProduct(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProduct removes a product.
// DELETE /api/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
