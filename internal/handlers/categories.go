package handlers

import (
	"net/http"

	"github.com/Scharxi/tasmo-admin-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest is the payload for creating/updating a category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required" example:"Office"`
	// Hex color used by the dashboard
	Color string `json:"color,omitempty" example:"#22c55e"`
	Icon  string `json:"icon,omitempty" example:"desk"`
}

// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, categories"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/categories [get]
// @Security     BearerAuth
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.services.Categories.List(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "categories_list_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
}

// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body      CategoryRequest  true  "Category payload"
// @Success      201   {object}  models.Category
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/categories [post]
// @Security     BearerAuth
func (h *Handler) createCategory(c *gin.Context) {
	var req CategoryRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	cat, err := h.services.Categories.Create(c.Request.Context(), service.CategoryParams{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		h.respondServiceError(c, err, "category_create_failed")
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Category ID"
// @Param        body  body      CategoryRequest  true  "Category payload"
// @Success      200   {object}  models.Category
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/categories/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateCategory(c *gin.Context) {
	var req CategoryRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	cat, err := h.services.Categories.Update(c.Request.Context(), c.Param("id"), service.CategoryParams{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		h.respondServiceError(c, err, "category_update_failed")
		return
	}
	c.JSON(http.StatusOK, cat)
}

// @Summary      Delete a category
// @Description  Devices in the category are detached, not deleted.
// @Tags         categories
// @Produce      json
// @Param        id   path  string  true  "Category ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/categories/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.services.Categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondServiceError(c, err, "category_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
