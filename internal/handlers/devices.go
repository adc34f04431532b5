package handlers

import (
	"net/http"

	"github.com/Scharxi/tasmo-admin-sub001/internal/models"
	"github.com/Scharxi/tasmo-admin-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// DeviceRequest is the payload for creating/updating a device.
type DeviceRequest struct {
	// Display name shown in the dashboard
	Name string `json:"name" binding:"required" example:"Desk lamp"`
	// Network address as host[:port], no scheme
	Address string `json:"address" binding:"required" example:"192.168.1.40"`
	// Optional owning category
	CategoryID *string `json:"category_id,omitempty"`
}

// PowerRequest is the payload for explicitly driving a relay.
type PowerRequest struct {
	// Desired relay state. Allowed: ON, OFF
	State string `json:"state" binding:"required,oneof=ON OFF on off" example:"ON"`
}

// @Summary      List devices
// @Description  With live=true each device is refreshed over the network first; unreachable plugs are reported offline.
// @Tags         devices
// @Produce      json
// @Param        live  query  bool  false  "Refresh live state before answering"
// @Success      200   {object}  map[string]interface{}  "count, devices"
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	live := c.Query("live") == "true"
	devices, err := h.services.Devices.List(c.Request.Context(), live)
	if err != nil {
		h.respondServiceError(c, err, "devices_list_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(devices), "devices": devices})
}

// @Summary      Get a device
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  models.Device
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [get]
// @Security     BearerAuth
func (h *Handler) getDevice(c *gin.Context) {
	d, err := h.services.Devices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "device_get_failed")
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Register a device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        body  body      DeviceRequest  true  "Device payload"
// @Success      201   {object}  models.Device
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/devices [post]
// @Security     BearerAuth
func (h *Handler) createDevice(c *gin.Context) {
	var req DeviceRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	d, err := h.services.Devices.Create(c.Request.Context(), service.DeviceParams{
		Name:       req.Name,
		Address:    req.Address,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.respondServiceError(c, err, "device_create_failed")
		return
	}
	c.JSON(http.StatusCreated, d)
}

// @Summary      Update a device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Device ID"
// @Param        body  body      DeviceRequest  true  "Device payload"
// @Success      200   {object}  models.Device
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/devices/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateDevice(c *gin.Context) {
	var req DeviceRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	d, err := h.services.Devices.Update(c.Request.Context(), c.Param("id"), service.DeviceParams{
		Name:       req.Name,
		Address:    req.Address,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		h.respondServiceError(c, err, "device_update_failed")
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Delete a device
// @Tags         devices
// @Produce      json
// @Param        id   path  string  true  "Device ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteDevice(c *gin.Context) {
	if err := h.services.Devices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondServiceError(c, err, "device_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Toggle device power
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device ID"
// @Success      200  {object}  models.ToggleResult
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]interface{}  "error, offline"
// @Router       /api/v1/devices/{id}/toggle [post]
// @Security     BearerAuth
func (h *Handler) toggleDevice(c *gin.Context) {
	res, err := h.services.Devices.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, err, "device_toggle_failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Set device power
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Device ID"
// @Param        body  body      PowerRequest  true  "Power payload"
// @Success      200   {object}  models.ToggleResult
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      503   {object}  map[string]interface{}  "error, offline"
// @Router       /api/v1/devices/{id}/power [post]
// @Security     BearerAuth
func (h *Handler) setDevicePower(c *gin.Context) {
	var req PowerRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	on := req.State == models.StateOn || req.State == "on"
	res, err := h.services.Devices.SetPower(c.Request.Context(), c.Param("id"), on)
	if err != nil {
		h.respondServiceError(c, err, "device_set_power_failed")
		return
	}
	c.JSON(http.StatusOK, res)
}
