package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/api/dto"
	"github.com/solarcare/inverter-service/internal/repository"
	"github.com/solarcare/inverter-service/internal/service"
)

// DeviceHandler exposes device registration and management endpoints.
type DeviceHandler struct {
	devices *service.DeviceService
}

// NewDeviceHandler constructs handler.
func NewDeviceHandler(devices *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// Register handles POST /api/device.
func (h *DeviceHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterDeviceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	device, err := h.devices.Register(c.UserContext(), service.DeviceRegisterInput{
		SerialNo:          req.SerialNo,
		DeviceType:        req.DeviceType,
		ManufacturingDate: req.ManufacturingDate,
		WarrantyEndDate:   req.WarrantyEndDate,
		CustomerID:        req.CustomerID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.RegisterDeviceResponse{
		Success:  true,
		DeviceID: device.DeviceID,
		Message:  "Device registered successfully",
	})
}

// List handles GET /api/device?customer_id=.
func (h *DeviceHandler) List(c *fiber.Ctx) error {
	customerID, err := requireQuery(c, "customer_id")
	if err != nil {
		return err
	}

	devices, err := h.devices.List(c.UserContext(), customerID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.DeviceListResponse{
		Success: true,
		Devices: devices,
		Message: "Devices fetched successfully",
	})
}

// Update handles PATCH /api/device.
func (h *DeviceHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateDeviceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	device, err := h.devices.Update(c.UserContext(), req.DeviceID, repository.DeviceUpdate{
		SerialNo:          req.SerialNo,
		DeviceType:        req.DeviceType,
		ManufacturingDate: req.ManufacturingDate,
		WarrantyEndDate:   req.WarrantyEndDate,
		CustomerID:        req.CustomerID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.DeviceResponse{Success: true, Device: *device, Message: "Device updated successfully"})
}

// Delete handles DELETE /api/device?device_id=.
func (h *DeviceHandler) Delete(c *fiber.Ctx) error {
	id, err := requireQuery(c, "device_id")
	if err != nil {
		return err
	}

	device, err := h.devices.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.DeviceResponse{Success: true, Device: *device, Message: "Device deleted successfully"})
}
