package dto

import "github.com/solarcare/inverter-service/internal/domain"

// RegisterDeviceRequest payload. Field names follow the published client contract.
type RegisterDeviceRequest struct {
	SerialNo          string `json:"serialNo" validate:"required,notblank,max=100"`
	DeviceType        string `json:"device_type" validate:"required,max=100"`
	ManufacturingDate string `json:"manufacturing_data" validate:"required"`
	WarrantyEndDate   string `json:"waranty_end_date" validate:"required"`
	CustomerID        string `json:"customerId" validate:"required,notblank"`
}

// UpdateDeviceRequest payload. Nil fields are left untouched.
type UpdateDeviceRequest struct {
	DeviceID          string  `json:"deviceId" validate:"required"`
	SerialNo          *string `json:"serialNo" validate:"omitnil,notblank,max=100"`
	DeviceType        *string `json:"deviceType" validate:"omitempty,max=100"`
	ManufacturingDate *string `json:"manufacturingDate"`
	WarrantyEndDate   *string `json:"warrantyEndDate"`
	CustomerID        *string `json:"customerId" validate:"omitnil,notblank"`
}

// RegisterDeviceResponse is returned after device registration.
type RegisterDeviceResponse struct {
	Success  bool   `json:"success" validate:"eq=true"`
	DeviceID string `json:"deviceId" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

// DeviceListResponse lists a customer's devices.
type DeviceListResponse struct {
	Success bool            `json:"success" validate:"eq=true"`
	Devices []domain.Device `json:"devices" validate:"dive"`
	Message string          `json:"message" validate:"required"`
}

// DeviceResponse wraps a single updated or removed device.
type DeviceResponse struct {
	Success bool          `json:"success" validate:"eq=true"`
	Device  domain.Device `json:"device"`
	Message string        `json:"message" validate:"required"`
}
