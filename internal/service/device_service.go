package service

import (
	"context"
	"errors"
	"strings"

	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/repository"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// DeviceRegisterInput describes a device registration.
type DeviceRegisterInput struct {
	SerialNo          string
	DeviceType        string
	ManufacturingDate string
	WarrantyEndDate   string
	CustomerID        string
}

// DeviceService manages customer devices.
type DeviceService struct {
	devices repository.DeviceRepository
	users   repository.UserRepository
}

// DeviceDependencies bundles repositories for the device service.
type DeviceDependencies struct {
	DeviceRepo repository.DeviceRepository
	UserRepo   repository.UserRepository
}

func NewDeviceService(deps DeviceDependencies) *DeviceService {
	return &DeviceService{devices: deps.DeviceRepo, users: deps.UserRepo}
}

// Register creates a device for an existing customer.
func (s *DeviceService) Register(ctx context.Context, input DeviceRegisterInput) (*domain.Device, error) {
	if strings.TrimSpace(input.SerialNo) == "" {
		return nil, apperrors.NewValidationError("validation failed", []string{"serialNo must not be blank"})
	}
	if err := s.requireCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	device := &domain.Device{
		SerialNo:          input.SerialNo,
		DeviceType:        input.DeviceType,
		ManufacturingDate: input.ManufacturingDate,
		WarrantyEndDate:   input.WarrantyEndDate,
		CustomerID:        input.CustomerID,
	}
	if err := s.devices.Create(ctx, device); err != nil {
		return nil, mapDeviceError(err, "")
	}
	return device, nil
}

// List returns the customer's devices.
func (s *DeviceService) List(ctx context.Context, customerID string) ([]domain.Device, error) {
	devices, err := s.devices.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return devices, nil
}

// Update writes the present device fields. A changed owner must exist.
func (s *DeviceService) Update(ctx context.Context, id string, update repository.DeviceUpdate) (*domain.Device, error) {
	if update.CustomerID != nil {
		if err := s.requireCustomer(ctx, *update.CustomerID); err != nil {
			return nil, err
		}
	}
	device, err := s.devices.Update(ctx, id, update)
	if err != nil {
		return nil, mapDeviceError(err, id)
	}
	return device, nil
}

// Delete removes the device and returns it.
func (s *DeviceService) Delete(ctx context.Context, id string) (*domain.Device, error) {
	device, err := s.devices.Delete(ctx, id)
	if err != nil {
		return nil, mapDeviceError(err, id)
	}
	return device, nil
}

func (s *DeviceService) requireCustomer(ctx context.Context, customerID string) error {
	if _, err := s.users.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("customer", map[string]any{"customerId": customerID})
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

func mapDeviceError(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrSerialExists):
		return apperrors.NewConflict("serial number already registered", nil)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("device", map[string]any{"deviceId": id})
	default:
		return apperrors.NewInternalError(err)
	}
}
