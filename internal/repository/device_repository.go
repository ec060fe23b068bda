package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/persistence"
)

// DeviceUpdate lists the mutable device attributes. Nil fields are left untouched.
type DeviceUpdate struct {
	SerialNo          *string
	DeviceType        *string
	ManufacturingDate *string
	WarrantyEndDate   *string
	CustomerID        *string
}

func (u DeviceUpdate) attributes() map[string]any {
	set := map[string]any{}
	setIf(set, "serialNo", u.SerialNo)
	setIf(set, "deviceType", u.DeviceType)
	setIf(set, "manufacturingDate", u.ManufacturingDate)
	setIf(set, "warrantyEndDate", u.WarrantyEndDate)
	setIf(set, "customerId", u.CustomerID)
	return set
}

// DeviceRepository defines persistence access for registered inverters.
type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) error
	GetByID(ctx context.Context, id string) (*domain.Device, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Device, error)
	Update(ctx context.Context, id string, update DeviceUpdate) (*domain.Device, error)
	Delete(ctx context.Context, id string) (*domain.Device, error)
}

type deviceRepository struct {
	store  persistence.Store
	logger *zap.Logger
}

func NewDeviceRepository(store persistence.Store, logger *zap.Logger) DeviceRepository {
	return &deviceRepository{store: store, logger: logger}
}

// Create assigns a device id, reserves the serial number and writes the device.
func (r *deviceRepository) Create(ctx context.Context, device *domain.Device) error {
	id, err := NewID(DeviceIDPrefix)
	if err != nil {
		return fmt.Errorf("generate device id: %w", err)
	}
	device.DeviceID = id
	device.SerialNo = strings.TrimSpace(device.SerialNo)
	ts := timestamp()
	device.CreatedAt = ts
	device.UpdatedAt = ts

	if err := r.reserveSerial(ctx, device.SerialNo, id); err != nil {
		return err
	}

	item, err := toItem(deviceKey(id), device)
	if err == nil {
		err = r.store.PutIfAbsent(ctx, item)
	}
	if err != nil {
		r.releaseSerial(ctx, device.SerialNo, id)
		if errors.Is(err, persistence.ErrConditionFailed) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

func (r *deviceRepository) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	item, err := r.store.Get(ctx, deviceKey(id))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get device %s: %w", id, err)
	}
	var device domain.Device
	if err := fromItem(item, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// ListByCustomer returns the customer's devices oldest first. An empty customerID lists all devices.
func (r *deviceRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Device, error) {
	filter := persistence.ScanFilter{PKPrefix: devicePrefix, SK: deviceSort}
	if customerID != "" {
		filter.Equals = map[string]string{"customerId": customerID}
	}
	items, err := r.store.Scan(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	devices := make([]domain.Device, 0, len(items))
	for _, item := range items {
		var device domain.Device
		if err := fromItem(item, &device); err != nil {
			r.logger.Warn("skipping unreadable device record", zap.Error(err))
			continue
		}
		devices = append(devices, device)
	}
	sort.SliceStable(devices, func(i, j int) bool {
		if devices[i].CreatedAt != devices[j].CreatedAt {
			return devices[i].CreatedAt < devices[j].CreatedAt
		}
		return devices[i].DeviceID < devices[j].DeviceID
	})
	return devices, nil
}

// Update writes the present attributes. A new serial number is reserved before the write
// and the old reservation released after it.
func (r *deviceRepository) Update(ctx context.Context, id string, update DeviceUpdate) (*domain.Device, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newSerial := ""
	if update.SerialNo != nil {
		trimmed := strings.TrimSpace(*update.SerialNo)
		update.SerialNo = &trimmed
		if trimmed != current.SerialNo {
			if err := r.reserveSerial(ctx, trimmed, id); err != nil {
				return nil, err
			}
			newSerial = trimmed
		}
	}

	set := update.attributes()
	set["updatedAt"] = timestamp()
	item, err := r.store.Update(ctx, deviceKey(id), set, persistence.Guard{MustExist: true})
	if err != nil {
		if newSerial != "" {
			r.releaseSerial(ctx, newSerial, id)
		}
		if errors.Is(err, persistence.ErrConditionFailed) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update device %s: %w", id, err)
	}
	if newSerial != "" {
		r.releaseSerial(ctx, current.SerialNo, id)
	}

	var device domain.Device
	if err := fromItem(item, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// Delete removes the device and its serial reservation, returning the removed device.
func (r *deviceRepository) Delete(ctx context.Context, id string) (*domain.Device, error) {
	item, err := r.store.Delete(ctx, deviceKey(id), persistence.Guard{MustExist: true})
	if err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete device %s: %w", id, err)
	}
	var device domain.Device
	if err := fromItem(item, &device); err != nil {
		return nil, err
	}
	r.releaseSerial(ctx, device.SerialNo, id)
	return &device, nil
}

func (r *deviceRepository) reserveSerial(ctx context.Context, serialNo, deviceID string) error {
	marker := markerItem(serialKey(serialNo), map[string]string{"deviceId": deviceID})
	if err := r.store.PutIfAbsent(ctx, marker); err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return ErrSerialExists
		}
		return fmt.Errorf("reserve serial: %w", err)
	}
	return nil
}

func (r *deviceRepository) releaseSerial(ctx context.Context, serialNo, deviceID string) {
	if serialNo == "" {
		return
	}
	_, err := r.store.Delete(ctx, serialKey(serialNo), persistence.Guard{
		Equals: map[string]string{"deviceId": deviceID},
	})
	if err != nil && !errors.Is(err, persistence.ErrConditionFailed) {
		r.logger.Warn("release serial reservation failed",
			zap.String("deviceId", deviceID),
			zap.Error(err))
	}
}
