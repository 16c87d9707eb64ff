package repositories

import (
	"context"

	"transbus-fleetdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ============================================================
// Bus
// ============================================================

// BusRepository handles bus data access
type BusRepository struct {
	db *gorm.DB
}

// NewBusRepository creates a new bus repository
func NewBusRepository(db *gorm.DB) *BusRepository {
	return &BusRepository{db: db}
}

// Create creates a new bus
func (r *BusRepository) Create(ctx context.Context, bus *models.Bus) error {
	return r.db.WithContext(ctx).Create(bus).Error
}

// GetByID gets a bus by ID
func (r *BusRepository) GetByID(ctx context.Context, id uint) (*models.Bus, error) {
	var bus models.Bus
	err := r.db.WithContext(ctx).First(&bus, id).Error
	if err != nil {
		return nil, err
	}
	return &bus, nil
}

// GetByPlateNumber gets a bus by plate number
func (r *BusRepository) GetByPlateNumber(ctx context.Context, plate string) (*models.Bus, error) {
	var bus models.Bus
	err := r.db.WithContext(ctx).Where("plate_number = ?", plate).First(&bus).Error
	if err != nil {
		return nil, err
	}
	return &bus, nil
}

// List lists buses with pagination, optionally filtered by status
func (r *BusRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Bus, int64, error) {
	var buses []*models.Bus
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Bus{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Order("plate_number").Find(&buses).Error; err != nil {
		return nil, 0, err
	}

	return buses, total, nil
}

// Update updates a bus
func (r *BusRepository) Update(ctx context.Context, bus *models.Bus) error {
	return r.db.WithContext(ctx).Save(bus).Error
}

// UpdateStatus updates only the bus status
func (r *BusRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Bus{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete soft deletes a bus
func (r *BusRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Bus{}, id).Error
}

// ============================================================
// Driver
// ============================================================

// DriverRepository handles driver data access
type DriverRepository struct {
	db *gorm.DB
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// Create creates a new driver
func (r *DriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

// GetByID gets a driver by ID
func (r *DriverRepository) GetByID(ctx context.Context, id uint) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).First(&driver, id).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// List lists drivers with pagination, optionally filtered by status
func (r *DriverRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Driver, int64, error) {
	var drivers []*models.Driver
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Driver{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Order("employee_no").Find(&drivers).Error; err != nil {
		return nil, 0, err
	}

	return drivers, total, nil
}

// Update updates a driver
func (r *DriverRepository) Update(ctx context.Context, driver *models.Driver) error {
	return r.db.WithContext(ctx).Save(driver).Error
}

// Delete soft deletes a driver
func (r *DriverRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Driver{}, id).Error
}

// ============================================================
// Maintenance
// ============================================================

// MaintenanceRepository handles maintenance record data access
type MaintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// Create creates a new maintenance record
func (r *MaintenanceRepository) Create(ctx context.Context, record *models.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID gets a maintenance record by ID
func (r *MaintenanceRepository) GetByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
	var record models.MaintenanceRecord
	err := r.db.WithContext(ctx).Preload("Bus").First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByBus lists maintenance records for a bus
func (r *MaintenanceRepository) ListByBus(ctx context.Context, busID uint, offset, limit int) ([]*models.MaintenanceRecord, int64, error) {
	var records []*models.MaintenanceRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MaintenanceRecord{}).Where("bus_id = ?", busID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Offset(offset).Limit(limit).Order("serviced_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// List lists all maintenance records with pagination
func (r *MaintenanceRepository) List(ctx context.Context, offset, limit int) ([]*models.MaintenanceRecord, int64, error) {
	var records []*models.MaintenanceRecord
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.MaintenanceRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Preload("Bus").Offset(offset).Limit(limit).
		Order("serviced_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Update updates a maintenance record
func (r *MaintenanceRepository) Update(ctx context.Context, record *models.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// Delete soft deletes a maintenance record
func (r *MaintenanceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MaintenanceRecord{}, id).Error
}
