package repositories

import (
	"context"

	"transbus-fleetdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// BookingRepository handles booking data access
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create creates a new booking
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// GetByID gets a booking by ID with trip preloaded
func (r *BookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Preload("Trip").First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByRef gets a booking by its reference
func (r *BookingRepository) GetByRef(ctx context.Context, ref string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Preload("Trip").Where("booking_ref = ?", ref).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// List lists all bookings with pagination, optionally filtered by status
func (r *BookingRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Trip").Offset(offset).Limit(limit).
		Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListByCustomer lists bookings belonging to one customer
func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID uint, offset, limit int) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{}).Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Trip").Offset(offset).Limit(limit).
		Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// UpdateStatus updates only the booking status
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete soft deletes a booking
func (r *BookingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Booking{}, id).Error
}
