package repositories

import (
	"context"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// TripRepository handles trip data access
type TripRepository struct {
	db *gorm.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create creates a new trip
func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

// GetByID gets a trip by ID with bus and driver preloaded
func (r *TripRepository) GetByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Preload("Bus").
		Preload("Driver").
		First(&trip, id).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// TripFilter narrows trip listings
type TripFilter struct {
	Status      string
	Origin      string
	Destination string
	FromDate    *time.Time
}

// List lists trips with pagination and optional filters
func (r *TripRepository) List(ctx context.Context, filter TripFilter, offset, limit int) ([]*models.Trip, int64, error) {
	var trips []*models.Trip
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Trip{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Origin != "" {
		query = query.Where("origin = ?", filter.Origin)
	}
	if filter.Destination != "" {
		query = query.Where("destination = ?", filter.Destination)
	}
	if filter.FromDate != nil {
		query = query.Where("departure_time >= ?", *filter.FromDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Bus").Preload("Driver").
		Offset(offset).Limit(limit).
		Order("departure_time").
		Find(&trips).Error; err != nil {
		return nil, 0, err
	}

	return trips, total, nil
}

// ListUpcoming lists scheduled trips departing after now
func (r *TripRepository) ListUpcoming(ctx context.Context, limit int) ([]*models.Trip, error) {
	var trips []*models.Trip
	err := r.db.WithContext(ctx).
		Preload("Bus").Preload("Driver").
		Where("status = ?", models.TripStatusScheduled).
		Where("departure_time > ?", time.Now()).
		Order("departure_time").
		Limit(limit).
		Find(&trips).Error
	return trips, err
}

// Update updates a trip
func (r *TripRepository) Update(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Save(trip).Error
}

// UpdateStatus updates only the trip status
func (r *TripRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Trip{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete soft deletes a trip
func (r *TripRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Trip{}, id).Error
}

// ReserveSeats atomically takes n seats from a scheduled trip. Returns false
// when the trip has fewer than n seats left (or is not open for booking);
// concurrent bookings cannot oversell.
func (r *TripRepository) ReserveSeats(ctx context.Context, id uint, n int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE trips
		 SET seats_available = seats_available - ?
		 WHERE id = ? AND seats_available >= ? AND status = ? AND deleted_at IS NULL`,
		n, id, n, models.TripStatusScheduled,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseSeats returns n seats to a trip (booking cancellation)
func (r *TripRepository) ReleaseSeats(ctx context.Context, id uint, n int) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE trips
		 SET seats_available = seats_available + ?
		 WHERE id = ? AND deleted_at IS NULL`,
		n, id,
	).Error
}

// CompleteOverdue marks departed trips whose arrival time has passed as
// completed. Returns the number of trips updated.
func (r *TripRepository) CompleteOverdue(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Trip{}).
		Where("status = ?", models.TripStatusDeparted).
		Where("arrival_time < ?", time.Now()).
		Update("status", models.TripStatusCompleted)
	return result.RowsAffected, result.Error
}
