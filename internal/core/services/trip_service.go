package services

import (
	"context"
	"errors"
	"log"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Trip service errors
var (
	ErrTripNotFound       = errors.New("trip not found")
	ErrBusNotFound        = errors.New("bus not found")
	ErrDriverNotFound     = errors.New("driver not found")
	ErrBusNotActive       = errors.New("bus is not active")
	ErrDriverNotAvailable = errors.New("driver is not available")
	ErrInvalidTransition  = errors.New("invalid trip status transition")
	ErrInvalidSchedule    = errors.New("arrival must be after departure")
)

// TripService handles trip scheduling business logic
type TripService struct {
	tripRepo   *repositories.TripRepository
	busRepo    *repositories.BusRepository
	driverRepo *repositories.DriverRepository
}

// NewTripService creates a new trip service
func NewTripService(
	tripRepo *repositories.TripRepository,
	busRepo *repositories.BusRepository,
	driverRepo *repositories.DriverRepository,
) *TripService {
	return &TripService{
		tripRepo:   tripRepo,
		busRepo:    busRepo,
		driverRepo: driverRepo,
	}
}

// CreateTripInput for scheduling a trip
type CreateTripInput struct {
	BusID         uint      `json:"bus_id"`
	DriverID      uint      `json:"driver_id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	FarePerSeat   float64   `json:"fare_per_seat"`
}

// UpdateTripInput for rescheduling a trip
type UpdateTripInput struct {
	DriverID      *uint      `json:"driver_id"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	FarePerSeat   *float64   `json:"fare_per_seat"`
}

// Create schedules a new trip. Seats available starts at the bus capacity.
func (s *TripService) Create(ctx context.Context, input *CreateTripInput) (*models.Trip, error) {
	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, ErrInvalidSchedule
	}

	bus, err := s.busRepo.GetByID(ctx, input.BusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	if bus.Status != models.BusStatusActive {
		return nil, ErrBusNotActive
	}

	driver, err := s.driverRepo.GetByID(ctx, input.DriverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	if driver.Status != models.DriverStatusAvailable {
		return nil, ErrDriverNotAvailable
	}

	trip := &models.Trip{
		BusID:          input.BusID,
		DriverID:       input.DriverID,
		Origin:         input.Origin,
		Destination:    input.Destination,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		FarePerSeat:    input.FarePerSeat,
		SeatsAvailable: bus.Capacity,
		Status:         models.TripStatusScheduled,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	log.Printf("✅ Trip scheduled: %s → %s (bus %s)", trip.Origin, trip.Destination, bus.PlateNumber)
	return trip, nil
}

// GetByID gets a trip by ID
func (s *TripService) GetByID(ctx context.Context, id uint) (*models.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return trip, nil
}

// List lists trips with pagination and filters
func (s *TripService) List(ctx context.Context, filter repositories.TripFilter, offset, limit int) ([]*models.Trip, int64, error) {
	return s.tripRepo.List(ctx, filter, offset, limit)
}

// Update reschedules a trip; only scheduled trips can change
func (s *TripService) Update(ctx context.Context, id uint, input *UpdateTripInput) (*models.Trip, error) {
	trip, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if trip.Status != models.TripStatusScheduled {
		return nil, ErrInvalidTransition
	}

	if input.DriverID != nil {
		driver, err := s.driverRepo.GetByID(ctx, *input.DriverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDriverNotFound
			}
			return nil, err
		}
		if driver.Status != models.DriverStatusAvailable {
			return nil, ErrDriverNotAvailable
		}
		trip.DriverID = *input.DriverID
	}
	if input.DepartureTime != nil {
		trip.DepartureTime = *input.DepartureTime
	}
	if input.ArrivalTime != nil {
		trip.ArrivalTime = *input.ArrivalTime
	}
	if !trip.ArrivalTime.After(trip.DepartureTime) {
		return nil, ErrInvalidSchedule
	}
	if input.FarePerSeat != nil {
		trip.FarePerSeat = *input.FarePerSeat
	}

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

// tripTransitions lists the allowed status moves
var tripTransitions = map[string][]string{
	models.TripStatusScheduled: {models.TripStatusDeparted, models.TripStatusCancelled},
	models.TripStatusDeparted:  {models.TripStatusCompleted},
}

// ChangeStatus moves a trip along its lifecycle.
// Completed and cancelled are terminal.
func (s *TripService) ChangeStatus(ctx context.Context, id uint, status string) (*models.Trip, error) {
	trip, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range tripTransitions[trip.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}

	if err := s.tripRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	trip.Status = status
	log.Printf("✅ Trip %d status → %s", id, status)
	return trip, nil
}

// Delete soft deletes a trip; departed trips cannot be deleted
func (s *TripService) Delete(ctx context.Context, id uint) error {
	trip, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if trip.Status == models.TripStatusDeparted {
		return ErrInvalidTransition
	}

	return s.tripRepo.Delete(ctx, id)
}
