package services

import (
	"context"
	"errors"
	"log"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking service errors
var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrCustomerNotFound   = errors.New("customer profile not found")
	ErrNotEnoughSeats     = errors.New("not enough seats available")
	ErrBookingNotPending  = errors.New("booking is not pending")
	ErrBookingFinalized   = errors.New("booking already finalized")
	ErrNotBookingOwner    = errors.New("booking belongs to another customer")
	ErrInvalidSeatCount   = errors.New("seat count must be positive")
	ErrTripNotBookable    = errors.New("trip is not open for booking")
)

// BookingService handles booking business logic
type BookingService struct {
	bookingRepo  *repositories.BookingRepository
	tripRepo     *repositories.TripRepository
	customerRepo repositories.CustomerRepository
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo *repositories.BookingRepository,
	tripRepo *repositories.TripRepository,
	customerRepo repositories.CustomerRepository,
) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		tripRepo:     tripRepo,
		customerRepo: customerRepo,
	}
}

// CreateBookingInput for creating a booking
type CreateBookingInput struct {
	TripID    uint `json:"trip_id"`
	SeatCount int  `json:"seat_count"`
}

// Create books seats on a trip for the customer linked to userID.
// Seats are reserved with an atomic conditional decrement, so two customers
// racing for the last seats cannot both win. If the booking row itself fails
// to persist, the reserved seats are released again.
func (s *BookingService) Create(ctx context.Context, userID uint, input *CreateBookingInput) (*models.Booking, error) {
	if input.SeatCount < 1 {
		return nil, ErrInvalidSeatCount
	}

	customer, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, input.TripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	if trip.Status != models.TripStatusScheduled {
		return nil, ErrTripNotBookable
	}

	reserved, err := s.tripRepo.ReserveSeats(ctx, trip.ID, input.SeatCount)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrNotEnoughSeats
	}

	booking := &models.Booking{
		BookingRef:  uuid.New().String(),
		TripID:      trip.ID,
		CustomerID:  customer.ID,
		SeatCount:   input.SeatCount,
		TotalAmount: trip.FarePerSeat * float64(input.SeatCount),
		Status:      models.BookingStatusPending,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if relErr := s.tripRepo.ReleaseSeats(ctx, trip.ID, input.SeatCount); relErr != nil {
			log.Printf("⚠️ Failed to release %d seats on trip %d: %v", input.SeatCount, trip.ID, relErr)
		}
		return nil, err
	}

	log.Printf("✅ Booking %s created: trip %d, %d seat(s)", booking.BookingRef, trip.ID, input.SeatCount)
	return booking, nil
}

// GetByID gets a booking by ID
func (s *BookingService) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// GetOwnedByID gets a booking and checks it belongs to the user's customer
// profile
func (s *BookingService) GetOwnedByID(ctx context.Context, userID, id uint) (*models.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	if booking.CustomerID != customer.ID {
		return nil, ErrNotBookingOwner
	}
	return booking, nil
}

// List lists all bookings with pagination (staff)
func (s *BookingService) List(ctx context.Context, status string, offset, limit int) ([]*models.Booking, int64, error) {
	return s.bookingRepo.List(ctx, status, offset, limit)
}

// ListMine lists the caller's own bookings
func (s *BookingService) ListMine(ctx context.Context, userID uint, offset, limit int) ([]*models.Booking, int64, error) {
	customer, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrCustomerNotFound
		}
		return nil, 0, err
	}
	return s.bookingRepo.ListByCustomer(ctx, customer.ID, offset, limit)
}

// Confirm confirms a pending booking (staff)
func (s *BookingService) Confirm(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingStatusPending {
		return nil, ErrBookingNotPending
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, models.BookingStatusConfirmed); err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusConfirmed
	return booking, nil
}

// Cancel cancels a pending or confirmed booking and returns its seats to the
// trip
func (s *BookingService) Cancel(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == models.BookingStatusCancelled {
		return nil, ErrBookingFinalized
	}

	if err := s.bookingRepo.UpdateStatus(ctx, id, models.BookingStatusCancelled); err != nil {
		return nil, err
	}

	if err := s.tripRepo.ReleaseSeats(ctx, booking.TripID, booking.SeatCount); err != nil {
		log.Printf("⚠️ Failed to release %d seats on trip %d: %v", booking.SeatCount, booking.TripID, err)
	}

	booking.Status = models.BookingStatusCancelled
	log.Printf("✅ Booking %s cancelled", booking.BookingRef)
	return booking, nil
}

// CancelOwned cancels the caller's own booking
func (s *BookingService) CancelOwned(ctx context.Context, userID, id uint) (*models.Booking, error) {
	if _, err := s.GetOwnedByID(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Cancel(ctx, id)
}
