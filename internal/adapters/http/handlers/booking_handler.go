package handlers

import (
	"errors"
	"strconv"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/core/domain"
	"transbus-fleetdesk/internal/core/services"
	"transbus-fleetdesk/internal/pkg/pagination"
	"transbus-fleetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookingHandler handles booking endpoints
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func isCustomerRole(role string) bool {
	return role == string(domain.RoleIndividualCustomer) || role == string(domain.RoleBusinessCustomer)
}

// CreateBooking books seats on a trip for the authenticated customer
// @Summary Create booking
// @Description Reserve seats on a scheduled trip (customers only)
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBookingInput true "Booking data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateBookingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.TripID == 0 {
		return response.BadRequest(c, "Trip ID is required")
	}

	booking, err := h.bookingService.Create(c.Context(), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSeatCount):
			return response.BadRequest(c, "Seat count must be positive")
		case errors.Is(err, services.ErrCustomerNotFound):
			return response.NotFound(c, "Customer profile not found")
		case errors.Is(err, services.ErrTripNotFound):
			return response.NotFound(c, "Trip not found")
		case errors.Is(err, services.ErrTripNotBookable):
			return response.BadRequest(c, "Trip is not open for booking")
		case errors.Is(err, services.ErrNotEnoughSeats):
			return response.Conflict(c, "Not enough seats available")
		default:
			return response.InternalServerError(c, "Failed to create booking")
		}
	}

	return response.Created(c, "Booking created successfully", fiber.Map{
		"booking": booking.ToResponse(),
	})
}

// ListBookings lists bookings. Staff see all bookings; customers see only
// their own.
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status (staff only)"
// @Success 200 {object} response.Response
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	params := pagination.GetParams(c)

	var bookings []*models.Booking
	var total int64
	var err error

	if isCustomerRole(role) {
		bookings, total, err = h.bookingService.ListMine(c.Context(), userID, params.Offset, params.Limit)
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer profile not found")
		}
	} else {
		bookings, total, err = h.bookingService.List(c.Context(), c.Query("status"), params.Offset, params.Limit)
	}

	if err != nil {
		return response.InternalServerError(c, "Failed to list bookings")
	}

	responses := make([]*models.BookingResponse, len(bookings))
	for i, b := range bookings {
		responses[i] = b.ToResponse()
	}

	return response.Success(c, "Bookings retrieved successfully",
		pagination.NewResponse(responses, params, total))
}

// GetBooking gets a booking by ID. Customers can only read their own.
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	var booking *models.Booking
	if isCustomerRole(role) {
		booking, err = h.bookingService.GetOwnedByID(c.Context(), userID, uint(id))
	} else {
		booking, err = h.bookingService.GetByID(c.Context(), uint(id))
	}

	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return response.NotFound(c, "Booking not found")
		case errors.Is(err, services.ErrCustomerNotFound):
			return response.NotFound(c, "Customer profile not found")
		case errors.Is(err, services.ErrNotBookingOwner):
			return response.Forbidden(c, "Access denied")
		default:
			return response.InternalServerError(c, "Failed to get booking")
		}
	}

	return response.Success(c, "Booking retrieved successfully", fiber.Map{
		"booking": booking.ToResponse(),
	})
}

// ConfirmBooking confirms a pending booking
// @Summary Confirm booking
// @Description Confirm a pending booking (staff only)
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id}/confirm [put]
func (h *BookingHandler) ConfirmBooking(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	booking, err := h.bookingService.Confirm(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return response.NotFound(c, "Booking not found")
		case errors.Is(err, services.ErrBookingNotPending):
			return response.BadRequest(c, "Booking is not pending")
		default:
			return response.InternalServerError(c, "Failed to confirm booking")
		}
	}

	return response.Success(c, "Booking confirmed successfully", fiber.Map{
		"booking": booking.ToResponse(),
	})
}

// CancelBooking cancels a booking and returns its seats to the trip.
// Customers can only cancel their own.
// @Summary Cancel booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id}/cancel [put]
func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	var booking *models.Booking
	if isCustomerRole(role) {
		booking, err = h.bookingService.CancelOwned(c.Context(), userID, uint(id))
	} else {
		booking, err = h.bookingService.Cancel(c.Context(), uint(id))
	}

	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return response.NotFound(c, "Booking not found")
		case errors.Is(err, services.ErrCustomerNotFound):
			return response.NotFound(c, "Customer profile not found")
		case errors.Is(err, services.ErrNotBookingOwner):
			return response.Forbidden(c, "Access denied")
		case errors.Is(err, services.ErrBookingFinalized):
			return response.BadRequest(c, "Booking already cancelled")
		default:
			return response.InternalServerError(c, "Failed to cancel booking")
		}
	}

	return response.Success(c, "Booking cancelled successfully", fiber.Map{
		"booking": booking.ToResponse(),
	})
}
