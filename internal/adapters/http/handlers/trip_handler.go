package handlers

import (
	"errors"
	"strconv"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/adapters/persistence/repositories"
	"transbus-fleetdesk/internal/core/services"
	"transbus-fleetdesk/internal/pkg/pagination"
	"transbus-fleetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TripHandler handles trip scheduling endpoints
type TripHandler struct {
	tripService *services.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// ListTrips lists trips
// @Summary List trips
// @Description Get trips with pagination and optional filters
// @Tags Trips
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Param origin query string false "Filter by origin"
// @Param destination query string false "Filter by destination"
// @Param from query string false "Departures from date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /trips [get]
func (h *TripHandler) ListTrips(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.TripFilter{
		Status:      c.Query("status"),
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.FromDate = &t
		}
	}

	trips, total, err := h.tripService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list trips")
	}

	responses := make([]*models.TripResponse, len(trips))
	for i, t := range trips {
		responses[i] = t.ToResponse()
	}

	return response.Success(c, "Trips retrieved successfully",
		pagination.NewResponse(responses, params, total))
}

// GetTrip gets a trip by ID
// @Summary Get trip
// @Tags Trips
// @Produce json
// @Security BearerAuth
// @Param id path int true "Trip ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /trips/{id} [get]
func (h *TripHandler) GetTrip(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	trip, err := h.tripService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			return response.NotFound(c, "Trip not found")
		}
		return response.InternalServerError(c, "Failed to get trip")
	}

	return response.Success(c, "Trip retrieved successfully", fiber.Map{
		"trip": trip.ToResponse(),
	})
}

// CreateTrip schedules a new trip
// @Summary Create trip
// @Description Schedule a trip (Admin/Manager/Dispatcher only)
// @Tags Trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateTripInput true "Trip data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /trips [post]
func (h *TripHandler) CreateTrip(c *fiber.Ctx) error {
	var input services.CreateTripInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.BusID == 0 || input.DriverID == 0 {
		return response.BadRequest(c, "Bus ID and driver ID are required")
	}
	if input.Origin == "" || input.Destination == "" {
		return response.BadRequest(c, "Origin and destination are required")
	}
	if input.FarePerSeat < 0 {
		return response.BadRequest(c, "Fare cannot be negative")
	}

	trip, err := h.tripService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBusNotFound):
			return response.NotFound(c, "Bus not found")
		case errors.Is(err, services.ErrDriverNotFound):
			return response.NotFound(c, "Driver not found")
		case errors.Is(err, services.ErrBusNotActive):
			return response.BadRequest(c, "Bus is not active")
		case errors.Is(err, services.ErrDriverNotAvailable):
			return response.BadRequest(c, "Driver is not available")
		case errors.Is(err, services.ErrInvalidSchedule):
			return response.BadRequest(c, "Arrival must be after departure")
		default:
			return response.InternalServerError(c, "Failed to create trip")
		}
	}

	return response.Created(c, "Trip created successfully", fiber.Map{
		"trip": trip.ToResponse(),
	})
}

// UpdateTrip reschedules a trip
// @Summary Update trip
// @Description Reschedule a trip; only scheduled trips can change (Admin/Manager/Dispatcher only)
// @Tags Trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Trip ID"
// @Param body body services.UpdateTripInput true "Trip data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /trips/{id} [put]
func (h *TripHandler) UpdateTrip(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var input services.UpdateTripInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	trip, err := h.tripService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			return response.NotFound(c, "Trip not found")
		case errors.Is(err, services.ErrDriverNotFound):
			return response.NotFound(c, "Driver not found")
		case errors.Is(err, services.ErrDriverNotAvailable):
			return response.BadRequest(c, "Driver is not available")
		case errors.Is(err, services.ErrInvalidSchedule):
			return response.BadRequest(c, "Arrival must be after departure")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.BadRequest(c, "Only scheduled trips can be rescheduled")
		default:
			return response.InternalServerError(c, "Failed to update trip")
		}
	}

	return response.Success(c, "Trip updated successfully", fiber.Map{
		"trip": trip.ToResponse(),
	})
}

// ChangeTripStatusRequest represents change trip status request
type ChangeTripStatusRequest struct {
	Status string `json:"status"`
}

// ChangeTripStatus moves a trip along its lifecycle
// @Summary Change trip status
// @Description Transition a trip: SCHEDULED to DEPARTED or CANCELLED, DEPARTED to COMPLETED
// @Tags Trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Trip ID"
// @Param body body ChangeTripStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /trips/{id}/status [put]
func (h *TripHandler) ChangeTripStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	var req ChangeTripStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	trip, err := h.tripService.ChangeStatus(c.Context(), uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			return response.NotFound(c, "Trip not found")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.BadRequest(c, "Invalid trip status transition")
		default:
			return response.InternalServerError(c, "Failed to change trip status")
		}
	}

	return response.Success(c, "Trip status updated successfully", fiber.Map{
		"trip": trip.ToResponse(),
	})
}

// DeleteTrip soft deletes a trip
// @Summary Delete trip
// @Description Delete a trip; departed trips cannot be deleted (Admin/Manager only)
// @Tags Trips
// @Produce json
// @Security BearerAuth
// @Param id path int true "Trip ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /trips/{id} [delete]
func (h *TripHandler) DeleteTrip(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.tripService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrTripNotFound):
			return response.NotFound(c, "Trip not found")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.BadRequest(c, "Departed trips cannot be deleted")
		default:
			return response.InternalServerError(c, "Failed to delete trip")
		}
	}

	return response.Success(c, "Trip deleted successfully", nil)
}
