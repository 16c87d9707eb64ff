package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/adapters/persistence/repositories"
	"transbus-fleetdesk/internal/pkg/pagination"
	"transbus-fleetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FleetHandler handles bus, driver and maintenance endpoints
type FleetHandler struct {
	busRepo         *repositories.BusRepository
	driverRepo      *repositories.DriverRepository
	maintenanceRepo *repositories.MaintenanceRepository
}

// NewFleetHandler creates a new fleet handler
func NewFleetHandler(
	busRepo *repositories.BusRepository,
	driverRepo *repositories.DriverRepository,
	maintenanceRepo *repositories.MaintenanceRepository,
) *FleetHandler {
	return &FleetHandler{
		busRepo:         busRepo,
		driverRepo:      driverRepo,
		maintenanceRepo: maintenanceRepo,
	}
}

func isDuplicateEntry(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "Duplicate entry")
}

// ============================================================
// Bus
// ============================================================

var validBusStatuses = map[string]bool{
	models.BusStatusActive:        true,
	models.BusStatusInMaintenance: true,
	models.BusStatusRetired:       true,
}

// ListBuses lists buses
// @Summary List buses
// @Description Get buses with pagination, optionally filtered by status
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Response
// @Router /buses [get]
func (h *FleetHandler) ListBuses(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	buses, total, err := h.busRepo.List(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list buses")
	}

	return response.Success(c, "Buses retrieved successfully",
		pagination.NewResponse(buses, params, total))
}

// GetBus gets a bus by ID
// @Summary Get bus
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bus ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /buses/{id} [get]
func (h *FleetHandler) GetBus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	bus, err := h.busRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Bus not found")
	}

	return response.Success(c, "Bus retrieved successfully", fiber.Map{
		"bus": bus,
	})
}

// CreateBusRequest represents create bus request
type CreateBusRequest struct {
	PlateNumber string `json:"plate_number"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Capacity    int    `json:"capacity"`
	Mileage     int64  `json:"mileage"`
}

// CreateBus creates a new bus
// @Summary Create bus
// @Description Register a new bus (Admin/Manager only)
// @Tags Fleet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBusRequest true "Bus data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /buses [post]
func (h *FleetHandler) CreateBus(c *fiber.Ctx) error {
	var req CreateBusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.PlateNumber == "" || req.Model == "" {
		return response.BadRequest(c, "Plate number and model are required")
	}
	if req.Capacity < 1 {
		return response.BadRequest(c, "Capacity must be positive")
	}
	if req.Year < 1980 || req.Year > time.Now().Year()+1 {
		return response.BadRequest(c, "Invalid year")
	}

	bus := &models.Bus{
		PlateNumber: strings.ToUpper(strings.TrimSpace(req.PlateNumber)),
		Model:       req.Model,
		Year:        req.Year,
		Capacity:    req.Capacity,
		Mileage:     req.Mileage,
		Status:      models.BusStatusActive,
	}

	if err := h.busRepo.Create(c.Context(), bus); err != nil {
		if isDuplicateEntry(err) {
			return response.Conflict(c, "Plate number already registered")
		}
		return response.InternalServerError(c, "Failed to create bus")
	}

	return response.Created(c, "Bus created successfully", fiber.Map{
		"bus": bus,
	})
}

// UpdateBusRequest represents update bus request
type UpdateBusRequest struct {
	Model    *string `json:"model"`
	Capacity *int    `json:"capacity"`
	Mileage  *int64  `json:"mileage"`
	Status   *string `json:"status"`
}

// UpdateBus updates a bus
// @Summary Update bus
// @Description Update a bus (Admin/Manager only)
// @Tags Fleet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bus ID"
// @Param body body UpdateBusRequest true "Bus data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /buses/{id} [put]
func (h *FleetHandler) UpdateBus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	bus, err := h.busRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Bus not found")
	}

	var req UpdateBusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Model != nil {
		bus.Model = *req.Model
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return response.BadRequest(c, "Capacity must be positive")
		}
		bus.Capacity = *req.Capacity
	}
	if req.Mileage != nil {
		bus.Mileage = *req.Mileage
	}
	if req.Status != nil {
		if !validBusStatuses[*req.Status] {
			return response.BadRequest(c, "Invalid bus status")
		}
		bus.Status = *req.Status
	}

	if err := h.busRepo.Update(c.Context(), bus); err != nil {
		return response.InternalServerError(c, "Failed to update bus")
	}

	return response.Success(c, "Bus updated successfully", fiber.Map{
		"bus": bus,
	})
}

// DeleteBus soft deletes a bus
// @Summary Delete bus
// @Description Delete a bus (Admin only)
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bus ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /buses/{id} [delete]
func (h *FleetHandler) DeleteBus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if _, err := h.busRepo.GetByID(c.Context(), uint(id)); err != nil {
		return response.NotFound(c, "Bus not found")
	}

	if err := h.busRepo.Delete(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to delete bus")
	}

	return response.Success(c, "Bus deleted successfully", nil)
}

// ============================================================
// Driver
// ============================================================

var validDriverStatuses = map[string]bool{
	models.DriverStatusAvailable: true,
	models.DriverStatusOnTrip:    true,
	models.DriverStatusOnLeave:   true,
	models.DriverStatusInactive:  true,
}

// ListDrivers lists drivers
// @Summary List drivers
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Response
// @Router /drivers [get]
func (h *FleetHandler) ListDrivers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	drivers, total, err := h.driverRepo.List(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list drivers")
	}

	return response.Success(c, "Drivers retrieved successfully",
		pagination.NewResponse(drivers, params, total))
}

// GetDriver gets a driver by ID
// @Summary Get driver
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id} [get]
func (h *FleetHandler) GetDriver(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	driver, err := h.driverRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Driver not found")
	}

	return response.Success(c, "Driver retrieved successfully", fiber.Map{
		"driver": driver,
	})
}

// CreateDriverRequest represents create driver request
type CreateDriverRequest struct {
	EmployeeNo    string `json:"employee_no"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	LicenseNo     string `json:"license_no"`
	LicenseExpiry string `json:"license_expiry"` // YYYY-MM-DD
	UserID        *uint  `json:"user_id"`
}

// CreateDriver creates a new driver
// @Summary Create driver
// @Description Register a new driver (Admin/Manager only)
// @Tags Fleet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateDriverRequest true "Driver data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers [post]
func (h *FleetHandler) CreateDriver(c *fiber.Ctx) error {
	var req CreateDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.EmployeeNo == "" || req.FirstName == "" || req.LastName == "" || req.LicenseNo == "" {
		return response.BadRequest(c, "Employee no, name and license no are required")
	}

	expiry, err := time.Parse("2006-01-02", req.LicenseExpiry)
	if err != nil {
		return response.BadRequest(c, "Invalid license expiry date, expected YYYY-MM-DD")
	}
	if expiry.Before(time.Now()) {
		return response.BadRequest(c, "License is already expired")
	}

	driver := &models.Driver{
		EmployeeNo:    strings.ToUpper(strings.TrimSpace(req.EmployeeNo)),
		UserID:        req.UserID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		LicenseNo:     strings.ToUpper(strings.TrimSpace(req.LicenseNo)),
		LicenseExpiry: expiry,
		Status:        models.DriverStatusAvailable,
	}

	if err := h.driverRepo.Create(c.Context(), driver); err != nil {
		if isDuplicateEntry(err) {
			return response.Conflict(c, "Employee no or license no already registered")
		}
		return response.InternalServerError(c, "Failed to create driver")
	}

	return response.Created(c, "Driver created successfully", fiber.Map{
		"driver": driver,
	})
}

// UpdateDriverRequest represents update driver request
type UpdateDriverRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Phone         *string `json:"phone"`
	LicenseNo     *string `json:"license_no"`
	LicenseExpiry *string `json:"license_expiry"`
	Status        *string `json:"status"`
}

// UpdateDriver updates a driver
// @Summary Update driver
// @Description Update a driver (Admin/Manager only)
// @Tags Fleet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Param body body UpdateDriverRequest true "Driver data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id} [put]
func (h *FleetHandler) UpdateDriver(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	driver, err := h.driverRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Driver not found")
	}

	var req UpdateDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.FirstName != nil {
		driver.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		driver.LastName = *req.LastName
	}
	if req.Phone != nil {
		driver.Phone = *req.Phone
	}
	if req.LicenseNo != nil {
		driver.LicenseNo = strings.ToUpper(strings.TrimSpace(*req.LicenseNo))
	}
	if req.LicenseExpiry != nil {
		expiry, err := time.Parse("2006-01-02", *req.LicenseExpiry)
		if err != nil {
			return response.BadRequest(c, "Invalid license expiry date, expected YYYY-MM-DD")
		}
		driver.LicenseExpiry = expiry
	}
	if req.Status != nil {
		if !validDriverStatuses[*req.Status] {
			return response.BadRequest(c, "Invalid driver status")
		}
		driver.Status = *req.Status
	}

	if err := h.driverRepo.Update(c.Context(), driver); err != nil {
		if isDuplicateEntry(err) {
			return response.Conflict(c, "License no already registered")
		}
		return response.InternalServerError(c, "Failed to update driver")
	}

	return response.Success(c, "Driver updated successfully", fiber.Map{
		"driver": driver,
	})
}

// DeleteDriver soft deletes a driver
// @Summary Delete driver
// @Description Delete a driver (Admin only)
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id} [delete]
func (h *FleetHandler) DeleteDriver(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if _, err := h.driverRepo.GetByID(c.Context(), uint(id)); err != nil {
		return response.NotFound(c, "Driver not found")
	}

	if err := h.driverRepo.Delete(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to delete driver")
	}

	return response.Success(c, "Driver deleted successfully", nil)
}

// ============================================================
// Maintenance
// ============================================================

// ListMaintenance lists maintenance records
// @Summary List maintenance records
// @Description Get maintenance records, optionally scoped to a bus via bus_id
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Param bus_id query int false "Filter by bus"
// @Success 200 {object} response.Response
// @Router /maintenance [get]
func (h *FleetHandler) ListMaintenance(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var records []*models.MaintenanceRecord
	var total int64
	var err error

	if busID, perr := strconv.ParseUint(c.Query("bus_id"), 10, 32); perr == nil {
		records, total, err = h.maintenanceRepo.ListByBus(c.Context(), uint(busID), params.Offset, params.Limit)
	} else {
		records, total, err = h.maintenanceRepo.List(c.Context(), params.Offset, params.Limit)
	}

	if err != nil {
		return response.InternalServerError(c, "Failed to list maintenance records")
	}

	return response.Success(c, "Maintenance records retrieved successfully",
		pagination.NewResponse(records, params, total))
}

// GetMaintenance gets a maintenance record by ID
// @Summary Get maintenance record
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maintenance/{id} [get]
func (h *FleetHandler) GetMaintenance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	record, err := h.maintenanceRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Maintenance record not found")
	}

	return response.Success(c, "Maintenance record retrieved successfully", fiber.Map{
		"record": record,
	})
}

// CreateMaintenanceRequest represents create maintenance request
type CreateMaintenanceRequest struct {
	BusID       uint    `json:"bus_id"`
	ServiceType string  `json:"service_type"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Workshop    string  `json:"workshop"`
	ServicedAt  string  `json:"serviced_at"` // YYYY-MM-DD
	TakeOffline bool    `json:"take_offline"`
}

// CreateMaintenance records a service and optionally takes the bus offline
// @Summary Create maintenance record
// @Description Record a bus service (Admin/Manager only)
// @Tags Fleet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMaintenanceRequest true "Maintenance data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maintenance [post]
func (h *FleetHandler) CreateMaintenance(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateMaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.BusID == 0 || req.ServiceType == "" {
		return response.BadRequest(c, "Bus ID and service type are required")
	}
	if req.Cost < 0 {
		return response.BadRequest(c, "Cost cannot be negative")
	}

	servicedAt, err := time.Parse("2006-01-02", req.ServicedAt)
	if err != nil {
		return response.BadRequest(c, "Invalid serviced_at date, expected YYYY-MM-DD")
	}

	if _, err := h.busRepo.GetByID(c.Context(), req.BusID); err != nil {
		return response.NotFound(c, "Bus not found")
	}

	record := &models.MaintenanceRecord{
		BusID:       req.BusID,
		ServiceType: req.ServiceType,
		Description: req.Description,
		Cost:        req.Cost,
		Workshop:    req.Workshop,
		ServicedAt:  servicedAt,
		CreatedBy:   userID,
	}

	if err := h.maintenanceRepo.Create(c.Context(), record); err != nil {
		return response.InternalServerError(c, "Failed to create maintenance record")
	}

	if req.TakeOffline {
		if err := h.busRepo.UpdateStatus(c.Context(), req.BusID, models.BusStatusInMaintenance); err != nil {
			return response.InternalServerError(c, "Record saved but failed to update bus status")
		}
	}

	return response.Created(c, "Maintenance record created successfully", fiber.Map{
		"record": record,
	})
}

// UpdateMaintenanceRequest represents update maintenance request
type UpdateMaintenanceRequest struct {
	ServiceType *string  `json:"service_type"`
	Description *string  `json:"description"`
	Cost        *float64 `json:"cost"`
	Workshop    *string  `json:"workshop"`
	ServicedAt  *string  `json:"serviced_at"`
}

// UpdateMaintenance updates a maintenance record
// @Summary Update maintenance record
// @Tags Fleet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param body body UpdateMaintenanceRequest true "Maintenance data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maintenance/{id} [put]
func (h *FleetHandler) UpdateMaintenance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	record, err := h.maintenanceRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Maintenance record not found")
	}

	var req UpdateMaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ServiceType != nil {
		record.ServiceType = *req.ServiceType
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Cost != nil {
		if *req.Cost < 0 {
			return response.BadRequest(c, "Cost cannot be negative")
		}
		record.Cost = *req.Cost
	}
	if req.Workshop != nil {
		record.Workshop = *req.Workshop
	}
	if req.ServicedAt != nil {
		servicedAt, err := time.Parse("2006-01-02", *req.ServicedAt)
		if err != nil {
			return response.BadRequest(c, "Invalid serviced_at date, expected YYYY-MM-DD")
		}
		record.ServicedAt = servicedAt
	}

	if err := h.maintenanceRepo.Update(c.Context(), record); err != nil {
		return response.InternalServerError(c, "Failed to update maintenance record")
	}

	return response.Success(c, "Maintenance record updated successfully", fiber.Map{
		"record": record,
	})
}

// DeleteMaintenance soft deletes a maintenance record
// @Summary Delete maintenance record
// @Tags Fleet
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maintenance/{id} [delete]
func (h *FleetHandler) DeleteMaintenance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if _, err := h.maintenanceRepo.GetByID(c.Context(), uint(id)); err != nil {
		return response.NotFound(c, "Maintenance record not found")
	}

	if err := h.maintenanceRepo.Delete(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to delete maintenance record")
	}

	return response.Success(c, "Maintenance record deleted successfully", nil)
}
