package handlers

import (
	"strconv"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/adapters/persistence/repositories"
	"transbus-fleetdesk/internal/pkg/pagination"
	"transbus-fleetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles customer profile endpoints
type CustomerHandler struct {
	customerRepo repositories.CustomerRepository
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerRepo repositories.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customerRepo: customerRepo}
}

// ListCustomers lists customer profiles (staff)
// @Summary List customers
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	customers, total, err := h.customerRepo.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	return response.Success(c, "Customers retrieved successfully",
		pagination.NewResponse(customers, params, total))
}

// GetCustomer gets a customer profile by ID (staff)
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	customer, err := h.customerRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Customer not found")
	}

	return response.Success(c, "Customer retrieved successfully", fiber.Map{
		"customer": customer,
	})
}

// UpdateCustomerRequest represents update customer request
type UpdateCustomerRequest struct {
	NationalID    *string `json:"national_id"`
	DateOfBirth   *string `json:"date_of_birth"` // YYYY-MM-DD
	CompanyName   *string `json:"company_name"`
	TaxID         *string `json:"tax_id"`
	ContactPerson *string `json:"contact_person"`
	Address       *string `json:"address"`
}

func applyCustomerUpdate(customer *models.Customer, req *UpdateCustomerRequest) error {
	switch customer.CustomerType {
	case models.CustomerTypeIndividual:
		if req.NationalID != nil {
			customer.NationalID = *req.NationalID
		}
		if req.DateOfBirth != nil {
			dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
			if err != nil {
				return err
			}
			customer.DateOfBirth = &dob
		}
	case models.CustomerTypeBusiness:
		if req.CompanyName != nil {
			customer.CompanyName = *req.CompanyName
		}
		if req.TaxID != nil {
			customer.TaxID = *req.TaxID
		}
		if req.ContactPerson != nil {
			customer.ContactPerson = *req.ContactPerson
		}
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	return nil
}

// UpdateCustomer updates a customer profile (staff)
// @Summary Update customer
// @Description Update a customer profile. Only fields matching the profile type apply.
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param body body UpdateCustomerRequest true "Customer data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	customer, err := h.customerRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Customer not found")
	}

	var req UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := applyCustomerUpdate(customer, &req); err != nil {
		return response.BadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
	}

	if err := h.customerRepo.Update(c.Context(), customer); err != nil {
		return response.InternalServerError(c, "Failed to update customer")
	}

	return response.Success(c, "Customer updated successfully", fiber.Map{
		"customer": customer,
	})
}

// DeleteCustomer soft deletes a customer profile (Admin)
// @Summary Delete customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	if _, err := h.customerRepo.GetByID(c.Context(), uint(id)); err != nil {
		return response.NotFound(c, "Customer not found")
	}

	if err := h.customerRepo.Delete(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to delete customer")
	}

	return response.Success(c, "Customer deleted successfully", nil)
}

// GetMyCustomerProfile returns the caller's own customer profile
// @Summary Get own customer profile
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/me [get]
func (h *CustomerHandler) GetMyCustomerProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	customer, err := h.customerRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "Customer profile not found")
	}

	return response.Success(c, "Customer profile retrieved successfully", fiber.Map{
		"customer": customer,
	})
}

// UpdateMyCustomerProfile updates the caller's own customer profile
// @Summary Update own customer profile
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateCustomerRequest true "Customer data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/me [put]
func (h *CustomerHandler) UpdateMyCustomerProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	customer, err := h.customerRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "Customer profile not found")
	}

	var req UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := applyCustomerUpdate(customer, &req); err != nil {
		return response.BadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
	}

	if err := h.customerRepo.Update(c.Context(), customer); err != nil {
		return response.InternalServerError(c, "Failed to update customer profile")
	}

	return response.Success(c, "Customer profile updated successfully", fiber.Map{
		"customer": customer,
	})
}
