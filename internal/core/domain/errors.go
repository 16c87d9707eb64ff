package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Account errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountLocked   = errors.New("account temporarily locked")
	ErrAccountInactive = errors.New("account is inactive")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidPassword = errors.New("invalid password")
)

// Fleet errors
var (
	ErrBusNotFound       = errors.New("bus not found")
	ErrDriverNotFound    = errors.New("driver not found")
	ErrTripNotFound      = errors.New("trip not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotEnoughSeats    = errors.New("not enough seats available")
)
