package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleAdmin              Role = "ADMIN"
	RoleManager            Role = "MANAGER"
	RoleDispatcher         Role = "DISPATCHER"
	RoleDriver             Role = "DRIVER"
	RoleIndividualCustomer Role = "INDIVIDUAL_CUSTOMER"
	RoleBusinessCustomer   Role = "BUSINESS_CUSTOMER"
)

// ValidRoles is the fixed role enumeration
var ValidRoles = []Role{
	RoleAdmin,
	RoleManager,
	RoleDispatcher,
	RoleDriver,
	RoleIndividualCustomer,
	RoleBusinessCustomer,
}

// IsValidRole reports whether r is part of the fixed enumeration
func IsValidRole(r string) bool {
	for _, role := range ValidRoles {
		if Role(r) == role {
			return true
		}
	}
	return false
}

// CustomerType represents the customer profile type
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "INDIVIDUAL"
	CustomerTypeBusiness   CustomerType = "BUSINESS"
)

// RoleForCustomerType maps a customer type to its account role
func RoleForCustomerType(t CustomerType) (Role, bool) {
	switch t {
	case CustomerTypeIndividual:
		return RoleIndividualCustomer, true
	case CustomerTypeBusiness:
		return RoleBusinessCustomer, true
	default:
		return "", false
	}
}

// Account represents a stored user identity in the domain layer
type Account struct {
	ID                  uint
	Email               string // Unique, case-normalized
	Password            string // Hashed
	FirstName           string
	LastName            string
	Phone               string
	Role                Role
	IsActive            bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsLocked reports whether the account is temporarily locked at the given time
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
