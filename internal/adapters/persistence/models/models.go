package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & Account Tables
// ============================================================

// User represents users table
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Email               string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password            string         `gorm:"size:255;not null" json:"-"`
	FirstName           string         `gorm:"size:50" json:"first_name"`
	LastName            string         `gorm:"size:50" json:"last_name"`
	Phone               string         `gorm:"size:20" json:"phone"`
	Role                string         `gorm:"size:30;default:'INDIVIDUAL_CUSTOMER'" json:"role"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time     `gorm:"index" json:"-"`
	LastLoginAt         *time.Time     `json:"last_login_at"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsLocked reports whether the account lock is still in effect
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// UserResponse DTO
type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// Customer represents customers table (individual or business profile
// linked to a user account)
type Customer struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	CustomerType string         `gorm:"size:20;not null" json:"customer_type"`
	// Individual fields
	NationalID  string     `gorm:"size:30" json:"national_id,omitempty"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	// Business fields
	CompanyName   string         `gorm:"size:100" json:"company_name,omitempty"`
	TaxID         string         `gorm:"size:30" json:"tax_id,omitempty"`
	ContactPerson string         `gorm:"size:100" json:"contact_person,omitempty"`
	Address       string         `gorm:"type:text" json:"address"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// Customer Types
const (
	CustomerTypeIndividual = "INDIVIDUAL"
	CustomerTypeBusiness   = "BUSINESS"
)

// ============================================================
// Fleet Tables
// ============================================================

// Bus represents buses table
type Bus struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PlateNumber string         `gorm:"uniqueIndex;size:20;not null" json:"plate_number"`
	Model       string         `gorm:"size:100;not null" json:"model"`
	Year        int            `gorm:"not null" json:"year"`
	Capacity    int            `gorm:"not null" json:"capacity"`
	Mileage     int64          `gorm:"default:0" json:"mileage"`
	Status      string         `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Bus) TableName() string {
	return "buses"
}

// Bus Status
const (
	BusStatusActive        = "ACTIVE"
	BusStatusInMaintenance = "IN_MAINTENANCE"
	BusStatusRetired       = "RETIRED"
)

// Driver represents drivers table
type Driver struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	EmployeeNo    string         `gorm:"uniqueIndex;size:20;not null" json:"employee_no"`
	UserID        *uint          `gorm:"index" json:"user_id"` // Optional link to a login account
	FirstName     string         `gorm:"size:50;not null" json:"first_name"`
	LastName      string         `gorm:"size:50;not null" json:"last_name"`
	Phone         string         `gorm:"size:20" json:"phone"`
	LicenseNo     string         `gorm:"uniqueIndex;size:30;not null" json:"license_no"`
	LicenseExpiry time.Time      `gorm:"type:date;not null" json:"license_expiry"`
	Status        string         `gorm:"size:20;not null;default:'AVAILABLE'" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Driver) TableName() string {
	return "drivers"
}

// Driver Status
const (
	DriverStatusAvailable = "AVAILABLE"
	DriverStatusOnTrip    = "ON_TRIP"
	DriverStatusOnLeave   = "ON_LEAVE"
	DriverStatusInactive  = "INACTIVE"
)

// Trip represents trips table
type Trip struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	BusID          uint           `gorm:"not null;index" json:"bus_id"`
	DriverID       uint           `gorm:"not null;index" json:"driver_id"`
	Origin         string         `gorm:"size:100;not null" json:"origin"`
	Destination    string         `gorm:"size:100;not null" json:"destination"`
	DepartureTime  time.Time      `gorm:"not null;index" json:"departure_time"`
	ArrivalTime    time.Time      `gorm:"not null" json:"arrival_time"`
	FarePerSeat    float64        `gorm:"type:decimal(10,2);not null" json:"fare_per_seat"`
	SeatsAvailable int            `gorm:"not null" json:"seats_available"`
	Status         string         `gorm:"size:20;not null;default:'SCHEDULED'" json:"status"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Bus    *Bus    `gorm:"foreignKey:BusID" json:"bus,omitempty"`
	Driver *Driver `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

func (Trip) TableName() string {
	return "trips"
}

// Trip Status
const (
	TripStatusScheduled = "SCHEDULED"
	TripStatusDeparted  = "DEPARTED"
	TripStatusCompleted = "COMPLETED"
	TripStatusCancelled = "CANCELLED"
)

// TripResponse DTO
type TripResponse struct {
	ID             uint      `json:"id"`
	BusID          uint      `json:"bus_id"`
	BusPlate       string    `json:"bus_plate,omitempty"`
	DriverID       uint      `json:"driver_id"`
	DriverName     string    `json:"driver_name,omitempty"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	FarePerSeat    float64   `json:"fare_per_seat"`
	SeatsAvailable int       `json:"seats_available"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (t *Trip) ToResponse() *TripResponse {
	resp := &TripResponse{
		ID:             t.ID,
		BusID:          t.BusID,
		DriverID:       t.DriverID,
		Origin:         t.Origin,
		Destination:    t.Destination,
		DepartureTime:  t.DepartureTime,
		ArrivalTime:    t.ArrivalTime,
		FarePerSeat:    t.FarePerSeat,
		SeatsAvailable: t.SeatsAvailable,
		Status:         t.Status,
		CreatedAt:      t.CreatedAt,
	}

	if t.Bus != nil {
		resp.BusPlate = t.Bus.PlateNumber
	}
	if t.Driver != nil {
		resp.DriverName = t.Driver.FirstName + " " + t.Driver.LastName
	}

	return resp
}

// Booking represents bookings table
type Booking struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BookingRef  string         `gorm:"uniqueIndex;size:40;not null" json:"booking_ref"`
	TripID      uint           `gorm:"not null;index" json:"trip_id"`
	CustomerID  uint           `gorm:"not null;index" json:"customer_id"`
	SeatCount   int            `gorm:"not null" json:"seat_count"`
	TotalAmount float64        `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status      string         `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Trip     *Trip     `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Booking Status
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// BookingResponse DTO
type BookingResponse struct {
	ID          uint      `json:"id"`
	BookingRef  string    `json:"booking_ref"`
	TripID      uint      `json:"trip_id"`
	Origin      string    `json:"origin,omitempty"`
	Destination string    `json:"destination,omitempty"`
	CustomerID  uint      `json:"customer_id"`
	SeatCount   int       `json:"seat_count"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (b *Booking) ToResponse() *BookingResponse {
	resp := &BookingResponse{
		ID:          b.ID,
		BookingRef:  b.BookingRef,
		TripID:      b.TripID,
		CustomerID:  b.CustomerID,
		SeatCount:   b.SeatCount,
		TotalAmount: b.TotalAmount,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}

	if b.Trip != nil {
		resp.Origin = b.Trip.Origin
		resp.Destination = b.Trip.Destination
	}

	return resp
}

// MaintenanceRecord represents maintenance_records table
type MaintenanceRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BusID       uint           `gorm:"not null;index" json:"bus_id"`
	ServiceType string         `gorm:"size:50;not null" json:"service_type"`
	Description string         `gorm:"type:text" json:"description"`
	Cost        float64        `gorm:"type:decimal(12,2);not null" json:"cost"`
	Workshop    string         `gorm:"size:100" json:"workshop"`
	ServicedAt  time.Time      `gorm:"type:date;not null" json:"serviced_at"`
	CreatedBy   uint           `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Bus     *Bus  `gorm:"foreignKey:BusID" json:"bus,omitempty"`
	Creator *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth & accounts
		&User{},
		&RefreshToken{},
		&Customer{},
		// Fleet
		&Bus{},
		&Driver{},
		&Trip{},
		&Booking{},
		&MaintenanceRecord{},
	)
}
