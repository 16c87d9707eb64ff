package services

import (
	"context"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DashboardService handles dashboard reporting
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// FleetDashboardData represents the back-office dashboard payload
type FleetDashboardData struct {
	// Fleet statistics
	TotalBuses         int64 `json:"total_buses"`
	ActiveBuses        int64 `json:"active_buses"`
	BusesInMaintenance int64 `json:"buses_in_maintenance"`
	TotalDrivers       int64 `json:"total_drivers"`
	AvailableDrivers   int64 `json:"available_drivers"`

	// Trip statistics
	TotalTrips     int64 `json:"total_trips"`
	ScheduledTrips int64 `json:"scheduled_trips"`
	DepartedTrips  int64 `json:"departed_trips"`
	CompletedTrips int64 `json:"completed_trips"`
	CancelledTrips int64 `json:"cancelled_trips"`

	// Booking statistics
	TotalBookings     int64   `json:"total_bookings"`
	PendingBookings   int64   `json:"pending_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
	RevenueThisMonth  float64 `json:"revenue_this_month"`

	// Customer statistics
	IndividualCustomers int64 `json:"individual_customers"`
	BusinessCustomers   int64 `json:"business_customers"`

	// Month-bucketed series (last 6 months)
	MonthlyBookings []MonthlyBucket `json:"monthly_bookings"`

	// Recent activity
	UpcomingTrips  []TripSummary    `json:"upcoming_trips"`
	RecentBookings []BookingSummary `json:"recent_bookings"`
}

// MonthlyBucket represents one month of booking activity
type MonthlyBucket struct {
	Month    string  `json:"month"` // YYYY-MM
	Bookings int64   `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// TripSummary represents a trip line on the dashboard
type TripSummary struct {
	ID             uint      `json:"id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	BusPlate       string    `json:"bus_plate"`
	SeatsAvailable int       `json:"seats_available"`
}

// BookingSummary represents a booking line on the dashboard
type BookingSummary struct {
	ID          uint      `json:"id"`
	BookingRef  string    `json:"booking_ref"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	SeatCount   int       `json:"seat_count"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetFleetDashboard returns the back-office dashboard data
func (s *DashboardService) GetFleetDashboard(ctx context.Context) (*FleetDashboardData, error) {
	data := &FleetDashboardData{}

	// Bus counts
	s.db.WithContext(ctx).Table("buses").Where("deleted_at IS NULL").Count(&data.TotalBuses)
	s.db.WithContext(ctx).Table("buses").Where("status = ? AND deleted_at IS NULL", models.BusStatusActive).Count(&data.ActiveBuses)
	s.db.WithContext(ctx).Table("buses").Where("status = ? AND deleted_at IS NULL", models.BusStatusInMaintenance).Count(&data.BusesInMaintenance)

	// Driver counts
	s.db.WithContext(ctx).Table("drivers").Where("deleted_at IS NULL").Count(&data.TotalDrivers)
	s.db.WithContext(ctx).Table("drivers").Where("status = ? AND deleted_at IS NULL", models.DriverStatusAvailable).Count(&data.AvailableDrivers)

	// Trip counts by status
	s.db.WithContext(ctx).Table("trips").Where("deleted_at IS NULL").Count(&data.TotalTrips)
	s.db.WithContext(ctx).Table("trips").Where("status = ? AND deleted_at IS NULL", models.TripStatusScheduled).Count(&data.ScheduledTrips)
	s.db.WithContext(ctx).Table("trips").Where("status = ? AND deleted_at IS NULL", models.TripStatusDeparted).Count(&data.DepartedTrips)
	s.db.WithContext(ctx).Table("trips").Where("status = ? AND deleted_at IS NULL", models.TripStatusCompleted).Count(&data.CompletedTrips)
	s.db.WithContext(ctx).Table("trips").Where("status = ? AND deleted_at IS NULL", models.TripStatusCancelled).Count(&data.CancelledTrips)

	// Booking counts
	s.db.WithContext(ctx).Table("bookings").Where("deleted_at IS NULL").Count(&data.TotalBookings)
	s.db.WithContext(ctx).Table("bookings").Where("status = ? AND deleted_at IS NULL", models.BookingStatusPending).Count(&data.PendingBookings)
	s.db.WithContext(ctx).Table("bookings").Where("status = ? AND deleted_at IS NULL", models.BookingStatusConfirmed).Count(&data.ConfirmedBookings)

	// Revenue (confirmed bookings only)
	s.db.WithContext(ctx).Table("bookings").
		Where("status = ? AND deleted_at IS NULL", models.BookingStatusConfirmed).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&data.TotalRevenue)

	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("bookings").
		Where("status = ? AND created_at >= ? AND deleted_at IS NULL", models.BookingStatusConfirmed, startOfMonth).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&data.RevenueThisMonth)

	// Customer counts by type
	s.db.WithContext(ctx).Table("customers").Where("customer_type = ? AND deleted_at IS NULL", models.CustomerTypeIndividual).Count(&data.IndividualCustomers)
	s.db.WithContext(ctx).Table("customers").Where("customer_type = ? AND deleted_at IS NULL", models.CustomerTypeBusiness).Count(&data.BusinessCustomers)

	// Month-bucketed bookings for the last 6 months
	sixMonthsAgo := startOfMonth.AddDate(0, -5, 0)
	var buckets []struct {
		Month    string
		Bookings int64
		Revenue  float64
	}
	s.db.WithContext(ctx).Table("bookings").
		Select("DATE_FORMAT(created_at, '%Y-%m') as month, COUNT(*) as bookings, COALESCE(SUM(total_amount), 0) as revenue").
		Where("created_at >= ? AND status != ? AND deleted_at IS NULL", sixMonthsAgo, models.BookingStatusCancelled).
		Group("DATE_FORMAT(created_at, '%Y-%m')").
		Order("month").
		Scan(&buckets)

	data.MonthlyBookings = make([]MonthlyBucket, len(buckets))
	for i, b := range buckets {
		data.MonthlyBookings[i] = MonthlyBucket{
			Month:    b.Month,
			Bookings: b.Bookings,
			Revenue:  b.Revenue,
		}
	}

	// Upcoming trips
	var upcoming []struct {
		ID             uint
		Origin         string
		Destination    string
		DepartureTime  time.Time
		BusPlate       string
		SeatsAvailable int
	}
	s.db.WithContext(ctx).Table("trips").
		Select("trips.id, trips.origin, trips.destination, trips.departure_time, buses.plate_number as bus_plate, trips.seats_available").
		Joins("LEFT JOIN buses ON trips.bus_id = buses.id").
		Where("trips.status = ? AND trips.departure_time > ? AND trips.deleted_at IS NULL", models.TripStatusScheduled, time.Now()).
		Order("trips.departure_time").
		Limit(10).
		Scan(&upcoming)

	data.UpcomingTrips = make([]TripSummary, len(upcoming))
	for i, t := range upcoming {
		data.UpcomingTrips[i] = TripSummary{
			ID:             t.ID,
			Origin:         t.Origin,
			Destination:    t.Destination,
			DepartureTime:  t.DepartureTime,
			BusPlate:       t.BusPlate,
			SeatsAvailable: t.SeatsAvailable,
		}
	}

	// Recent bookings
	var recent []struct {
		ID          uint
		BookingRef  string
		Origin      string
		Destination string
		SeatCount   int
		TotalAmount float64
		Status      string
		CreatedAt   time.Time
	}
	s.db.WithContext(ctx).Table("bookings").
		Select("bookings.id, bookings.booking_ref, trips.origin, trips.destination, bookings.seat_count, bookings.total_amount, bookings.status, bookings.created_at").
		Joins("LEFT JOIN trips ON bookings.trip_id = trips.id").
		Where("bookings.deleted_at IS NULL").
		Order("bookings.created_at DESC").
		Limit(10).
		Scan(&recent)

	data.RecentBookings = make([]BookingSummary, len(recent))
	for i, b := range recent {
		data.RecentBookings[i] = BookingSummary{
			ID:          b.ID,
			BookingRef:  b.BookingRef,
			Origin:      b.Origin,
			Destination: b.Destination,
			SeatCount:   b.SeatCount,
			TotalAmount: b.TotalAmount,
			Status:      b.Status,
			CreatedAt:   b.CreatedAt,
		}
	}

	return data, nil
}
