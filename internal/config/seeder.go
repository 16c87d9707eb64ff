package config

import (
	"log"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedFleetData(); err != nil {
		log.Printf("⚠️ Fleet seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin account.
// This is for development/testing only. In production, create the admin
// through a secure process and change the password immediately.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:     "admin@transbus.local",
		Password:  hashedPassword,
		FirstName: "System",
		LastName:  "Admin",
		Role:      "ADMIN",
		IsActive:  true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

// seedFleetData seeds a small starter fleet so a fresh install has
// something to schedule against
func (s *Seeder) seedFleetData() error {
	var count int64
	s.db.Model(&models.Bus{}).Count(&count)
	if count > 0 {
		return nil // Fleet already seeded
	}

	buses := []models.Bus{
		{PlateNumber: "TB-1001", Model: "Volvo 9700", Year: 2021, Capacity: 48, Status: models.BusStatusActive},
		{PlateNumber: "TB-1002", Model: "Scania Touring", Year: 2022, Capacity: 52, Status: models.BusStatusActive},
		{PlateNumber: "TB-1003", Model: "Mercedes-Benz Tourismo", Year: 2019, Capacity: 44, Status: models.BusStatusInMaintenance},
	}
	if err := s.db.Create(&buses).Error; err != nil {
		return err
	}

	drivers := []models.Driver{
		{
			EmployeeNo:    "DRV-001",
			FirstName:     "Marko",
			LastName:      "Petrov",
			Phone:         "+385911234567",
			LicenseNo:     "D-778001",
			LicenseExpiry: time.Now().AddDate(3, 0, 0),
			Status:        models.DriverStatusAvailable,
		},
		{
			EmployeeNo:    "DRV-002",
			FirstName:     "Ivana",
			LastName:      "Kovac",
			Phone:         "+385917654321",
			LicenseNo:     "D-778002",
			LicenseExpiry: time.Now().AddDate(2, 6, 0),
			Status:        models.DriverStatusAvailable,
		},
	}
	if err := s.db.Create(&drivers).Error; err != nil {
		return err
	}

	log.Printf("✅ Fleet seeded: %d buses, %d drivers", len(buses), len(drivers))
	return nil
}
