package routes

import (
	"transbus-fleetdesk/internal/adapters/http/handlers"
	"transbus-fleetdesk/internal/adapters/http/middleware"
	"transbus-fleetdesk/internal/adapters/persistence/repositories"
	"transbus-fleetdesk/internal/config"
	"transbus-fleetdesk/internal/core/domain"
	"transbus-fleetdesk/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)

	// Fleet repositories
	busRepo := repositories.NewBusRepository(db)
	driverRepo := repositories.NewDriverRepository(db)
	maintenanceRepo := repositories.NewMaintenanceRepository(db)
	tripRepo := repositories.NewTripRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, customerRepo, cfg)
	userService := services.NewUserService(userRepo)
	tripService := services.NewTripService(tripRepo, busRepo, driverRepo)
	bookingService := services.NewBookingService(bookingRepo, tripRepo, customerRepo)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	fleetHandler := handlers.NewFleetHandler(busRepo, driverRepo, maintenanceRepo)
	tripHandler := handlers.NewTripHandler(tripService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	customerHandler := handlers.NewCustomerHandler(customerRepo)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, fleetHandler,
		tripHandler, bookingHandler, customerHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	fleetHandler *handlers.FleetHandler,
	tripHandler *handlers.TripHandler,
	bookingHandler *handlers.BookingHandler,
	customerHandler *handlers.CustomerHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Fleet routes (staff)
	busRoutes := router.Group("/buses")
	busRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBusRoutes(busRoutes, fleetHandler)

	driverRoutes := router.Group("/drivers")
	driverRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDriverRoutes(driverRoutes, fleetHandler)

	maintenanceRoutes := router.Group("/maintenance")
	maintenanceRoutes.Use(middleware.AuthMiddleware(cfg))
	maintenanceRoutes.Use(middleware.ManagerOrAdmin())
	setupMaintenanceRoutes(maintenanceRoutes, fleetHandler)

	// Trip routes
	tripRoutes := router.Group("/trips")
	tripRoutes.Use(middleware.AuthMiddleware(cfg))
	setupTripRoutes(tripRoutes, tripHandler)

	// Booking routes
	bookingRoutes := router.Group("/bookings")
	bookingRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBookingRoutes(bookingRoutes, bookingHandler)

	// Customer routes
	customerRoutes := router.Group("/customers")
	customerRoutes.Use(middleware.AuthMiddleware(cfg))
	setupCustomerRoutes(customerRoutes, customerHandler)

	// Dashboard routes (staff only)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.StaffOnly())
	dashboardRoutes.Get("/", dashboardHandler.GetDashboard)
}

// setupAuthRoutes configures authentication routes.
// Login and register carry tighter rate limits than the global one.
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.StrictRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
	router.Put("/:id/role", handler.SetUserRole)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupBusRoutes configures bus routes.
// Reads are open to any staff role; writes need Manager/Admin.
func setupBusRoutes(router fiber.Router, handler *handlers.FleetHandler) {
	router.Get("/", middleware.StaffOnly(), handler.ListBuses)
	router.Get("/:id", middleware.StaffOnly(), handler.GetBus)

	writeRoutes := router.Group("")
	writeRoutes.Use(middleware.ManagerOrAdmin())
	writeRoutes.Post("/", handler.CreateBus)
	writeRoutes.Put("/:id", handler.UpdateBus)

	// Admin only
	router.Delete("/:id", middleware.AdminOnly(), handler.DeleteBus)
}

// setupDriverRoutes configures driver routes
func setupDriverRoutes(router fiber.Router, handler *handlers.FleetHandler) {
	router.Get("/", middleware.StaffOnly(), handler.ListDrivers)
	router.Get("/:id", middleware.StaffOnly(), handler.GetDriver)

	writeRoutes := router.Group("")
	writeRoutes.Use(middleware.ManagerOrAdmin())
	writeRoutes.Post("/", handler.CreateDriver)
	writeRoutes.Put("/:id", handler.UpdateDriver)

	router.Delete("/:id", middleware.AdminOnly(), handler.DeleteDriver)
}

// setupMaintenanceRoutes configures maintenance record routes (Manager/Admin)
func setupMaintenanceRoutes(router fiber.Router, handler *handlers.FleetHandler) {
	router.Get("/", handler.ListMaintenance)
	router.Get("/:id", handler.GetMaintenance)
	router.Post("/", handler.CreateMaintenance)
	router.Put("/:id", handler.UpdateMaintenance)
	router.Delete("/:id", handler.DeleteMaintenance)
}

// setupTripRoutes configures trip routes.
// Any authenticated user can browse trips; scheduling is dispatch work.
func setupTripRoutes(router fiber.Router, handler *handlers.TripHandler) {
	router.Get("/", handler.ListTrips)
	router.Get("/:id", handler.GetTrip)

	dispatchRoutes := router.Group("")
	dispatchRoutes.Use(middleware.RoleMiddleware(
		domain.RoleAdmin, domain.RoleManager, domain.RoleDispatcher,
	))
	dispatchRoutes.Post("/", handler.CreateTrip)
	dispatchRoutes.Put("/:id", handler.UpdateTrip)
	dispatchRoutes.Put("/:id/status", handler.ChangeTripStatus)

	router.Delete("/:id", middleware.ManagerOrAdmin(), handler.DeleteTrip)
}

// setupBookingRoutes configures booking routes
func setupBookingRoutes(router fiber.Router, handler *handlers.BookingHandler) {
	router.Post("/", middleware.CustomersOnly(), handler.CreateBooking)
	router.Get("/", handler.ListBookings)
	router.Get("/:id", handler.GetBooking)
	router.Put("/:id/confirm", middleware.StaffOnly(), handler.ConfirmBooking)
	router.Put("/:id/cancel", handler.CancelBooking)
}

// setupCustomerRoutes configures customer profile routes
func setupCustomerRoutes(router fiber.Router, handler *handlers.CustomerHandler) {
	// Own profile first so /me does not match /:id
	router.Get("/me", middleware.CustomersOnly(), handler.GetMyCustomerProfile)
	router.Put("/me", middleware.CustomersOnly(), handler.UpdateMyCustomerProfile)

	router.Get("/", middleware.ManagerOrAdmin(), handler.ListCustomers)
	router.Get("/:id", middleware.ManagerOrAdmin(), handler.GetCustomer)
	router.Put("/:id", middleware.ManagerOrAdmin(), handler.UpdateCustomer)
	router.Delete("/:id", middleware.AdminOnly(), handler.DeleteCustomer)
}
