package services

import (
	"context"
	"log"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs scheduled housekeeping jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	tripRepo         *repositories.TripRepository
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: repositories.NewRefreshTokenRepository(db),
		tripRepo:         repositories.NewTripRepository(db),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// Purge expired refresh-token rows daily at 03:00
	s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens)

	// Close out departed trips whose arrival time has passed, every 15 minutes
	s.cron.AddFunc("*/15 * * * *", s.completeOverdueTrips)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Failed to purge expired refresh tokens: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}

func (s *CronService) completeOverdueTrips() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.tripRepo.CompleteOverdue(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to complete overdue trips: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ %d overdue trip(s) marked completed", n)
	}
}
