package repositories

import (
	"context"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
)

// UserRepository defines the credential store interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	HardDelete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// IncrementFailedLogins atomically bumps the failed-attempt counter and,
	// when the new count reaches maxAttempts, sets locked_until in the same
	// statement. Concurrent login attempts on one account must not race.
	IncrementFailedLogins(ctx context.Context, id uint, maxAttempts int, lockUntil time.Time) error

	// ResetLoginState zeroes the failed-attempt counter, clears any lock and
	// records the login time
	ResetLoginState(ctx context.Context, id uint, lastLogin time.Time) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// CustomerRepository defines customer profile repository interface
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error)
}
