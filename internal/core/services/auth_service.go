package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/adapters/persistence/repositories"
	"transbus-fleetdesk/internal/config"
	"transbus-fleetdesk/internal/core/domain"
	"transbus-fleetdesk/internal/pkg/jwt"
	"transbus-fleetdesk/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidCustomerType = errors.New("invalid customer type")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	customerRepo     repositories.CustomerRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	customerRepo repositories.CustomerRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		customerRepo:     customerRepo,
		cfg:              cfg,
	}
}

// RegisterUserData represents the account part of registration input
type RegisterUserData struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" validate:"required,min=8"`
}

// RegisterCustomerData represents the customer profile part of registration input
type RegisterCustomerData struct {
	// Individual
	NationalID  string `json:"national_id"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	// Business
	CompanyName   string `json:"company_name"`
	TaxID         string `json:"tax_id"`
	ContactPerson string `json:"contact_person"`
	Address       string `json:"address"`
}

// RegisterInput represents registration input
type RegisterInput struct {
	UserData     RegisterUserData     `json:"userData"`
	CustomerData RegisterCustomerData `json:"customerData"`
	CustomerType string               `json:"customerType"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"token"`
	RefreshToken string               `json:"refresh_token"`
}

// Register creates an account plus a linked customer profile.
// If the profile creation fails, the just-created account is deleted so no
// orphaned login remains (compensating action, not a transaction).
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Resolve the customer type to a role
	role, ok := domain.RoleForCustomerType(domain.CustomerType(input.CustomerType))
	if !ok {
		return nil, ErrInvalidCustomerType
	}

	// 2. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, input.UserData.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	// 3. Hash password
	hashedPassword, err := password.Hash(input.UserData.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create account
	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(input.UserData.Email)),
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(input.UserData.FirstName),
		LastName:  strings.TrimSpace(input.UserData.LastName),
		Phone:     strings.TrimSpace(input.UserData.Phone),
		Role:      string(role),
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Unique index may win a race that ExistsByEmail missed
		if isDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// 5. Create linked customer profile
	customer := buildCustomer(user.ID, input)
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		// Compensate: remove the orphaned login. Best effort only, the
		// original failure is what the caller sees either way.
		if delErr := s.userRepo.HardDelete(ctx, user.ID); delErr != nil {
			log.Printf("⚠️ Failed to delete orphaned account %d after profile failure: %v", user.ID, delErr)
		}
		return nil, err
	}

	// 6. Generate tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 7. Store refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (%s)", user.Email, user.Role)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates a user.
// Order matters: the lock check runs before the password verifier (a locked
// attempt costs no bcrypt call and does not touch the counter), and the
// counter only moves on a password mismatch, never on inactive accounts.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Lock check, lazily cleared once the window has passed
	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	// 3. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 4. Verify password
	if !password.Verify(input.Password, user.Password) {
		lockUntil := time.Now().Add(s.cfg.Lockout.LockDuration)
		if incErr := s.userRepo.IncrementFailedLogins(ctx, user.ID, s.cfg.Lockout.MaxAttempts, lockUntil); incErr != nil {
			log.Printf("⚠️ Failed to record failed login for user %d: %v", user.ID, incErr)
		}
		return nil, ErrInvalidCredentials
	}

	// 5. Reset counter/lock and record the login
	if err := s.userRepo.ResetLoginState(ctx, user.ID, time.Now()); err != nil {
		return nil, err
	}

	// 6. Generate tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 7. Store refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Hash the token to find in DB
	tokenHash := password.HashToken(refreshToken)

	// 3. Find token in DB
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// 4. Check if token is revoked or expired
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 5. Get user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 6. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 7. Revoke old refresh token (Token Rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	// 8. Generate new tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 9. Store new refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenHours,
	)
	if err != nil {
		return nil, err
	}

	// Generate unique token ID
	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	expiresAt := jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays)

	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}

	return s.refreshTokenRepo.Create(ctx, token)
}

// buildCustomer maps registration input to a customer profile row
func buildCustomer(userID uint, input *RegisterInput) *models.Customer {
	customer := &models.Customer{
		UserID:       userID,
		CustomerType: input.CustomerType,
		Address:      strings.TrimSpace(input.CustomerData.Address),
	}

	switch domain.CustomerType(input.CustomerType) {
	case domain.CustomerTypeIndividual:
		customer.NationalID = strings.TrimSpace(input.CustomerData.NationalID)
		if dob, err := time.Parse("2006-01-02", input.CustomerData.DateOfBirth); err == nil {
			customer.DateOfBirth = &dob
		}
	case domain.CustomerTypeBusiness:
		customer.CompanyName = strings.TrimSpace(input.CustomerData.CompanyName)
		customer.TaxID = strings.TrimSpace(input.CustomerData.TaxID)
		customer.ContactPerson = strings.TrimSpace(input.CustomerData.ContactPerson)
	}

	return customer
}

// isDuplicateKeyError reports whether err came from a unique index violation
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL error 1062
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
