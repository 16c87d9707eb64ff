package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/config"
	"transbus-fleetdesk/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ============================================================
// In-memory fakes
// ============================================================

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	email := strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == email {
			return errors.New("Duplicate entry '" + email + "' for key 'users.email'")
		}
	}
	user.ID = r.nextID
	user.Email = email
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) HardDelete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]*models.User, int64, error) {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) IncrementFailedLogins(_ context.Context, id uint, maxAttempts int, lockUntil time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if u.FailedLoginAttempts+1 >= maxAttempts {
		lu := lockUntil
		u.LockedUntil = &lu
	}
	u.FailedLoginAttempts++
	return nil
}

func (r *fakeUserRepo) ResetLoginState(_ context.Context, id uint, lastLogin time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	ll := lastLogin
	u.LastLoginAt = &ll
	return nil
}

type fakeRefreshTokenRepo struct {
	tokens []*models.RefreshToken
	nextID uint
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{nextID: 1}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	token.ID = r.nextID
	r.nextID++
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	for _, t := range r.tokens {
		if t.ID == id {
			now := time.Now()
			t.RevokedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if !t.IsExpired() {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	return nil
}

func (r *fakeRefreshTokenRepo) activeCount(userID uint) int {
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fakeCustomerRepo struct {
	customers  map[uint]*models.Customer
	nextID     uint
	failCreate error
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uint]*models.Customer), nextID: 1}
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *models.Customer) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	customer.ID = r.nextID
	r.nextID++
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetByUserID(_ context.Context, userID uint) (*models.Customer, error) {
	for _, c := range r.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *models.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uint) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) List(_ context.Context, _, _ int) ([]*models.Customer, int64, error) {
	out := make([]*models.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

// ============================================================
// Test setup
// ============================================================

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenHours: 24,
			RefreshTokenDays: 7,
		},
		Lockout: config.LockoutConfig{
			MaxAttempts:  5,
			LockDuration: 15 * time.Minute,
		},
	}
}

type authFixture struct {
	svc       *AuthService
	users     *fakeUserRepo
	tokens    *fakeRefreshTokenRepo
	customers *fakeCustomerRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	tokens := newFakeRefreshTokenRepo()
	customers := newFakeCustomerRepo()
	return &authFixture{
		svc:       NewAuthService(users, tokens, customers, testConfig()),
		users:     users,
		tokens:    tokens,
		customers: customers,
	}
}

func (f *authFixture) seedUser(t *testing.T, email, plaintext string, active bool) *models.User {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)

	user := &models.User{
		Email:    email,
		Password: hash,
		Role:     "INDIVIDUAL_CUSTOMER",
		IsActive: active,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// ============================================================
// Login
// ============================================================

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "rider@example.com", "secret-pass-1", true)

	resp, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "rider@example.com", resp.User.Email)

	stored := f.users.users[resp.User.ID]
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
	assert.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, 1, f.tokens.activeCount(resp.User.ID))
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "Rider@Example.COM", "secret-pass-1", true)

	_, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "secret-pass-1",
	})
	assert.NoError(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPasswordIncrementsCounter(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "rider@example.com", "secret-pass-1", true)

	_, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stored := f.users.users[user.ID]
	assert.Equal(t, 1, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLoginLocksAfterMaxAttempts(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "rider@example.com", "secret-pass-1", true)

	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(context.Background(), &LoginInput{
			Email:    "rider@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	stored := f.users.users[user.ID]
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockedUntil)
	assert.True(t, stored.LockedUntil.After(time.Now()))

	// Sixth attempt is rejected with the locked signal even though the
	// password is correct
	_, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "secret-pass-1",
	})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginAfterLockExpiryResetsCounter(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "rider@example.com", "secret-pass-1", true)

	expired := time.Now().Add(-time.Minute)
	f.users.users[user.ID].FailedLoginAttempts = 5
	f.users.users[user.ID].LockedUntil = &expired

	resp, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	stored := f.users.users[user.ID]
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLoginInactiveAccountDoesNotTouchCounter(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "rider@example.com", "secret-pass-1", false)

	// Correct password on an inactive account
	_, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "secret-pass-1",
	})
	assert.ErrorIs(t, err, ErrUserInactive)

	// Wrong password on an inactive account hits the inactive check first
	_, err = f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrUserInactive)

	assert.Zero(t, f.users.users[user.ID].FailedLoginAttempts)
}

// ============================================================
// Register
// ============================================================

func individualRegisterInput(email string) *RegisterInput {
	return &RegisterInput{
		UserData: RegisterUserData{
			FirstName: "Ana",
			LastName:  "Horvat",
			Email:     email,
			Password:  "secret-pass-1",
		},
		CustomerData: RegisterCustomerData{
			NationalID:  "12345678901",
			DateOfBirth: "1990-04-01",
			Address:     "Main Street 1",
		},
		CustomerType: "INDIVIDUAL",
	}
}

func TestRegisterIndividual(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Register(context.Background(), individualRegisterInput("ana@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "INDIVIDUAL_CUSTOMER", resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)

	customer, err := f.customers.GetByUserID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "INDIVIDUAL", customer.CustomerType)
	assert.Equal(t, "12345678901", customer.NationalID)
}

func TestRegisterBusinessRole(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Register(context.Background(), &RegisterInput{
		UserData: RegisterUserData{
			FirstName: "Iva",
			LastName:  "Novak",
			Email:     "office@acme.example.com",
			Password:  "secret-pass-1",
		},
		CustomerData: RegisterCustomerData{
			CompanyName:   "Acme d.o.o.",
			TaxID:         "HR123456789",
			ContactPerson: "Iva Novak",
		},
		CustomerType: "BUSINESS",
	})
	require.NoError(t, err)
	assert.Equal(t, "BUSINESS_CUSTOMER", resp.User.Role)
}

func TestRegisterInvalidCustomerType(t *testing.T) {
	f := newAuthFixture(t)

	input := individualRegisterInput("ana@example.com")
	input.CustomerType = "GOVERNMENT"

	_, err := f.svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidCustomerType)
	assert.Empty(t, f.users.users)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "ana@example.com", "whatever-pass", true)

	_, err := f.svc.Register(context.Background(), individualRegisterInput("Ana@Example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Len(t, f.users.users, 1)
}

func TestRegisterProfileFailureLeavesNoOrphanAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.customers.failCreate = errors.New("customers table unavailable")

	_, err := f.svc.Register(context.Background(), individualRegisterInput("ana@example.com"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)

	// The compensating delete removed the half-created account
	assert.Empty(t, f.users.users)

	// A retry after the fault clears succeeds with the same email
	f.customers.failCreate = nil
	_, err = f.svc.Register(context.Background(), individualRegisterInput("ana@example.com"))
	assert.NoError(t, err)
}

// ============================================================
// Refresh / logout
// ============================================================

func TestRefreshTokenRotation(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "rider@example.com", "secret-pass-1", true)

	login, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token was revoked by rotation and cannot be replayed
	_, err = f.svc.RefreshToken(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenGarbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "rider@example.com", "secret-pass-1", true)

	login, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "rider@example.com",
		Password: "secret-pass-1",
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.tokens.activeCount(user.ID))

	require.NoError(t, f.svc.Logout(context.Background(), login.RefreshToken))
	assert.Zero(t, f.tokens.activeCount(user.ID))

	_, err = f.svc.RefreshToken(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "rider@example.com", "secret-pass-1", true)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(context.Background(), &LoginInput{
			Email:    "rider@example.com",
			Password: "secret-pass-1",
		})
		require.NoError(t, err)
	}
	require.Equal(t, 3, f.tokens.activeCount(user.ID))

	require.NoError(t, f.svc.LogoutAll(context.Background(), user.ID))
	assert.Zero(t, f.tokens.activeCount(user.ID))
}
