package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/config"
	"transbus-fleetdesk/internal/core/services"
	"transbus-fleetdesk/internal/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ============================================================
// Minimal in-memory stores for wiring a real AuthService
// ============================================================

type memUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	u.ID = r.nextID
	u.Email = strings.ToLower(u.Email)
	r.nextID++
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *models.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uint) error     { delete(r.users, id); return nil }
func (r *memUserRepo) HardDelete(_ context.Context, id uint) error { delete(r.users, id); return nil }

func (r *memUserRepo) List(_ context.Context, _, _ int) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUserRepo) IncrementFailedLogins(_ context.Context, id uint, maxAttempts int, lockUntil time.Time) error {
	u := r.users[id]
	if u.FailedLoginAttempts+1 >= maxAttempts {
		lu := lockUntil
		u.LockedUntil = &lu
	}
	u.FailedLoginAttempts++
	return nil
}

func (r *memUserRepo) ResetLoginState(_ context.Context, id uint, lastLogin time.Time) error {
	u := r.users[id]
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	ll := lastLogin
	u.LastLoginAt = &ll
	return nil
}

type memTokenRepo struct {
	tokens []*models.RefreshToken
}

func (r *memTokenRepo) Create(_ context.Context, t *models.RefreshToken) error {
	t.ID = uint(len(r.tokens) + 1)
	r.tokens = append(r.tokens, t)
	return nil
}

func (r *memTokenRepo) GetByTokenHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	for _, t := range r.tokens {
		if t.TokenHash == hash && t.RevokedAt == nil {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memTokenRepo) Revoke(_ context.Context, id uint) error {
	for _, t := range r.tokens {
		if t.ID == id {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *memTokenRepo) RevokeByTokenHash(_ context.Context, hash string) error {
	for _, t := range r.tokens {
		if t.TokenHash == hash {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *memTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	for _, t := range r.tokens {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *memTokenRepo) DeleteExpired(_ context.Context) error { return nil }

type memCustomerRepo struct {
	customers map[uint]*models.Customer
	nextID    uint
}

func (r *memCustomerRepo) Create(_ context.Context, c *models.Customer) error {
	c.ID = r.nextID
	r.nextID++
	r.customers[c.ID] = c
	return nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) GetByUserID(_ context.Context, userID uint) (*models.Customer, error) {
	for _, c := range r.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) Update(_ context.Context, c *models.Customer) error { return nil }
func (r *memCustomerRepo) Delete(_ context.Context, id uint) error            { return nil }
func (r *memCustomerRepo) List(_ context.Context, _, _ int) ([]*models.Customer, int64, error) {
	return nil, 0, nil
}

// ============================================================
// Setup
// ============================================================

func authTestApp(t *testing.T) (*fiber.App, *memUserRepo) {
	t.Helper()

	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenHours: 24,
			RefreshTokenDays: 7,
		},
		Cookie: config.CookieConfig{
			Secure:   false,
			SameSite: "Strict",
		},
		Lockout: config.LockoutConfig{
			MaxAttempts:  5,
			LockDuration: 15 * time.Minute,
		},
	}

	users := &memUserRepo{users: make(map[uint]*models.User), nextID: 1}
	tokens := &memTokenRepo{}
	customers := &memCustomerRepo{customers: make(map[uint]*models.Customer), nextID: 1}

	authService := services.NewAuthService(users, tokens, customers, cfg)
	handler := NewAuthHandler(authService, cfg)

	app := fiber.New()
	app.Post("/auth/login", handler.Login)
	app.Post("/auth/register", handler.Register)
	app.Post("/auth/logout", handler.Logout)

	return app, users
}

func seedLoginUser(t *testing.T, users *memUserRepo, email, plaintext string, active bool) {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &models.User{
		Email:    email,
		Password: hash,
		Role:     "INDIVIDUAL_CUSTOMER",
		IsActive: active,
	}))
}

func doLogin(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

// ============================================================
// Tests
// ============================================================

func TestLoginMissingFields(t *testing.T) {
	app, _ := authTestApp(t)

	assert.Equal(t, fiber.StatusBadRequest, doLogin(t, app, `{"email":"a@x.com"}`))
	assert.Equal(t, fiber.StatusBadRequest, doLogin(t, app, `{"password":"secret"}`))
}

func TestLoginInvalidCredentials(t *testing.T) {
	app, users := authTestApp(t)
	seedLoginUser(t, users, "rider@example.com", "secret-pass-1", true)

	assert.Equal(t, fiber.StatusUnauthorized,
		doLogin(t, app, `{"email":"rider@example.com","password":"wrong"}`))
	assert.Equal(t, fiber.StatusUnauthorized,
		doLogin(t, app, `{"email":"nobody@example.com","password":"wrong"}`))
}

func TestLoginInactiveAccount(t *testing.T) {
	app, users := authTestApp(t)
	seedLoginUser(t, users, "rider@example.com", "secret-pass-1", false)

	assert.Equal(t, fiber.StatusForbidden,
		doLogin(t, app, `{"email":"rider@example.com","password":"secret-pass-1"}`))
}

func TestLoginLockoutReturns423(t *testing.T) {
	app, users := authTestApp(t)
	seedLoginUser(t, users, "rider@example.com", "secret-pass-1", true)

	for i := 0; i < 5; i++ {
		assert.Equal(t, fiber.StatusUnauthorized,
			doLogin(t, app, `{"email":"rider@example.com","password":"wrong"}`), "attempt %d", i+1)
	}

	// Locked now, even with the correct password
	assert.Equal(t, fiber.StatusLocked,
		doLogin(t, app, `{"email":"rider@example.com","password":"secret-pass-1"}`))
}

func TestLoginSetsSessionCookies(t *testing.T) {
	app, users := authTestApp(t)
	seedLoginUser(t, users, "rider@example.com", "secret-pass-1", true)

	req := httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"email":"rider@example.com","password":"secret-pass-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookies := resp.Header.Values("Set-Cookie")
	var tokenCookie, refreshCookie string
	for _, c := range cookies {
		if strings.HasPrefix(c, "token=") {
			tokenCookie = c
		}
		if strings.HasPrefix(c, "refreshToken=") {
			refreshCookie = c
		}
	}

	require.NotEmpty(t, tokenCookie)
	require.NotEmpty(t, refreshCookie)
	for _, c := range []string{tokenCookie, refreshCookie} {
		assert.Contains(t, c, "HttpOnly")
		assert.Contains(t, c, "SameSite=Strict")
	}
}

func TestRegisterInvalidCustomerType(t *testing.T) {
	app, _ := authTestApp(t)

	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{
		"userData": {"first_name":"Ana","last_name":"Horvat","email":"ana@example.com","password":"secret-pass-1"},
		"customerData": {},
		"customerType": "GOVERNMENT"
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	app, users := authTestApp(t)
	seedLoginUser(t, users, "ana@example.com", "whatever-pass", true)

	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{
		"userData": {"first_name":"Ana","last_name":"Horvat","email":"ana@example.com","password":"secret-pass-1"},
		"customerData": {"national_id":"123"},
		"customerType": "INDIVIDUAL"
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRegisterShortPassword(t *testing.T) {
	app, _ := authTestApp(t)

	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{
		"userData": {"first_name":"Ana","last_name":"Horvat","email":"ana@example.com","password":"short"},
		"customerData": {},
		"customerType": "INDIVIDUAL"
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogoutIsIdempotent(t *testing.T) {
	app, _ := authTestApp(t)

	// No session at all still returns 200 and clears cookies
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
