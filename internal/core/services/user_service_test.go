package services

import (
	"context"
	"testing"

	"transbus-fleetdesk/internal/adapters/persistence/models"
	"transbus-fleetdesk/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceFixture(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return NewUserService(repo), repo
}

func seedServiceUser(t *testing.T, repo *fakeUserRepo, email, role string) uint {
	t.Helper()
	hash, err := password.Hash("secret-pass-1")
	require.NoError(t, err)

	user := &models.User{
		Email:    email,
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user.ID
}

func TestSetUserRoleRejectsOwnAccount(t *testing.T) {
	svc, repo := newUserServiceFixture(t)
	adminID := seedServiceUser(t, repo, "admin@example.com", "ADMIN")

	_, err := svc.SetUserRole(context.Background(), adminID, adminID, "MANAGER")
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)
}

func TestSetUserRoleUnknownRole(t *testing.T) {
	svc, repo := newUserServiceFixture(t)
	adminID := seedServiceUser(t, repo, "admin@example.com", "ADMIN")
	targetID := seedServiceUser(t, repo, "staff@example.com", "DISPATCHER")

	_, err := svc.SetUserRole(context.Background(), adminID, targetID, "SUPERUSER")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestSetUserRole(t *testing.T) {
	svc, repo := newUserServiceFixture(t)
	adminID := seedServiceUser(t, repo, "admin@example.com", "ADMIN")
	targetID := seedServiceUser(t, repo, "staff@example.com", "DISPATCHER")

	updated, err := svc.SetUserRole(context.Background(), adminID, targetID, "MANAGER")
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", updated.Role)
	assert.Equal(t, "MANAGER", repo.users[targetID].Role)
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	svc, repo := newUserServiceFixture(t)
	adminID := seedServiceUser(t, repo, "admin@example.com", "ADMIN")

	err := svc.DeleteUser(context.Background(), adminID, adminID)
	assert.ErrorIs(t, err, ErrCannotDeleteSelf)
	assert.Contains(t, repo.users, adminID)
}

func TestDeleteUserNotFound(t *testing.T) {
	svc, repo := newUserServiceFixture(t)
	adminID := seedServiceUser(t, repo, "admin@example.com", "ADMIN")

	err := svc.DeleteUser(context.Background(), adminID, 9999)
	assert.ErrorIs(t, err, ErrUserNotFoundSvc)
}

func TestUpdateUserByAdminRejectsTakenEmail(t *testing.T) {
	svc, repo := newUserServiceFixture(t)
	seedServiceUser(t, repo, "taken@example.com", "DISPATCHER")
	targetID := seedServiceUser(t, repo, "staff@example.com", "DISPATCHER")

	email := "taken@example.com"
	_, err := svc.UpdateUserByAdmin(context.Background(), targetID, &UpdateUserByAdminInput{Email: &email})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	svc, repo := newUserServiceFixture(t)
	id := seedServiceUser(t, repo, "staff@example.com", "DISPATCHER")

	err := svc.ChangePassword(context.Background(), id, &ChangePasswordInput{
		OldPassword: "not-the-password",
		NewPassword: "brand-new-pass",
	})
	assert.ErrorIs(t, err, ErrOldPasswordWrong)
}

func TestChangePassword(t *testing.T) {
	svc, repo := newUserServiceFixture(t)
	id := seedServiceUser(t, repo, "staff@example.com", "DISPATCHER")

	err := svc.ChangePassword(context.Background(), id, &ChangePasswordInput{
		OldPassword: "secret-pass-1",
		NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)
	assert.True(t, password.Verify("brand-new-pass", repo.users[id].Password))
}
