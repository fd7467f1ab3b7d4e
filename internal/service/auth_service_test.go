package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/JulianoPassing/scc-tickets/internal/auth"
	"github.com/JulianoPassing/scc-tickets/internal/domain"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *memStaffRepo) {
	t.Helper()
	staffRepo := newMemStaffRepo()
	svc := NewAuthService(AuthDependencies{
		UserRepo:  newMemUserRepo(),
		StaffRepo: staffRepo,
		Tokens:    auth.NewTokenManager("test-secret", time.Hour),
	})
	return svc, staffRepo
}

func TestSeedStaffThenLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	seeded, err := svc.SeedStaff(context.Background(), "admin", "hunter22", "Boss", domain.StaffRoleCEO, bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEmpty(t, seeded.ID)
	assert.True(t, seeded.Active)
	require.NotNil(t, seeded.PasswordHash)

	staff, session, err := svc.LoginStaff(context.Background(), "admin", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, domain.StaffRoleCEO, staff.Role)
	assert.NotEmpty(t, session.Token)

	_, _, err = svc.LoginStaff(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSeedStaffRefreshesExistingAccount(t *testing.T) {
	svc, staffRepo := newAuthFixture(t)

	first, err := svc.SeedStaff(context.Background(), "admin", "old-pass", "", domain.StaffRoleCEO, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, "admin", first.Name)

	second, err := svc.SeedStaff(context.Background(), "admin", "new-pass", "Boss", domain.StaffRoleDev, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := staffRepo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StaffRoleDev, all[0].Role)

	_, _, err = svc.LoginStaff(context.Background(), "admin", "old-pass")
	require.Error(t, err)
	_, _, err = svc.LoginStaff(context.Background(), "admin", "new-pass")
	require.NoError(t, err)
}

func TestSeedStaffValidation(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.SeedStaff(context.Background(), "", "secret", "", domain.StaffRoleCEO, bcrypt.MinCost)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	_, err = svc.SeedStaff(context.Background(), "admin", "secret", "", domain.StaffRole("INTERN"), bcrypt.MinCost)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}
