package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *UserService {
	t.Helper()
	cfg := testutil.Config(t)
	db := testutil.NewDB(t, cfg)
	svc := NewUserService(db, cfg)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(&dto.RegisterRequest{
		Email:    "Test@EXAMPLE.com",
		Password: "test123",
		Name:     "Test name",
	})
	require.NoError(t, err)

	assert.Equal(t, "Test@example.com", user.Email)
	assert.Equal(t, "Test name", user.Name)
	assert.NotEqual(t, "test123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("test123")))

	authed, err := svc.Authenticate("Test@example.COM", "test123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&dto.RegisterRequest{Email: "taken@example.com", Password: "sample123"})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{"empty email", dto.RegisterRequest{Email: "", Password: "sample123"}, models.ErrEmailRequired},
		{"empty email short password", dto.RegisterRequest{Email: "", Password: "x"}, models.ErrEmailRequired},
		{"malformed email", dto.RegisterRequest{Email: "not-an-email", Password: "sample123"}, ErrInvalidEmail},
		{"short password", dto.RegisterRequest{Email: "short@example.com", Password: "te"}, ErrPasswordTooShort},
		{"duplicate", dto.RegisterRequest{Email: "taken@example.com", Password: "sample123"}, ErrEmailTaken},
		{"duplicate after normalization", dto.RegisterRequest{Email: "taken@EXAMPLE.com", Password: "sample123"}, ErrEmailTaken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(&tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, IsValidation(err))
		})
	}

	var count int64
	svc.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateSuperuser(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.CreateSuperuser("admin@example.com", "sample123")
	require.NoError(t, err)

	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
}

func TestAuthenticateFailures(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(&dto.RegisterRequest{Email: "user@example.com", Password: "sample123"})
	require.NoError(t, err)

	_, err = svc.Authenticate("user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "sample123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.db.Model(user).Update("is_active", false).Error)
	_, err = svc.Authenticate("user@example.com", "sample123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenAndRefresh(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(&dto.RegisterRequest{Email: "user@example.com", Password: "sample123"})
	require.NoError(t, err)

	pair, err := svc.Token(&dto.TokenRequest{Email: "user@example.com", Password: "sample123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, user.ID, pair.User.ID)

	parsed, err := jwt.Parse(pair.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testutil.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["sub"])

	next, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh tokens are single use")

	require.NoError(t, svc.Logout(user.ID, &dto.LogoutRequest{RefreshToken: next.RefreshToken}))
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: next.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshExpired(t *testing.T) {
	svc := newTestService(t)
	svc.cfg.JWTRefreshExpiry = -time.Minute

	_, err := svc.Register(&dto.RegisterRequest{Email: "user@example.com", Password: "sample123"})
	require.NoError(t, err)

	pair, err := svc.Token(&dto.TokenRequest{Email: "user@example.com", Password: "sample123"})
	require.NoError(t, err)

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateMe(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(&dto.RegisterRequest{Email: "user@example.com", Password: "sample123", Name: "Old"})
	require.NoError(t, err)
	_, err = svc.Register(&dto.RegisterRequest{Email: "other@example.com", Password: "sample123"})
	require.NoError(t, err)

	name := "Updated name"
	password := "newpassword123"
	updated, err := svc.UpdateMe(user, &dto.UpdateMeRequest{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = svc.Authenticate("user@example.com", password)
	assert.NoError(t, err)

	taken := "other@example.com"
	_, err = svc.UpdateMe(updated, &dto.UpdateMeRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	short := "abc"
	_, err = svc.UpdateMe(updated, &dto.UpdateMeRequest{Password: &short})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRefreshConsumedConcurrently(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(&dto.RegisterRequest{Email: "user@example.com", Password: "sample123"})
	require.NoError(t, err)
	pair, err := svc.Token(&dto.TokenRequest{Email: "user@example.com", Password: "sample123"})
	require.NoError(t, err)

	// Another request revokes the token between our read and our update.
	fired := false
	err = svc.db.Callback().Update().Before("gorm:update").Register("test:concurrent_refresh", func(d *gorm.DB) {
		if fired || d.Statement.Table != "refresh_tokens" {
			return
		}
		fired = true
		d.Session(&gorm.Session{NewDB: true}).Exec("UPDATE refresh_tokens SET revoked = ?", true)
	})
	require.NoError(t, err)

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.True(t, fired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	var issued int64
	svc.db.Model(&models.RefreshToken{}).Count(&issued)
	assert.Equal(t, int64(1), issued, "no new pair is issued for a consumed token")
}

func TestRegisterReportsLookupFailure(t *testing.T) {
	svc := newTestService(t)

	sqlDB, err := svc.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.Register(&dto.RegisterRequest{Email: "user@example.com", Password: "sample123"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	assert.False(t, IsValidation(err))
}
