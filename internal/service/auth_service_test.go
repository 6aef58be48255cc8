package service

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/dto"
	"github.com/noah-isme/challenge-api/internal/models"
	"github.com/noah-isme/challenge-api/internal/repository"
)

func newTestAuthService(t *testing.T, db *gorm.DB, client *redis.Client, ttl time.Duration) *authService {
	t.Helper()

	var cache SessionCache
	if client != nil {
		cache = NewSessionCache(client, time.Minute, testLogger())
	}

	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		cache,
		testValidator(),
		AuthOptions{SessionTTL: ttl, BcryptCost: bcrypt.MinCost},
		testLogger(),
	)
	return svc.(*authService)
}

func registerAndLogin(t *testing.T, svc AuthService, email string, role string) dto.LoginResponse {
	t.Helper()
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Email: email, Password: "secret1", Role: role, Name: "Test User"})
	require.NoError(t, err)

	login, err := svc.Login(ctx, dto.LoginRequest{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return login
}

func TestAuthServiceRegister(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(t, db, nil, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterRequest{Email: "ann@example.com", Password: "secret1", Role: "student", Name: " Ann "})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, models.RoleStudent, user.Role)
	require.Equal(t, "Ann", user.Name)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotEqual(t, "secret1", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	_, err = svc.Register(ctx, dto.RegisterRequest{Email: "ann@example.com", Password: "another", Role: "TEACHER", Name: "Ann Again"})
	require.ErrorIs(t, err, ErrEmailAlreadyExists)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(t, db, nil, time.Hour)
	ctx := context.Background()

	cases := []dto.RegisterRequest{
		{Email: "not-an-email", Password: "secret1", Role: "STUDENT", Name: "Bob"},
		{Email: "bob@example.com", Password: "123", Role: "STUDENT", Name: "Bob"},
		{Email: "bob@example.com", Password: "secret1", Role: "ADMIN", Name: "Bob"},
		{Email: "bob@example.com", Password: "secret1", Role: "STUDENT", Name: "   "},
	}
	for _, payload := range cases {
		_, err := svc.Register(ctx, payload)
		require.Error(t, err)
		require.True(t, isValidation(err), "payload %+v", payload)
	}
}

func TestAuthServiceLogin(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(t, db, nil, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "tina@example.com", Password: "secret1", Role: "TEACHER", Name: "Tina"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "tina@example.com", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidPassword)

	first, err := svc.Login(ctx, dto.LoginRequest{Email: "tina@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, first.Session.Token)
	require.True(t, first.Session.IsActive)
	require.NotNil(t, first.Session.ExpiresAt)
	require.Equal(t, models.RoleTeacher, first.User.Role)

	second, err := svc.Login(ctx, dto.LoginRequest{Email: "tina@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEqual(t, first.Session.Token, second.Session.Token)
}

func TestAuthServiceValidateToken(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(t, db, nil, time.Hour)
	ctx := context.Background()

	login := registerAndLogin(t, svc, "sam@example.com", "STUDENT")

	session, err := svc.ValidateToken(ctx, "  "+login.Session.Token+" ")
	require.NoError(t, err)
	require.Equal(t, login.User.ID, session.User.ID)
	require.Equal(t, models.RoleStudent, session.User.Role)

	_, err = svc.ValidateToken(ctx, "")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, "does-not-exist")
	require.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, db.Model(&models.Session{}).Where("token = ?", login.Session.Token).Update("is_active", false).Error)
	_, err = svc.ValidateToken(ctx, login.Session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthServiceSessionExpiry(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(t, db, nil, time.Hour)
	ctx := context.Background()

	login := registerAndLogin(t, svc, "eve@example.com", "STUDENT")

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := svc.ValidateToken(ctx, login.Session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthServiceLogout(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(t, db, nil, 0)
	ctx := context.Background()

	login := registerAndLogin(t, svc, "leo@example.com", "TEACHER")
	require.Nil(t, login.Session.ExpiresAt)

	require.NoError(t, svc.Logout(ctx, login.Session.Token))

	_, err := svc.ValidateToken(ctx, login.Session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	require.ErrorIs(t, svc.Logout(ctx, login.Session.Token), ErrInvalidToken)
}

func TestAuthServiceSessionCache(t *testing.T) {
	db := setupServiceDB(t)
	mr, client := setupRedis(t)
	svc := newTestAuthService(t, db, client, time.Hour)
	ctx := context.Background()

	login := registerAndLogin(t, svc, "cara@example.com", "STUDENT")
	key := sessionCacheKey(login.Session.Token)
	require.True(t, mr.Exists(key))

	// Flip the row behind the cache; a cached session still resolves.
	require.NoError(t, db.Model(&models.Session{}).Where("token = ?", login.Session.Token).Update("is_active", false).Error)
	session, err := svc.ValidateToken(ctx, login.Session.Token)
	require.NoError(t, err)
	require.Equal(t, login.User.ID, session.User.ID)

	require.NoError(t, db.Model(&models.Session{}).Where("token = ?", login.Session.Token).Update("is_active", true).Error)
	require.NoError(t, svc.Logout(ctx, login.Session.Token))
	require.False(t, mr.Exists(key))

	_, err = svc.ValidateToken(ctx, login.Session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionCacheTTLNeverOutlivesSession(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewSessionCache(client, time.Hour, testLogger())
	ctx := context.Background()

	expires := time.Now().Add(10 * time.Minute)
	cache.Set(ctx, dto.SessionResponse{Token: "short", IsActive: true, ExpiresAt: &expires})
	require.True(t, mr.Exists(sessionCacheKey("short")))
	require.LessOrEqual(t, mr.TTL(sessionCacheKey("short")), 10*time.Minute)

	expired := time.Now().Add(-time.Minute)
	cache.Set(ctx, dto.SessionResponse{Token: "gone", IsActive: true, ExpiresAt: &expired})
	require.False(t, mr.Exists(sessionCacheKey("gone")))

	cached, ok := cache.Get(ctx, "short")
	require.True(t, ok)
	require.Equal(t, "short", cached.Token)

	cache.Delete(ctx, "short")
	_, ok = cache.Get(ctx, "short")
	require.False(t, ok)
}

func TestMaskEmailAddress(t *testing.T) {
	require.Equal(t, "a***e@example.com", maskEmailAddress(" Alice@Example.com "))
	require.Equal(t, "b***@example.com", maskEmailAddress("bo@example.com"))
	require.Equal(t, "***", maskEmailAddress("@example.com"))
	require.Equal(t, "***", maskEmailAddress("nobody"))
	require.Equal(t, "", maskEmailAddress(""))

	for email, want := range map[string]string{
		"Ćelina@example.com": "ć***a@example.com",
		"żo@example.pl":      "ż***@example.pl",
		"日本語@example.jp":     "日***語@example.jp",
	} {
		masked := maskEmailAddress(email)
		require.True(t, utf8.ValidString(masked), email)
		require.Equal(t, want, masked)
	}
}
