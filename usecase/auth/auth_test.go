package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/testutil"
)

func newUseCase(t *testing.T) (*UseCase, *testutil.Store) {
	t.Helper()
	mem := testutil.NewStore()
	require.NoError(t, mem.Users.Upsert(context.Background(), &domain.User{ID: "u1", Role: domain.RoleMember, Status: "active"}))
	require.NoError(t, mem.Users.Upsert(context.Background(), &domain.User{ID: "blocked", Status: "suspended"}))
	uc := New(mem.Users, mem.Sessions, Config{
		Secret: "test-secret",
		Issuer: "tracker",
		TTL:    time.Hour,
		MaxTTL: 4 * time.Hour,
	}, nil)
	return uc, mem
}

func TestLogin_IssuesTokenBoundToSession(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	creds, err := uc.Login(ctx, "u1", 0)
	require.NoError(t, err)
	require.NotNil(t, creds.Session)
	assert.Equal(t, "u1", creds.Session.UserID)
	assert.Equal(t, domain.RoleMember, creds.Session.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), creds.ExpiresAt, 5*time.Second)

	claims, err := uc.ParseToken(creds.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, creds.Session.ID, claims.SessionID)

	session, err := uc.Authenticate(ctx, creds.Token)
	require.NoError(t, err)
	assert.Equal(t, creds.Session.ID, session.ID)
}

func TestLogin_ClampsTTL(t *testing.T) {
	uc, _ := newUseCase(t)

	creds, err := uc.Login(context.Background(), "u1", 48*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(4*time.Hour), creds.ExpiresAt, 5*time.Second)
}

func TestLogin_Rejections(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = uc.Login(ctx, "ghost", 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(ctx, "blocked", 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogout_RevokesToken(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	creds, err := uc.Login(ctx, "u1", 0)
	require.NoError(t, err)
	require.NoError(t, uc.Logout(ctx, creds.Session.ID))

	_, err = uc.Authenticate(ctx, creds.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogoutAll(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	first, err := uc.Login(ctx, "u1", 0)
	require.NoError(t, err)
	_, err = uc.Login(ctx, "u1", 0)
	require.NoError(t, err)

	removed, err := uc.LogoutAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = uc.GetSession(ctx, first.Session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRefresh_ExtendsSession(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	creds, err := uc.Login(ctx, "u1", time.Minute)
	require.NoError(t, err)

	refreshed, err := uc.Refresh(ctx, creds.Session.ID, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, creds.Session.ID, refreshed.Session.ID)
	assert.True(t, refreshed.ExpiresAt.After(creds.ExpiresAt))

	_, err = uc.Refresh(ctx, "missing", 0)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGetSession_PurgesExpired(t *testing.T) {
	uc, mem := newUseCase(t)
	ctx := context.Background()
	require.NoError(t, mem.Sessions.Save(ctx, &domain.Session{
		ID:        "stale",
		UserID:    "u1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := uc.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = mem.Sessions.Get(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestParseToken_RejectsForgedTokens(t *testing.T) {
	uc, _ := newUseCase(t)

	forged := func(secret string, method jwt.SigningMethod, claims Claims) string {
		signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}
	valid := Claims{
		UserID:    "u1",
		SessionID: "s1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tracker",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": forged("other-secret", jwt.SigningMethodHS256, valid),
		"wrong alg":    forged("test-secret", jwt.SigningMethodHS512, valid),
		"wrong issuer": forged("test-secret", jwt.SigningMethodHS256, Claims{
			UserID:           "u1",
			SessionID:        "s1",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
		}),
		"expired": forged("test-secret", jwt.SigningMethodHS256, Claims{
			UserID:    "u1",
			SessionID: "s1",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "tracker",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}),
		"no session": forged("test-secret", jwt.SigningMethodHS256, Claims{
			UserID:           "u1",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "tracker"},
		}),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.ParseToken(token)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized), "got %v", err)
		})
	}
}

func TestAuthenticate_RejectsSessionOfAnotherUser(t *testing.T) {
	uc, mem := newUseCase(t)
	ctx := context.Background()

	creds, err := uc.Login(ctx, "u1", 0)
	require.NoError(t, err)

	hijacked := *creds.Session
	hijacked.UserID = "u2"
	require.NoError(t, mem.Sessions.Save(ctx, &hijacked))

	_, err = uc.Authenticate(ctx, creds.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
