package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
)

type stubAuth struct {
	session *domain.Session
	err     error
	token   string
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*domain.Session, error) {
	s.token = token
	return s.session, s.err
}

func serve(auth Authenticator, header string) (*fasthttp.RequestCtx, bool) {
	var ctx fasthttp.RequestCtx
	if header != "" {
		ctx.Request.Header.Set("Authorization", header)
	}
	ctx.Request.Header.Set(httpcontext.HeaderUserID, "spoofed")

	called := false
	JWTAuth(auth, 0, nil)(func(*fasthttp.RequestCtx) { called = true })(&ctx)
	return &ctx, called
}

func TestJWTAuth_SetsIdentityHeaders(t *testing.T) {
	auth := &stubAuth{session: &domain.Session{ID: "s1", UserID: "u1", Role: domain.RoleAdmin}}

	ctx, called := serve(auth, "Bearer abc")
	assert.True(t, called)
	assert.Equal(t, "abc", auth.token)
	assert.Equal(t, "u1", string(ctx.Request.Header.Peek(httpcontext.HeaderUserID)))
	assert.Equal(t, "s1", string(ctx.Request.Header.Peek(httpcontext.HeaderSessionID)))
	assert.Equal(t, domain.RoleAdmin, string(ctx.Request.Header.Peek(httpcontext.HeaderUserRole)))
}

func TestJWTAuth_MissingToken(t *testing.T) {
	ctx, called := serve(&stubAuth{}, "")
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"code":"UNAUTHORIZED"`)
	assert.Empty(t, ctx.Request.Header.Peek(httpcontext.HeaderUserID))
}

func TestJWTAuth_RevokedSession(t *testing.T) {
	ctx, called := serve(&stubAuth{err: domain.ErrUnauthorized}, "abc")
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuth_StoreFailure(t *testing.T) {
	ctx, called := serve(&stubAuth{err: errors.New("redis: connection refused")}, "Bearer abc")
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
}
