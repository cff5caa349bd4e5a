package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/testutil"
)

type recordingBuffer struct {
	users []domain.User
	err   error
}

func (b *recordingBuffer) BufferProfile(_ context.Context, _ string, user *domain.User) error {
	if b.err != nil {
		return b.err
	}
	b.users = append(b.users, *user)
	return nil
}

func (b *recordingBuffer) BufferProject(context.Context, string, *domain.Project) error { return nil }
func (b *recordingBuffer) BufferTask(context.Context, string, *domain.Task) error { return nil }

func ptr(s string) *string { return &s }

func TestUpdateProfile_CreatesOnFirstWrite(t *testing.T) {
	mem := testutil.NewStore()
	uc := New(mem.Users, nil, nil)

	user, err := uc.UpdateProfile(context.Background(), "u1", Update{Name: ptr("Ana")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, domain.RoleMember, user.Role)

	stored, err := uc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.Name)
}

func TestUpdateProfile_KeepsUntouchedFields(t *testing.T) {
	mem := testutil.NewStore()
	require.NoError(t, mem.Users.Upsert(context.Background(), &domain.User{ID: "u1", Email: "ana@example.com", Name: "Ana", Role: domain.RoleMember}))
	uc := New(mem.Users, nil, nil)

	user, err := uc.UpdateProfile(context.Background(), "u1", Update{Name: ptr("Ana M.")})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana M.", user.Name)
}

func TestUpdateProfile_RoleChanges(t *testing.T) {
	mem := testutil.NewStore()
	ctx := context.Background()
	require.NoError(t, mem.Users.Upsert(ctx, &domain.User{ID: "member", Role: domain.RoleMember}))
	require.NoError(t, mem.Users.Upsert(ctx, &domain.User{ID: "admin", Role: domain.RoleAdmin}))
	uc := New(mem.Users, nil, nil)

	_, err := uc.UpdateProfile(ctx, "member", Update{Role: ptr(domain.RoleAdmin)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.UpdateProfile(ctx, "admin", Update{Role: ptr("overlord")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	user, err := uc.UpdateProfile(ctx, "admin", Update{Role: ptr(domain.RoleClient)})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, user.Role)

	_, err = uc.UpdateProfile(ctx, "member", Update{Role: ptr(domain.RoleMember)})
	assert.NoError(t, err)
}

func TestUpdateProfile_BuffersOnStorageFailure(t *testing.T) {
	mem := testutil.NewStore()
	buf := &recordingBuffer{}
	uc := New(mem.Users, buf, nil)
	mem.Users.Err = errors.New("connection refused")

	_, err := uc.UpdateProfile(context.Background(), "u1", Update{})
	require.Error(t, err, "lookup failures are not buffered")

	mem.Users.Err = nil
	require.NoError(t, mem.Users.Upsert(context.Background(), &domain.User{ID: "u1"}))
	uc.users = failingUpserts{mem.Users}

	user, err := uc.UpdateProfile(context.Background(), "u1", Update{Name: ptr("Ana")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	require.Len(t, buf.users, 1)
	assert.Equal(t, "Ana", buf.users[0].Name)

	buf.err = errors.New("disk full")
	_, err = uc.UpdateProfile(context.Background(), "u1", Update{})
	assert.Error(t, err)
}

type failingUpserts struct {
	*testutil.Users
}

func (failingUpserts) Upsert(context.Context, *domain.User) error {
	return errors.New("connection refused")
}
