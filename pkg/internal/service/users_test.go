package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/auth"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/service"
	"github.com/yeisme/sociojustice/pkg/internal/testutil"
	"github.com/yeisme/sociojustice/pkg/internal/types"
)

func newUserService(t *testing.T) (*service.UserService, *auth.Manager) {
	t.Helper()

	tokens := auth.NewManager(configs.AuthConfig{JWTSecret: "test-secret", Issuer: "test", TokenTTL: time.Hour})

	return service.NewUserServiceWith(repository.NewUserRepository(testutil.NewDB(t)), tokens, bcrypt.MinCost), tokens
}

func TestRegisterLoginApprove(t *testing.T) {
	svc, tokens := newUserService(t)
	ctx := context.Background()
	creds := &types.LoginRequest{Email: "juriste@example.org", Password: "s3cret-pass"}

	u, err := svc.Register(ctx, &types.RegisterRequest{Email: " Juriste@Example.org ", Password: creds.Password})
	require.NoError(t, err)
	assert.Equal(t, "juriste@example.org", u.Email)
	assert.Equal(t, string(model.RoleUser), u.Role)
	assert.False(t, u.Approved)

	_, err = svc.Register(ctx, &types.RegisterRequest{Email: "juriste@example.org", Password: "another-pass"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.Login(ctx, creds)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	approved, err := svc.Approve(ctx, "juriste@example.org")
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	resp, err := svc.Login(ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, u.ID, resp.User.ID)

	id, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.False(t, id.IsAdmin())

	_, err = svc.Login(ctx, &types.LoginRequest{Email: creds.Email, Password: "wrong-password"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "nobody@example.org", Password: "whatever1"})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Approve(ctx, "nobody@example.org")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	admin, err := svc.EnsureAdmin(ctx, "admin@example.org", "admin-password")
	require.NoError(t, err)
	assert.Equal(t, string(model.RoleAdmin), admin.Role)
	assert.True(t, admin.Approved)

	// 再次调用保持幂等
	again, err := svc.EnsureAdmin(ctx, "admin@example.org", "admin-password")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = svc.Register(ctx, &types.RegisterRequest{Email: "short@example.org", Password: "1234"})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}
