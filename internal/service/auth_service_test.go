package service

import (
	"testing"

	"qahub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(&RegisterRequest{
		Name:     "gopher",
		Email:    "gopher@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	// 密码入库前已哈希
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))

	resp, err := env.auth.Login(&LoginRequest{Email: "gopher@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.False(t, resp.User.LastLogin.IsZero())

	claims, err := util.ParseJWT(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRegisterDuplicates(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(&RegisterRequest{
		Name:     "gopher",
		Email:    "gopher@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = env.auth.Register(&RegisterRequest{
		Name:     "other",
		Email:    "gopher@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	_, err = env.auth.Register(&RegisterRequest{
		Name:     "gopher",
		Email:    "other@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, util.ErrNameRegistered)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(&RegisterRequest{
		Name:     "gopher",
		Email:    "gopher@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = env.auth.Login(&LoginRequest{Email: "gopher@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = env.auth.Login(&LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	// 被禁用的账号不能登录
	require.NoError(t, env.users.SetDisabled(user.ID, true))
	_, err = env.auth.Login(&LoginRequest{Email: "gopher@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
