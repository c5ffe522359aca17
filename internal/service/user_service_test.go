package service

import (
	"testing"

	"qahub_backend/internal/model"
	"qahub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "gopher")
	env.createUser(t, "taken")

	profile, err := env.users.UpdateProfile(user.ID, &UpdateProfileRequest{
		Bio:    "write Go, drink coffee",
		Avatar: "https://example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "write Go, drink coffee", profile.Bio)
	assert.Equal(t, "gopher", profile.Name)

	_, err = env.users.UpdateProfile(user.ID, &UpdateProfileRequest{Name: "taken"})
	assert.ErrorIs(t, err, util.ErrNameRegistered)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &model.User{Name: "gopher", Email: "g@example.com", Password: string(hashed), Role: model.RoleUser}
	require.NoError(t, env.userRepo.Create(user))

	err = env.users.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpass1",
	})
	assert.ErrorIs(t, err, util.ErrPasswordMismatch)

	err = env.users.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "oldpass",
		NewPassword: "newpass1",
	})
	require.NoError(t, err)

	updated, err := env.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpass1")))
}

func TestReputationFloor(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "gopher")

	require.NoError(t, env.userRepo.AddReputation(user.ID, 10))
	require.NoError(t, env.userRepo.AddReputation(user.ID, -25))

	updated, err := env.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Reputation)
}

func TestReputationLevel(t *testing.T) {
	cases := []struct {
		reputation int
		level      string
	}{
		{0, "new"},
		{150, "beginner"},
		{1500, "intermediate"},
		{6000, "advanced"},
		{20000, "expert"},
	}
	for _, c := range cases {
		u := model.User{Reputation: c.reputation}
		assert.Equal(t, c.level, u.ReputationLevel(), "reputation=%d", c.reputation)
	}
}

func TestUserLifecycle(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "gopher")

	// 停用后对外不可见
	require.NoError(t, env.users.Deactivate(user.ID))
	_, err := env.userRepo.FindByID(user.ID)
	assert.Error(t, err)

	// 重新启用恢复可见
	require.NoError(t, env.users.Activate(user.ID))
	_, err = env.userRepo.FindByID(user.ID)
	require.NoError(t, err)

	// 软删后 activate/deactivate 均不可用
	require.NoError(t, env.users.SoftDelete(user.ID))
	assert.Error(t, env.users.Activate(user.ID))

	// 恢复后回到活跃态
	require.NoError(t, env.users.Restore(user.ID))
	restored, err := env.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
	assert.False(t, restored.IsDeleted)
}

func TestAdminResetPassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "locked_out")

	require.NoError(t, env.users.ResetPassword(user.ID, "new-password-123"))

	updated, err := env.userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("new-password-123")))

	assert.ErrorIs(t, env.users.ResetPassword(99999, "whatever-pass"), util.ErrUserNotFound)
}

func TestAdminAdjustReputation(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "contributor")

	resp, err := env.users.AdjustReputation(user.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Reputation)

	// 扣减同样过下限保护
	resp, err = env.users.AdjustReputation(user.ID, -100)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Reputation)
}

func TestAdminViewsDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ghost")

	require.NoError(t, env.users.SoftDelete(user.ID))

	// 常规查询不可见
	_, err := env.users.GetProfile(user.ID)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	// 管理端查得到
	found, err := env.users.GetUserAny(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.True(t, found.IsDeleted)

	_, err = env.users.GetUserAny(99999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
