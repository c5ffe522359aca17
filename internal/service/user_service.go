package service

import (
	"qahub_backend/internal/model"
	"qahub_backend/internal/repository"
	"qahub_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"omitempty,min=2,max=50"`
	Bio    string `json:"bio" binding:"omitempty,max=500"`
	Avatar string `json:"avatar" binding:"omitempty,url"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type UserProfileResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Bio             string `json:"bio"`
	Avatar          string `json:"avatar"`
	Reputation      int    `json:"reputation"`
	ReputationLevel string `json:"reputationLevel"`
	IsVerified      bool   `json:"isVerified"`
}

func toUserProfile(user *model.User) *UserProfileResponse {
	return &UserProfileResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            string(user.Role),
		Bio:             user.Bio,
		Avatar:          user.Avatar,
		Reputation:      user.Reputation,
		ReputationLevel: user.ReputationLevel(),
		IsVerified:      user.IsVerified,
	}
}

func (s *UserService) GetProfile(userID uint) (*UserProfileResponse, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return toUserProfile(user), nil
}

func (s *UserService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*UserProfileResponse, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if req.Name != "" && req.Name != user.Name {
		if _, err := s.UserRepo.FindByName(req.Name); err == nil {
			return nil, util.ErrNameRegistered
		}
		user.Name = req.Name
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return toUserProfile(user), nil
}

func (s *UserService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return util.ErrPasswordMismatch
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.UserRepo.Update(user)
}

// GetUserAny 管理端查看用户，包含停用和已软删的账号
func (s *UserService) GetUserAny(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByIDAny(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}

// ResetPassword 管理员重置密码，无需旧密码
func (s *UserService) ResetPassword(userID uint, newPassword string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.UserRepo.Update(user)
}

// AdjustReputation 管理员手工调整声望，下限为 0
func (s *UserService) AdjustReputation(userID uint, delta int) (*UserProfileResponse, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		return nil, util.ErrUserNotFound
	}
	if err := s.UserRepo.AddReputation(userID, delta); err != nil {
		return nil, err
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return toUserProfile(user), nil
}

func (s *UserService) ListUsers(offset, limit int, search string, verified *bool, includeDeleted bool) ([]model.User, int64, error) {
	return s.UserRepo.FindWithPagination(offset, limit, search, verified, includeDeleted)
}

// SetDisabled 管理员封禁/解封
func (s *UserService) SetDisabled(userID uint, disabled bool) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	user.Disabled = disabled
	return s.UserRepo.Update(user)
}

func (s *UserService) SetVerified(userID uint, verified bool) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	user.IsVerified = verified
	return s.UserRepo.Update(user)
}

func (s *UserService) SetRole(userID uint, role model.UserRole) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	user.Role = role
	return s.UserRepo.Update(user)
}

func (s *UserService) Deactivate(userID uint) error {
	return s.UserRepo.Deactivate(userID)
}

func (s *UserService) Activate(userID uint) error {
	return s.UserRepo.Activate(userID)
}

func (s *UserService) SoftDelete(userID uint) error {
	return s.UserRepo.SoftDelete(userID)
}

func (s *UserService) Restore(userID uint) error {
	return s.UserRepo.Restore(userID)
}
