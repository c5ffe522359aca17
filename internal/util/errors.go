package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrNameRegistered     = errors.New("该用户名已被使用")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("record not found")
	ErrSelfVote           = errors.New("cannot vote on your own content")
	ErrQuestionMismatch   = errors.New("answer does not belong to this question")
	ErrTagSynonymCycle    = errors.New("synonym chain would form a cycle")
	ErrTagNameTaken       = errors.New("tag name already exists")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrValidation         = errors.New("validation failed")
)
