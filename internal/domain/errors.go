package domain

import (
	"errors"
	"fmt"
)

var (
	// 核心错误分类
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrBackendUnavailable = errors.New("backend unavailable")

	// 不存在
	ErrSongNotFound     = fmt.Errorf("song %w", ErrNotFound)
	ErrRequestNotFound  = fmt.Errorf("request %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrFeedbackNotFound = fmt.Errorf("feedback %w", ErrNotFound)

	// 歌曲校验
	ErrInvalidSongID    = errors.New("invalid song id")
	ErrInvalidSongTitle = errors.New("invalid song title")

	// 点歌校验
	ErrInvalidStatus = errors.New("invalid request status")

	// 用户相关
	ErrInvalidEmail       = errors.New("invalid email")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrInvalidBuilding    = errors.New("invalid building")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserSuspended      = fmt.Errorf("user suspended: %w", ErrForbidden)
	ErrIdentityMismatch   = errors.New("residence information does not match")

	// 意见反馈
	ErrInvalidFeedbackType = errors.New("invalid feedback type")
	ErrEmptyFeedback       = errors.New("feedback content is empty")
)

// Unavailable 包装存储层故障
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrBackendUnavailable, err)
}
