package enums

import "fmt"

// UserStatus 用户生命周期状态
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE" // 已注销
	UserStatusLocked   UserStatus = "LOCKED"   // 管理员锁定
	UserStatusBanned   UserStatus = "BANNED"   // 封禁，不再视为可认证用户
)

// IsValid 是否为已定义的状态
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusLocked, UserStatusBanned:
		return true
	}
	return false
}

// CanAccessProtected 只有 ACTIVE 用户可以访问受保护资源
func (s UserStatus) CanAccessProtected() bool {
	return s == UserStatusActive
}

// ParseUserStatus 从查询参数解析状态
func ParseUserStatus(s string) (UserStatus, error) {
	status := UserStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("未知的用户状态: %s", s)
	}
	return status, nil
}
