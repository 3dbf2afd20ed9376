package adapter

import (
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
)

// ToAdapterUser 实体 → 认证视图。nickname→name，avatar→image。
func ToAdapterUser(u *entities.User) *dto.AdapterUser {
	if u == nil {
		return nil
	}
	out := &dto.AdapterUser{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Username:      u.Username,
		Phone:         u.Phone,
		Status:        u.Status,
		LastLoginAt:   u.LastLoginAt,
	}
	if u.Nickname != "" {
		name := u.Nickname
		out.Name = &name
	}
	if u.Avatar != "" {
		image := u.Avatar
		out.Image = &image
	}
	return out
}

// UserFromAdapter 认证视图 → 新建实体
func UserFromAdapter(u dto.AdapterUser) *entities.User {
	out := &entities.User{
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Username:      u.Username,
		Phone:         u.Phone,
		Status:        u.Status,
		LastLoginAt:   u.LastLoginAt,
	}
	if u.Name != nil {
		out.Nickname = *u.Name
	}
	if u.Image != nil {
		out.Avatar = *u.Image
	}
	return out
}

// UpdateFields 只收集非 nil 字段，用于部分更新
func UpdateFields(u dto.AdapterUser) map[string]any {
	fields := map[string]any{}
	if u.Name != nil {
		fields["nickname"] = *u.Name
	}
	if u.Image != nil {
		fields["avatar"] = *u.Image
	}
	if u.Email != nil {
		fields["email"] = *u.Email
	}
	if u.EmailVerified != nil {
		fields["email_verified"] = *u.EmailVerified
	}
	if u.Username != nil {
		fields["username"] = *u.Username
	}
	if u.Phone != nil {
		fields["phone"] = *u.Phone
	}
	if u.Status != "" {
		fields["status"] = u.Status
	}
	if u.LastLoginAt != nil {
		fields["last_login_at"] = *u.LastLoginAt
	}
	return fields
}

// AccountFromAdapter 认证视图 → 外部账号实体
func AccountFromAdapter(a dto.AdapterAccount) *entities.Account {
	return &entities.Account{
		UserID:            a.UserID,
		Type:              a.Type,
		Provider:          a.Provider,
		ProviderAccountID: a.ProviderAccountID,
		RefreshToken:      a.RefreshToken,
		AccessToken:       a.AccessToken,
		ExpiresAt:         a.ExpiresAt,
		TokenType:         a.TokenType,
		Scope:             a.Scope,
		IDToken:           a.IDToken,
		SessionState:      a.SessionState,
	}
}

// ToAdapterSession 会话实体 → 认证视图
func ToAdapterSession(s *entities.Session) *dto.AdapterSession {
	if s == nil {
		return nil
	}
	return &dto.AdapterSession{
		SessionToken: s.SessionToken,
		UserID:       s.UserID,
		Expires:      s.Expires,
		UserAgent:    s.UserAgent,
		IPAddress:    s.IPAddress,
		IsMobile:     s.IsMobile,
	}
}
