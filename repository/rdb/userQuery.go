package rdb

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
)

// 允许模糊匹配的列，Key 为查询参数名
var userLikeColumns = map[string]string{
	"username": "users.username",
	"nickname": "users.nickname",
	"email":    "users.email",
	"phone":    "users.phone",
}

// UserQuery 管理端的用户分页查询
type UserQuery interface {
	// ListUsers 按条件分页查询未删除的用户，按创建时间倒序。
	// - 返回当前页记录和满足条件的总数。
	ListUsers(ctx context.Context, query *dto.UserQueryDTO) ([]entities.User, int64, error)
}

type userQuery struct {
	db *gorm.DB
}

// NewUserQuery 创建一个新的 userQuery 实例。
func NewUserQuery(db *gorm.DB) UserQuery {
	return &userQuery{db: db}
}

func (r *userQuery) ListUsers(ctx context.Context, query *dto.UserQueryDTO) ([]entities.User, int64, error) {
	db := r.db.WithContext(ctx).Model(&entities.User{})

	// 1. keyword 在四列上做 OR
	if kw := strings.TrimSpace(query.Keyword); kw != "" {
		pattern := likePattern(kw)
		db = db.Where(
			"LOWER(users.username) LIKE ? OR LOWER(users.nickname) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.phone) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	// 2. 单列模糊条件
	for param, value := range map[string]string{
		"username": query.Username,
		"nickname": query.Nickname,
		"email":    query.Email,
		"phone":    query.Phone,
	} {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		db = db.Where("LOWER("+userLikeColumns[param]+") LIKE ?", likePattern(value))
	}

	// 3. 状态精确匹配，合法性已在绑定阶段校验
	if query.Status != "" {
		db = db.Where("users.status = ?", query.Status)
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("userQuery.ListUsers: 查询总数失败: %w", err)
	}

	page, pageSize := normalizePage(query.Page, query.PageSize, 10)
	var users []entities.User
	err := db.Order("users.created_at DESC").Order("users.id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("userQuery.ListUsers: 查询用户列表失败: %w", err)
	}
	return users, total, nil
}
