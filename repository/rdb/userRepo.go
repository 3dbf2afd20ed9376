package rdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// UserRepository 定义了与本地用户（User）数据存储相关的操作接口。
// - 需要参与事务的方法显式接收 db，调用方可以传入事务 tx。
// - 所有读取都会自动排除软删除的记录。
type UserRepository interface {
	// CreateUser 持久化一个新用户，唯一约束冲突返回 ErrDuplicate。
	CreateUser(ctx context.Context, db *gorm.DB, user *entities.User) error

	// GetUserByID 按 ID 读取未删除的用户，不检查状态。
	// - 未找到返回 commonerrors.ErrRepoNotFound。
	GetUserByID(ctx context.Context, db *gorm.DB, id ids.ID) (*entities.User, error)

	// GetActiveUserByID 按 ID 读取可认证的用户（未删除且未封禁）。
	GetActiveUserByID(ctx context.Context, id ids.ID) (*entities.User, error)

	// GetActiveUserByEmail 按邮箱读取可认证的用户。
	GetActiveUserByEmail(ctx context.Context, db *gorm.DB, email string) (*entities.User, error)

	// UpdateUserFields 按列名部分更新，fields 为空时直接返回。
	UpdateUserFields(ctx context.Context, db *gorm.DB, id ids.ID, fields map[string]any) error

	// UpdateStatus 修改用户状态。
	UpdateStatus(ctx context.Context, id ids.ID, status enums.UserStatus) error

	// SoftDeleteUser 将状态置为 INACTIVE 后软删除。
	SoftDeleteUser(ctx context.Context, db *gorm.DB, id ids.ID) error

	// TouchLastLogin 记录最近登录时间。
	TouchLastLogin(ctx context.Context, id ids.ID, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 userRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// activeScope 可认证用户：未软删除（GORM 自动处理）且未封禁
func activeScope(db *gorm.DB) *gorm.DB {
	return db.Where("users.status <> ?", enums.UserStatusBanned)
}

func (r *userRepository) CreateUser(ctx context.Context, db *gorm.DB, user *entities.User) error {
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("userRepo.CreateUser: 创建用户失败: %w", translateError(err))
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, db *gorm.DB, id ids.ID) (*entities.User, error) {
	var user entities.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("userRepo.GetUserByID: 查询用户失败 (UserID: %s): %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) GetActiveUserByID(ctx context.Context, id ids.ID) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Scopes(activeScope).Where("users.id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("userRepo.GetActiveUserByID: 查询用户失败 (UserID: %s): %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) GetActiveUserByEmail(ctx context.Context, db *gorm.DB, email string) (*entities.User, error) {
	var user entities.User
	err := db.WithContext(ctx).Scopes(activeScope).
		Where("users.email = ?", email).
		Order("users.id ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("userRepo.GetActiveUserByEmail: 按邮箱查询用户失败: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateUserFields(ctx context.Context, db *gorm.DB, id ids.ID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	// MySQL 的 RowsAffected 是“实际变化行数”，这里不据此判断是否存在
	err := db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return fmt.Errorf("userRepo.UpdateUserFields: 更新用户失败 (UserID: %s): %w", id, translateError(err))
	}
	return nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id ids.ID, status enums.UserStatus) error {
	err := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		return fmt.Errorf("userRepo.UpdateStatus: 更新用户状态失败 (UserID: %s): %w", id, err)
	}
	return nil
}

func (r *userRepository) SoftDeleteUser(ctx context.Context, db *gorm.DB, id ids.ID) error {
	if err := db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).
		Update("status", enums.UserStatusInactive).Error; err != nil {
		return fmt.Errorf("userRepo.SoftDeleteUser: 更新状态失败 (UserID: %s): %w", id, err)
	}
	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&entities.User{}).Error; err != nil {
		return fmt.Errorf("userRepo.SoftDeleteUser: 软删除用户失败 (UserID: %s): %w", id, err)
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id ids.ID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Update("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("userRepo.TouchLastLogin: 记录登录时间失败 (UserID: %s): %w", id, err)
	}
	return nil
}
