package rdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Xushengqwer/go-common/commonerrors"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// AccountRepository 定义了外部账号（Account）的存取接口。
// - (provider, provider_account_id) 由唯一索引保证全局唯一，重复插入返回 ErrDuplicate。
type AccountRepository interface {
	CreateAccount(ctx context.Context, db *gorm.DB, account *entities.Account) error

	// GetAccount 按提供方标识读取外部账号，未找到返回 commonerrors.ErrRepoNotFound。
	GetAccount(ctx context.Context, db *gorm.DB, provider, providerAccountID string) (*entities.Account, error)

	// GetUserByAccount 读取外部账号所属的可认证用户。
	// - 所属用户已被软删除或封禁时同样返回 commonerrors.ErrRepoNotFound。
	GetUserByAccount(ctx context.Context, db *gorm.DB, provider, providerAccountID string) (*entities.User, error)

	// ListAccountsByUser 列出用户绑定的全部外部账号，按创建时间升序。
	ListAccountsByUser(ctx context.Context, userID ids.ID) ([]entities.Account, error)

	// DeleteAccount 解绑，记录不存在返回 commonerrors.ErrRepoNotFound。
	DeleteAccount(ctx context.Context, db *gorm.DB, provider, providerAccountID string) error

	// DeleteAccountsByUser 删除用户的全部外部账号。
	DeleteAccountsByUser(ctx context.Context, db *gorm.DB, userID ids.ID) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建一个新的 accountRepository 实例。
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateAccount(ctx context.Context, db *gorm.DB, account *entities.Account) error {
	if err := db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("accountRepo.CreateAccount: 绑定外部账号失败 (Provider: %s): %w", account.Provider, translateError(err))
	}
	return nil
}

func (r *accountRepository) GetAccount(ctx context.Context, db *gorm.DB, provider, providerAccountID string) (*entities.Account, error) {
	var account entities.Account
	err := db.WithContext(ctx).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("accountRepo.GetAccount: 查询外部账号失败 (Provider: %s): %w", provider, err)
	}
	return &account, nil
}

func (r *accountRepository) GetUserByAccount(ctx context.Context, db *gorm.DB, provider, providerAccountID string) (*entities.User, error) {
	var user entities.User
	err := db.WithContext(ctx).
		Joins("JOIN accounts ON accounts.user_id = users.id").
		Scopes(activeScope).
		Where("accounts.provider = ? AND accounts.provider_account_id = ?", provider, providerAccountID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("accountRepo.GetUserByAccount: 按外部账号查询用户失败 (Provider: %s): %w", provider, err)
	}
	return &user, nil
}

func (r *accountRepository) ListAccountsByUser(ctx context.Context, userID ids.ID) ([]entities.Account, error) {
	var accounts []entities.Account
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("accountRepo.ListAccountsByUser: 查询绑定账号失败 (UserID: %s): %w", userID, err)
	}
	return accounts, nil
}

func (r *accountRepository) DeleteAccount(ctx context.Context, db *gorm.DB, provider, providerAccountID string) error {
	result := db.WithContext(ctx).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		Delete(&entities.Account{})
	if result.Error != nil {
		return fmt.Errorf("accountRepo.DeleteAccount: 解绑外部账号失败 (Provider: %s): %w", provider, result.Error)
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

func (r *accountRepository) DeleteAccountsByUser(ctx context.Context, db *gorm.DB, userID ids.ID) error {
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.Account{}).Error; err != nil {
		return fmt.Errorf("accountRepo.DeleteAccountsByUser: 删除用户外部账号失败 (UserID: %s): %w", userID, err)
	}
	return nil
}
