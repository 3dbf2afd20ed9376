package rdb

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New("记录已存在")
	// ErrConstraint 其他约束错误（外键、检查约束）
	ErrConstraint = errors.New("database constraint error")
	// ErrTokenUsed 验证令牌已被使用
	ErrTokenUsed = errors.New("验证令牌已被使用")
	// ErrTokenExpired 验证令牌已过期
	ErrTokenExpired = errors.New("验证令牌已过期")
)

// translateError 把驱动层错误归一化为仓库层错误。
// 数据库以 TranslateError: true 打开，这里再兜底匹配各驱动的原始错误文本。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return ErrConstraint
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "Duplicate entry"),
		strings.Contains(msg, "duplicate key value"):
		return ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "foreign key constraint"):
		return ErrConstraint
	}
	return err
}

// IsDuplicate 判断错误链中是否包含唯一约束冲突
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// normalizePage 统一分页参数：page 默认 1，pageSize 默认 def，上限 100
func normalizePage(page, pageSize, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// likePattern 生成不区分大小写的模糊匹配参数，配合 LOWER(col) LIKE ? 使用
func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
