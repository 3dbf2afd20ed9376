package utils

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Xushengqwer/keenmind_auth/models/enums"
)

var (
	// slugRegex 小写字母数字，用单个连字符分隔
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	// providerRegex 身份提供方标识
	providerRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)
)

// ValidateSlug 校验 slug 格式
func ValidateSlug(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}

// ValidUserStatus 校验用户状态，空值交给 omitempty 处理
func ValidUserStatus(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || enums.UserStatus(s).IsValid()
}

// ValidProvider 校验提供方标识格式，是否已启用由 Registry 判断
func ValidProvider(fl validator.FieldLevel) bool {
	return providerRegex.MatchString(fl.Field().String())
}

// RegisterCustomValidators 将自定义校验注册到 Gin 的 validator 引擎中。
// 注册后可在 DTO 的 binding tag 中使用 slug、userstatus、provider。
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterOn(v)
}

// RegisterOn 注册到指定的 validator 实例
func RegisterOn(v *validator.Validate) error {
	validations := map[string]validator.Func{
		"slug":       ValidateSlug,
		"userstatus": ValidUserStatus,
		"provider":   ValidProvider,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册验证器 '%s' 失败: %w", tag, err)
		}
	}
	return nil
}
