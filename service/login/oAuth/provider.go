// Package oAuth 外部 OAuth 身份提供方：授权地址与回调换取用户资料。
package oAuth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
)

var (
	// ErrMissingConfig 提供方必需的配置为空，构造时立即失败
	ErrMissingConfig = errors.New("provider configuration missing")
	// ErrUnknownProvider 未注册的提供方
	ErrUnknownProvider = errors.New("unknown provider")
)

// Provider OAuth 身份提供方
type Provider interface {
	ID() string
	Type() enums.AccountType
	// AuthCodeURL 授权跳转地址，state 原样带回回调
	AuthCodeURL(state string) string
	// Exchange 用回调中的 code 换取用户资料与待保存的外部账号（UserID 未填）
	Exchange(ctx context.Context, code string) (*dto.OAuthProfile, *dto.AdapterAccount, error)
}

// Registry 按 ID 查找提供方
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.ID()] = p
	}
	return r
}

func (r *Registry) Get(id string) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return p, nil
}

// IDs 已注册的提供方，按字母序
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.providers))
	for id := range r.providers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CallbackURL 回调地址 <baseURL>/api/auth/callback/<provider>
func CallbackURL(baseURL, provider string) string {
	return strings.TrimRight(baseURL, "/") + "/api/auth/callback/" + provider
}

func requireConfig(provider string, values map[string]string) error {
	var missing []string
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s 缺少 %s", ErrMissingConfig, provider, strings.Join(missing, ", "))
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
