package admin

import (
	"context"
	"fmt"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// DefaultAdminIDs 未配置白名单时使用的管理员
var DefaultAdminIDs = []string{"872817149208"}

// PermissionChecker 判断用户是否拥有管理后台权限。
// 实现可以是静态白名单，也可以换成基于角色的查询，调用方不关心来源。
type PermissionChecker interface {
	IsAdmin(ctx context.Context, userID ids.ID) (bool, error)
}

// StaticAllowList 基于配置的固定管理员列表
type StaticAllowList struct {
	ids map[ids.ID]struct{}
}

// NewStaticAllowList 从配置构建白名单，任何一项不是合法 ID 都返回错误
func NewStaticAllowList(cfg *config.AdminConfig) (*StaticAllowList, error) {
	raw := DefaultAdminIDs
	if cfg != nil && len(cfg.UserIDs) > 0 {
		raw = cfg.UserIDs
	}
	set := make(map[ids.ID]struct{}, len(raw))
	for _, s := range raw {
		id, err := ids.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("adminConfig.user_ids: %w", err)
		}
		set[id] = struct{}{}
	}
	return &StaticAllowList{ids: set}, nil
}

func (l *StaticAllowList) IsAdmin(_ context.Context, userID ids.ID) (bool, error) {
	if userID.IsZero() {
		return false, nil
	}
	_, ok := l.ids[userID]
	return ok, nil
}
