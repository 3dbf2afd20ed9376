package userList

import (
	"context"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
)

// UserListQueryService 管理后台的用户列表查询。
// 使用场景:
// - 用户管理页面按关键字、单列条件与状态筛选，并分页展示。
type UserListQueryService interface {
	// List 分页查询未注销的用户，按创建时间倒序。
	// 参数:
	//  - query: 已通过绑定校验的查询条件；page 默认 1，pageSize 默认 10、上限 100。
	// 返回:
	//  - *vo.UserListVO: 当前页与总数。
	//  - error: 仓库失败时为 commonerrors.ErrSystemError。
	List(ctx context.Context, query *dto.UserQueryDTO) (*vo.UserListVO, error)
}

type userListQueryService struct {
	repo   rdb.UserQuery
	logger *core.ZapLogger
}

// NewUserListQueryService 创建 UserListQueryService
func NewUserListQueryService(repo rdb.UserQuery, logger *core.ZapLogger) UserListQueryService {
	return &userListQueryService{repo: repo, logger: logger}
}

func (s *userListQueryService) List(ctx context.Context, query *dto.UserQueryDTO) (*vo.UserListVO, error) {
	const operation = "UserListQueryService.List"
	if query == nil {
		query = &dto.UserQueryDTO{}
	}
	s.logger.Info("开始查询用户列表", zap.String("operation", operation), zap.Any("query", query))

	users, total, err := s.repo.ListUsers(ctx, query)
	if err != nil {
		s.logger.Error("调用仓库查询用户列表失败",
			zap.String("operation", operation),
			zap.Any("query", query),
			zap.Error(err),
		)
		return nil, commonerrors.ErrSystemError
	}

	items := make([]vo.UserVO, 0, len(users))
	for i := range users {
		items = append(items, ToUserVO(&users[i]))
	}
	s.logger.Info("成功查询用户列表",
		zap.String("operation", operation),
		zap.Int64("total", total),
		zap.Int("returned", len(items)),
	)
	return &vo.UserListVO{Items: items, Total: total}, nil
}

// ToUserVO 用户实体 → 管理端用户行
func ToUserVO(u *entities.User) vo.UserVO {
	return vo.UserVO{
		ID:          u.ID,
		Username:    u.Username,
		Nickname:    u.Nickname,
		Avatar:      u.Avatar,
		Email:       u.Email,
		Phone:       u.Phone,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
