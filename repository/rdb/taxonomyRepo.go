package rdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Xushengqwer/go-common/commonerrors"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// DomainRepository 知识领域存取接口
// - slug 冲突返回 ErrDuplicate，未找到（含软删除）返回 commonerrors.ErrRepoNotFound
type DomainRepository interface {
	Create(ctx context.Context, domain *entities.Domain) error
	GetByID(ctx context.Context, id ids.ID) (*entities.Domain, error)
	Update(ctx context.Context, id ids.ID, fields map[string]any) error
	Delete(ctx context.Context, id ids.ID) error
	List(ctx context.Context, query *dto.TaxonomyQueryDTO) ([]entities.Domain, int64, error)
}

// TopicRepository 知识主题存取接口，语义同 DomainRepository
type TopicRepository interface {
	Create(ctx context.Context, topic *entities.Topic) error
	GetByID(ctx context.Context, id ids.ID) (*entities.Topic, error)
	Update(ctx context.Context, id ids.ID, fields map[string]any) error
	Delete(ctx context.Context, id ids.ID) error
	List(ctx context.Context, query *dto.TaxonomyQueryDTO) ([]entities.Topic, int64, error)
}

// taxonomyRepository 领域与主题共用一套实现，T 为实体类型
type taxonomyRepository[T entities.Domain | entities.Topic] struct {
	db   *gorm.DB
	name string
}

// NewDomainRepository 创建领域仓库
func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &taxonomyRepository[entities.Domain]{db: db, name: "domainRepo"}
}

// NewTopicRepository 创建主题仓库
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &taxonomyRepository[entities.Topic]{db: db, name: "topicRepo"}
}

func (r *taxonomyRepository[T]) Create(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("%s.Create: 创建失败: %w", r.name, translateError(err))
	}
	return nil
}

func (r *taxonomyRepository[T]) GetByID(ctx context.Context, id ids.ID) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("%s.GetByID: 查询失败 (ID: %s): %w", r.name, id, err)
	}
	return &item, nil
}

func (r *taxonomyRepository[T]) Update(ctx context.Context, id ids.ID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	var model T
	if err := r.db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("%s.Update: 更新失败 (ID: %s): %w", r.name, id, translateError(err))
	}
	return nil
}

func (r *taxonomyRepository[T]) Delete(ctx context.Context, id ids.ID) error {
	var model T
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if result.Error != nil {
		return fmt.Errorf("%s.Delete: 删除失败 (ID: %s): %w", r.name, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

func (r *taxonomyRepository[T]) List(ctx context.Context, query *dto.TaxonomyQueryDTO) ([]T, int64, error) {
	var model T
	db := r.db.WithContext(ctx).Model(&model)

	// 精确条件优先于 search
	exact := false
	for column, value := range map[string]string{"name_zh": query.NameZh, "name_en": query.NameEn, "slug": query.Slug} {
		if value != "" {
			db = db.Where(column+" = ?", value)
			exact = true
		}
	}
	if s := strings.TrimSpace(query.Search); s != "" && !exact {
		pattern := likePattern(s)
		db = db.Where("LOWER(name_zh) LIKE ? OR LOWER(name_en) LIKE ? OR LOWER(slug) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%s.List: 查询总数失败: %w", r.name, err)
	}

	page, pageSize := normalizePage(query.Page, query.PageSize, 20)
	var items []T
	err := db.Order("sort_order ASC").Order("id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%s.List: 查询列表失败: %w", r.name, err)
	}
	return items, total, nil
}
