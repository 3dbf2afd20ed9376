package taxonomy

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
)

var (
	// ErrSlugExists slug 与已有记录（含软删除）冲突
	ErrSlugExists = errors.New("slug already exists")
	// ErrNotFound 记录不存在或已软删除
	ErrNotFound = errors.New("not found")
	// ErrDomainNotFound 主题引用的领域不存在
	ErrDomainNotFound = errors.New("domain not found")
)

// TaxonomyService 知识领域与主题的后台维护
type TaxonomyService interface {
	ListDomains(ctx context.Context, query *dto.TaxonomyQueryDTO) (*vo.DomainListVO, error)
	GetDomain(ctx context.Context, id ids.ID) (*vo.DomainVO, error)
	CreateDomain(ctx context.Context, in *dto.CreateDomainDTO) (*vo.DomainVO, error)
	// UpdateDomain 部分更新，只写入非 nil 字段
	UpdateDomain(ctx context.Context, id ids.ID, in *dto.UpdateDomainDTO) (*vo.DomainVO, error)
	// DeleteDomain 软删除
	DeleteDomain(ctx context.Context, id ids.ID) error

	ListTopics(ctx context.Context, query *dto.TaxonomyQueryDTO) (*vo.TopicListVO, error)
	GetTopic(ctx context.Context, id ids.ID) (*vo.TopicVO, error)
	CreateTopic(ctx context.Context, in *dto.CreateTopicDTO) (*vo.TopicVO, error)
	UpdateTopic(ctx context.Context, id ids.ID, in *dto.UpdateTopicDTO) (*vo.TopicVO, error)
	DeleteTopic(ctx context.Context, id ids.ID) error
}

type taxonomyService struct {
	domains rdb.DomainRepository
	topics  rdb.TopicRepository
	logger  *core.ZapLogger
}

func NewTaxonomyService(domains rdb.DomainRepository, topics rdb.TopicRepository, logger *core.ZapLogger) TaxonomyService {
	return &taxonomyService{domains: domains, topics: topics, logger: logger}
}

// mapRepoError 仓库错误 → 业务错误，未识别的一律记日志并返回系统错误
func (s *taxonomyService) mapRepoError(operation string, err error) error {
	switch {
	case errors.Is(err, commonerrors.ErrRepoNotFound):
		return ErrNotFound
	case rdb.IsDuplicate(err):
		return ErrSlugExists
	}
	s.logger.Error("仓库操作失败", zap.String("operation", operation), zap.Error(err))
	return commonerrors.ErrSystemError
}

// ---- 领域 ----

func (s *taxonomyService) ListDomains(ctx context.Context, query *dto.TaxonomyQueryDTO) (*vo.DomainListVO, error) {
	const operation = "TaxonomyService.ListDomains"
	if query == nil {
		query = &dto.TaxonomyQueryDTO{}
	}
	items, total, err := s.domains.List(ctx, query)
	if err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	out := &vo.DomainListVO{Data: make([]vo.DomainVO, 0, len(items)), Total: total}
	for i := range items {
		out.Data = append(out.Data, toDomainVO(&items[i]))
	}
	return out, nil
}

func (s *taxonomyService) GetDomain(ctx context.Context, id ids.ID) (*vo.DomainVO, error) {
	const operation = "TaxonomyService.GetDomain"
	d, err := s.domains.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	v := toDomainVO(d)
	return &v, nil
}

func (s *taxonomyService) CreateDomain(ctx context.Context, in *dto.CreateDomainDTO) (*vo.DomainVO, error) {
	const operation = "TaxonomyService.CreateDomain"
	d := &entities.Domain{
		Slug:          in.Slug,
		NameZh:        in.NameZh,
		NameEn:        in.NameEn,
		DescriptionZh: in.DescriptionZh,
		DescriptionEn: in.DescriptionEn,
		Icon:          in.Icon,
		SortOrder:     in.SortOrder,
		Extra:         in.Extra,
	}
	if err := s.domains.Create(ctx, d); err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	s.logger.Info("已创建领域", zap.String("operation", operation), zap.String("id", d.ID.String()), zap.String("slug", d.Slug))
	v := toDomainVO(d)
	return &v, nil
}

func (s *taxonomyService) UpdateDomain(ctx context.Context, id ids.ID, in *dto.UpdateDomainDTO) (*vo.DomainVO, error) {
	const operation = "TaxonomyService.UpdateDomain"
	if _, err := s.domains.GetByID(ctx, id); err != nil {
		return nil, s.mapRepoError(operation, err)
	}

	fields := map[string]any{}
	setIf(fields, "slug", in.Slug)
	setIf(fields, "name_zh", in.NameZh)
	setIf(fields, "name_en", in.NameEn)
	setIf(fields, "description_zh", in.DescriptionZh)
	setIf(fields, "description_en", in.DescriptionEn)
	setIf(fields, "icon", in.Icon)
	setIf(fields, "sort_order", in.SortOrder)
	if in.Extra != nil {
		fields["extra"] = in.Extra
	}
	if err := s.domains.Update(ctx, id, fields); err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	return s.GetDomain(ctx, id)
}

func (s *taxonomyService) DeleteDomain(ctx context.Context, id ids.ID) error {
	const operation = "TaxonomyService.DeleteDomain"
	if err := s.domains.Delete(ctx, id); err != nil {
		return s.mapRepoError(operation, err)
	}
	s.logger.Info("已删除领域", zap.String("operation", operation), zap.String("id", id.String()))
	return nil
}

// ---- 主题 ----

func (s *taxonomyService) ListTopics(ctx context.Context, query *dto.TaxonomyQueryDTO) (*vo.TopicListVO, error) {
	const operation = "TaxonomyService.ListTopics"
	if query == nil {
		query = &dto.TaxonomyQueryDTO{}
	}
	items, total, err := s.topics.List(ctx, query)
	if err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	out := &vo.TopicListVO{Data: make([]vo.TopicVO, 0, len(items)), Total: total}
	for i := range items {
		out.Data = append(out.Data, toTopicVO(&items[i]))
	}
	return out, nil
}

func (s *taxonomyService) GetTopic(ctx context.Context, id ids.ID) (*vo.TopicVO, error) {
	const operation = "TaxonomyService.GetTopic"
	t, err := s.topics.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	v := toTopicVO(t)
	return &v, nil
}

func (s *taxonomyService) CreateTopic(ctx context.Context, in *dto.CreateTopicDTO) (*vo.TopicVO, error) {
	const operation = "TaxonomyService.CreateTopic"
	if err := s.checkDomain(ctx, operation, in.DomainID); err != nil {
		return nil, err
	}
	t := &entities.Topic{
		DomainID:      in.DomainID,
		Slug:          in.Slug,
		NameZh:        in.NameZh,
		NameEn:        in.NameEn,
		DescriptionZh: in.DescriptionZh,
		DescriptionEn: in.DescriptionEn,
		SortOrder:     in.SortOrder,
		Extra:         in.Extra,
	}
	if err := s.topics.Create(ctx, t); err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	s.logger.Info("已创建主题", zap.String("operation", operation), zap.String("id", t.ID.String()), zap.String("slug", t.Slug))
	v := toTopicVO(t)
	return &v, nil
}

func (s *taxonomyService) UpdateTopic(ctx context.Context, id ids.ID, in *dto.UpdateTopicDTO) (*vo.TopicVO, error) {
	const operation = "TaxonomyService.UpdateTopic"
	if _, err := s.topics.GetByID(ctx, id); err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	if err := s.checkDomain(ctx, operation, in.DomainID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	setIf(fields, "domain_id", in.DomainID)
	setIf(fields, "slug", in.Slug)
	setIf(fields, "name_zh", in.NameZh)
	setIf(fields, "name_en", in.NameEn)
	setIf(fields, "description_zh", in.DescriptionZh)
	setIf(fields, "description_en", in.DescriptionEn)
	setIf(fields, "sort_order", in.SortOrder)
	if in.Extra != nil {
		fields["extra"] = in.Extra
	}
	if err := s.topics.Update(ctx, id, fields); err != nil {
		return nil, s.mapRepoError(operation, err)
	}
	return s.GetTopic(ctx, id)
}

func (s *taxonomyService) DeleteTopic(ctx context.Context, id ids.ID) error {
	const operation = "TaxonomyService.DeleteTopic"
	if err := s.topics.Delete(ctx, id); err != nil {
		return s.mapRepoError(operation, err)
	}
	s.logger.Info("已删除主题", zap.String("operation", operation), zap.String("id", id.String()))
	return nil
}

// checkDomain 主题引用的领域必须存在且未删除，nil 表示不归属任何领域
func (s *taxonomyService) checkDomain(ctx context.Context, operation string, domainID *ids.ID) error {
	if domainID == nil {
		return nil
	}
	if _, err := s.domains.GetByID(ctx, *domainID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return ErrDomainNotFound
		}
		return s.mapRepoError(operation, err)
	}
	return nil
}

func setIf[T any](fields map[string]any, column string, v *T) {
	if v != nil {
		fields[column] = *v
	}
}

func rawExtra(extra datatypes.JSON) json.RawMessage {
	if len(extra) == 0 {
		return nil
	}
	return json.RawMessage(extra)
}

func toDomainVO(d *entities.Domain) vo.DomainVO {
	return vo.DomainVO{
		ID:            d.ID,
		Slug:          d.Slug,
		NameZh:        d.NameZh,
		NameEn:        d.NameEn,
		DescriptionZh: d.DescriptionZh,
		DescriptionEn: d.DescriptionEn,
		Icon:          d.Icon,
		SortOrder:     d.SortOrder,
		Extra:         rawExtra(d.Extra),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toTopicVO(t *entities.Topic) vo.TopicVO {
	return vo.TopicVO{
		ID:            t.ID,
		DomainID:      t.DomainID,
		Slug:          t.Slug,
		NameZh:        t.NameZh,
		NameEn:        t.NameEn,
		DescriptionZh: t.DescriptionZh,
		DescriptionEn: t.DescriptionEn,
		SortOrder:     t.SortOrder,
		Extra:         rawExtra(t.Extra),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
