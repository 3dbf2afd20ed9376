package dto

import (
	"gorm.io/datatypes"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// TaxonomyQueryDTO 领域/主题列表查询
// - name_zh、name_en、slug 为精确匹配，任一存在时忽略 search
type TaxonomyQueryDTO struct {
	Page     int    `form:"page" binding:"omitempty,gte=1" example:"1"`
	PageSize int    `form:"pageSize" binding:"omitempty,gte=1" example:"20"`
	Search   string `form:"search" example:"算法"`
	NameZh   string `form:"name_zh"`
	NameEn   string `form:"name_en"`
	Slug     string `form:"slug"`
}

// CreateDomainDTO 创建领域
type CreateDomainDTO struct {
	Slug          string         `json:"slug" binding:"required,slug" example:"computer-science"`
	NameZh        string         `json:"name_zh" binding:"required" example:"计算机科学"`
	NameEn        string         `json:"name_en" binding:"required" example:"Computer Science"`
	DescriptionZh *string        `json:"description_zh,omitempty"`
	DescriptionEn *string        `json:"description_en,omitempty"`
	Icon          *string        `json:"icon,omitempty"`
	SortOrder     int            `json:"sort_order"`
	Extra         datatypes.JSON `json:"extra,omitempty" swaggertype:"object"`
}

// UpdateDomainDTO 部分更新，nil 字段不修改
type UpdateDomainDTO struct {
	Slug          *string        `json:"slug,omitempty" binding:"omitempty,slug"`
	NameZh        *string        `json:"name_zh,omitempty"`
	NameEn        *string        `json:"name_en,omitempty"`
	DescriptionZh *string        `json:"description_zh,omitempty"`
	DescriptionEn *string        `json:"description_en,omitempty"`
	Icon          *string        `json:"icon,omitempty"`
	SortOrder     *int           `json:"sort_order,omitempty"`
	Extra         datatypes.JSON `json:"extra,omitempty" swaggertype:"object"`
}

// CreateTopicDTO 创建主题
type CreateTopicDTO struct {
	DomainID      *ids.ID        `json:"domain_id,omitempty" swaggertype:"string"`
	Slug          string         `json:"slug" binding:"required,slug" example:"binary-search"`
	NameZh        string         `json:"name_zh" binding:"required" example:"二分查找"`
	NameEn        string         `json:"name_en" binding:"required" example:"Binary Search"`
	DescriptionZh *string        `json:"description_zh,omitempty"`
	DescriptionEn *string        `json:"description_en,omitempty"`
	SortOrder     int            `json:"sort_order"`
	Extra         datatypes.JSON `json:"extra,omitempty" swaggertype:"object"`
}

// UpdateTopicDTO 部分更新，nil 字段不修改
type UpdateTopicDTO struct {
	DomainID      *ids.ID        `json:"domain_id,omitempty" swaggertype:"string"`
	Slug          *string        `json:"slug,omitempty" binding:"omitempty,slug"`
	NameZh        *string        `json:"name_zh,omitempty"`
	NameEn        *string        `json:"name_en,omitempty"`
	DescriptionZh *string        `json:"description_zh,omitempty"`
	DescriptionEn *string        `json:"description_en,omitempty"`
	SortOrder     *int           `json:"sort_order,omitempty"`
	Extra         datatypes.JSON `json:"extra,omitempty" swaggertype:"object"`
}
