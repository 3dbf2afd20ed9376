package vo

import (
	"encoding/json"
	"time"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// DomainVO 领域
type DomainVO struct {
	ID            ids.ID          `json:"id"`
	Slug          string          `json:"slug"`
	NameZh        string          `json:"name_zh"`
	NameEn        string          `json:"name_en"`
	DescriptionZh *string         `json:"description_zh"`
	DescriptionEn *string         `json:"description_en"`
	Icon          *string         `json:"icon"`
	SortOrder     int             `json:"sort_order"`
	Extra         json.RawMessage `json:"extra,omitempty" swaggertype:"object"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TopicVO 主题
type TopicVO struct {
	ID            ids.ID          `json:"id"`
	DomainID      *ids.ID         `json:"domain_id"`
	Slug          string          `json:"slug"`
	NameZh        string          `json:"name_zh"`
	NameEn        string          `json:"name_en"`
	DescriptionZh *string         `json:"description_zh"`
	DescriptionEn *string         `json:"description_en"`
	SortOrder     int             `json:"sort_order"`
	Extra         json.RawMessage `json:"extra,omitempty" swaggertype:"object"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DomainListVO 领域列表
type DomainListVO struct {
	Data  []DomainVO `json:"data"`
	Total int64      `json:"total"`
}

// TopicListVO 主题列表
type TopicListVO struct {
	Data  []TopicVO `json:"data"`
	Total int64     `json:"total"`
}
