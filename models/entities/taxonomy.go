package entities

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// Domain 知识领域
type Domain struct {
	ID            ids.ID  `gorm:"primaryKey;autoIncrement"`
	Slug          string  `gorm:"type:varchar(128);not null;uniqueIndex"`
	NameZh        string  `gorm:"type:varchar(255);not null"`
	NameEn        string  `gorm:"type:varchar(255);not null"`
	DescriptionZh *string `gorm:"type:text"`
	DescriptionEn *string `gorm:"type:text"`
	Icon          *string `gorm:"type:varchar(255)"`
	SortOrder     int     `gorm:"not null;default:0;index"`
	Extra         datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Topic 知识主题，可归属于某个 Domain
type Topic struct {
	ID            ids.ID  `gorm:"primaryKey;autoIncrement"`
	DomainID      *ids.ID `gorm:"index"`
	Slug          string  `gorm:"type:varchar(128);not null;uniqueIndex"`
	NameZh        string  `gorm:"type:varchar(255);not null"`
	NameEn        string  `gorm:"type:varchar(255);not null"`
	DescriptionZh *string `gorm:"type:text"`
	DescriptionEn *string `gorm:"type:text"`
	SortOrder     int     `gorm:"not null;default:0;index"`
	Extra         datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
