package models

import (
	"time"

	"gorm.io/gorm"
)

type BlockTemplate struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	BlockKind      string         `json:"block_kind" gorm:"not null;uniqueIndex:idx_template_kind_name_brand"`
	Name           string         `json:"name" gorm:"not null;uniqueIndex:idx_template_kind_name_brand"`
	Brand          Brand          `json:"brand" gorm:"not null;uniqueIndex:idx_template_kind_name_brand"`
	Active         bool           `json:"active" gorm:"default:true"`
	DefaultContent string         `json:"default_content" gorm:"type:text"`
	DisplayOrder   int            `json:"display_order" gorm:"default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
