package models

import (
	"time"
)

type ProposalBlock struct {
	ID         uint   `json:"id" gorm:"primarykey"`
	ProposalID uint   `json:"proposal_id" gorm:"not null;uniqueIndex:idx_proposal_order_key"`
	BlockKind  string `json:"block_kind" gorm:"not null"`
	// OrderKey is dense and zero-based within a proposal. The composite
	// unique index is live during renumbering, hence the two-phase writes
	// in the ordering service.
	OrderKey  int                   `json:"order_key" gorm:"not null;uniqueIndex:idx_proposal_order_key"`
	Enabled   bool                  `json:"enabled" gorm:"default:true"`
	Content   string                `json:"content" gorm:"type:text"`
	BindingID *uint                 `json:"binding_id"`
	Binding   *ProposalComponentCode `json:"binding,omitempty" gorm:"foreignKey:BindingID"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}
