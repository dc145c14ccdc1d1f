package models

import (
	"time"

	"gorm.io/gorm"
)

type Brand string

const (
	BrandAcme     Brand = "acme"
	BrandNordic   Brand = "nordic"
	BrandContrast Brand = "contrast"
)

func (b Brand) Valid() bool {
	switch b {
	case BrandAcme, BrandNordic, BrandContrast:
		return true
	}
	return false
}

type ProposalStatus string

const (
	StatusDraft     ProposalStatus = "draft"
	StatusPublished ProposalStatus = "published"
	StatusArchived  ProposalStatus = "archived"
)

type Proposal struct {
	ID      uint           `json:"id" gorm:"primarykey"`
	OwnerID uint           `json:"owner_id" gorm:"not null"`
	Owner   User           `json:"owner" gorm:"foreignKey:OwnerID"`
	Title   string         `json:"title" gorm:"not null"`
	Brand   Brand          `json:"brand" gorm:"not null"`
	Status  ProposalStatus `json:"status" gorm:"default:'draft'"`
	// BlockRevision guards block mutations: every renumber bumps it with a
	// compare-and-swap, so two concurrent reorders cannot interleave.
	BlockRevision int             `json:"block_revision" gorm:"default:0"`
	Blocks        []ProposalBlock `json:"blocks,omitempty" gorm:"foreignKey:ProposalID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}
