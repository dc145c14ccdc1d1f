package models

import (
	"time"
)

// ComponentSource is the canonical compiled implementation of a block kind.
// Every successful update bumps Version and appends a ComponentVersion row.
type ComponentSource struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	BlockKind    string    `json:"block_kind" gorm:"uniqueIndex;not null"`
	SourceCode   string    `json:"source_code" gorm:"type:text"`
	CompiledCode string    `json:"compiled_code" gorm:"type:text"`
	Schema       string    `json:"schema" gorm:"type:text"`
	Version      int       `json:"version" gorm:"not null;default:0"`
	Active       bool      `json:"active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ComponentVersion is append-only history. Rows are written once and never
// mutated; rollback appends a new head version instead of rewriting.
type ComponentVersion struct {
	ID                uint      `json:"id" gorm:"primarykey"`
	ComponentSourceID uint      `json:"component_source_id" gorm:"not null;uniqueIndex:idx_component_version"`
	VersionNumber     int       `json:"version_number" gorm:"not null;uniqueIndex:idx_component_version"`
	SourceCode        string    `json:"source_code" gorm:"type:text"`
	CompiledCode      string    `json:"compiled_code" gorm:"type:text"`
	Schema            string    `json:"schema" gorm:"type:text"`
	ChangeDescription string    `json:"change_description" gorm:"type:text"`
	AuthorID          uint      `json:"author_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProposalComponentCode pins a proposal to the component code that was
// current when the proposal was assembled, so later canonical updates do not
// retroactively change published documents.
type ProposalComponentCode struct {
	ID                uint      `json:"id" gorm:"primarykey"`
	ProposalID        uint      `json:"proposal_id" gorm:"not null;uniqueIndex:idx_binding_proposal_kind"`
	BlockKind         string    `json:"block_kind" gorm:"not null;uniqueIndex:idx_binding_proposal_kind"`
	ComponentSourceID uint      `json:"component_source_id" gorm:"not null"`
	VersionNumber     int       `json:"version_number" gorm:"not null"`
	CompiledCode      string    `json:"compiled_code" gorm:"type:text"`
	Schema            string    `json:"schema" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
}

// CompiledArtifact is what the external renderer consumes.
type CompiledArtifact struct {
	BlockKind    string    `json:"block_kind"`
	CompiledCode string    `json:"compiled_code"`
	Schema       string    `json:"schema"`
	Version      int       `json:"version"`
	GeneratedAt  time.Time `json:"generated_at"`
}
