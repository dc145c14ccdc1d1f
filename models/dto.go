package models

import "encoding/json"

type RegisterRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=50"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	Role     UserRole `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateProposalRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
	Brand Brand  `json:"brand" binding:"required"`
}

type UpdateProposalStatusRequest struct {
	Status ProposalStatus `json:"status" binding:"required"`
}

type CreateBlockRequest struct {
	BlockKind string          `json:"block_kind" binding:"required,min=1,max=100"`
	Content   json.RawMessage `json:"content"`
	// Position defaults to 0 so freshly added content lands at the top of
	// the document.
	Position *int `json:"position"`
}

// BlockPatch is one entry of the bulk PATCH body. The list must cover every
// block of the proposal; OrderKey gives the desired final position.
type BlockPatch struct {
	ID       uint            `json:"id" binding:"required"`
	OrderKey int             `json:"order_key"`
	Enabled  *bool           `json:"enabled"`
	Content  json.RawMessage `json:"content,omitempty"`
}

type PatchBlocksRequest struct {
	Blocks []BlockPatch `json:"blocks" binding:"required,min=1,dive"`
}

type CreateTemplateRequest struct {
	BlockKind      string          `json:"block_kind" binding:"required,min=1,max=100"`
	Name           string          `json:"name" binding:"required,min=1,max=255"`
	Brand          Brand           `json:"brand" binding:"required"`
	DefaultContent json.RawMessage `json:"default_content"`
	DisplayOrder   int             `json:"display_order"`
}

type UpdateTemplateRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=255"`
	DefaultContent json.RawMessage `json:"default_content"`
	DisplayOrder   int             `json:"display_order"`
	Active         *bool           `json:"active"`
}

// UpsertComponentRequest is the administrative/maintenance action that feeds
// component implementation source into the store.
type UpsertComponentRequest struct {
	BlockKind         string `json:"block_kind" binding:"required,min=1,max=100"`
	SourceCode        string `json:"source_code" binding:"required"`
	ChangeDescription string `json:"change_description"`
}

type RollbackComponentRequest struct {
	TargetVersion int    `json:"target_version" binding:"required,min=1"`
	Reason        string `json:"reason"`
}

type ArtifactResponse struct {
	Artifact CompiledArtifact `json:"artifact"`
	CacheHit bool             `json:"cache_hit"`
}

type ProposalListParams struct {
	Status    string `form:"status"`
	Brand     string `form:"brand"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}
