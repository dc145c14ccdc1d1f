package repositories

import (
	"fmt"

	"proposal-cms/models"

	"gorm.io/gorm"
)

type ProposalRepository interface {
	WithTx(tx *gorm.DB) ProposalRepository
	Create(proposal *models.Proposal) error
	GetByID(id uint) (*models.Proposal, error)
	GetList(params models.ProposalListParams, ownerID uint) ([]models.Proposal, int64, error)
	Update(proposal *models.Proposal) error
	Delete(id uint) error
	// BumpBlockRevision compare-and-swaps the per-proposal revision counter.
	// Returns false when another writer got there first.
	BumpBlockRevision(id uint, expected int) (bool, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) WithTx(tx *gorm.DB) ProposalRepository {
	return &proposalRepository{db: tx}
}

func (r *proposalRepository) Create(proposal *models.Proposal) error {
	return r.db.Create(proposal).Error
}

func (r *proposalRepository) GetByID(id uint) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.Preload("Owner").
		Preload("Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_key asc")
		}).
		Preload("Blocks.Binding").
		First(&proposal, id).Error
	return &proposal, err
}

func (r *proposalRepository) GetList(params models.ProposalListParams, ownerID uint) ([]models.Proposal, int64, error) {
	var proposals []models.Proposal
	var total int64

	query := r.db.Model(&models.Proposal{}).Preload("Owner")

	if ownerID > 0 {
		query = query.Where("owner_id = ?", ownerID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Brand != "" {
		query = query.Where("brand = ?", params.Brand)
	}

	query.Count(&total)

	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := params.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("proposals.%s %s", sortBy, sortOrder))

	offset := (params.Page - 1) * params.Limit
	err := query.Offset(offset).Limit(params.Limit).Find(&proposals).Error

	return proposals, total, err
}

func (r *proposalRepository) Update(proposal *models.Proposal) error {
	return r.db.Save(proposal).Error
}

func (r *proposalRepository) Delete(id uint) error {
	// Blocks and bindings are exclusively owned by the proposal.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&models.ProposalBlock{}).Error; err != nil {
			return err
		}
		if err := tx.Where("proposal_id = ?", id).Delete(&models.ProposalComponentCode{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Proposal{}, id).Error
	})
}

func (r *proposalRepository) BumpBlockRevision(id uint, expected int) (bool, error) {
	result := r.db.Model(&models.Proposal{}).
		Where("id = ? AND block_revision = ?", id, expected).
		Update("block_revision", expected+1)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
