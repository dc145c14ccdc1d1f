package repositories

import (
	"proposal-cms/models"

	"gorm.io/gorm"
)

type BlockRepository interface {
	WithTx(tx *gorm.DB) BlockRepository
	Create(block *models.ProposalBlock) error
	GetByID(id uint) (*models.ProposalBlock, error)
	GetByProposal(proposalID uint) ([]models.ProposalBlock, error)
	UpdateOrderKey(blockID uint, orderKey int) error
	UpdateFields(blockID uint, fields map[string]interface{}) error
	Delete(blockID uint) error
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) WithTx(tx *gorm.DB) BlockRepository {
	return &blockRepository{db: tx}
}

func (r *blockRepository) Create(block *models.ProposalBlock) error {
	return r.db.Create(block).Error
}

func (r *blockRepository) GetByID(id uint) (*models.ProposalBlock, error) {
	var block models.ProposalBlock
	err := r.db.Preload("Binding").First(&block, id).Error
	return &block, err
}

func (r *blockRepository) GetByProposal(proposalID uint) ([]models.ProposalBlock, error) {
	var blocks []models.ProposalBlock
	err := r.db.Where("proposal_id = ?", proposalID).
		Order("order_key asc").
		Find(&blocks).Error
	return blocks, err
}

func (r *blockRepository) UpdateOrderKey(blockID uint, orderKey int) error {
	return r.db.Model(&models.ProposalBlock{}).
		Where("id = ?", blockID).
		Update("order_key", orderKey).Error
}

func (r *blockRepository) UpdateFields(blockID uint, fields map[string]interface{}) error {
	return r.db.Model(&models.ProposalBlock{}).
		Where("id = ?", blockID).
		Updates(fields).Error
}

func (r *blockRepository) Delete(blockID uint) error {
	return r.db.Delete(&models.ProposalBlock{}, blockID).Error
}
