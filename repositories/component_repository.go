package repositories

import (
	"proposal-cms/models"

	"gorm.io/gorm"
)

type ComponentRepository interface {
	WithTx(tx *gorm.DB) ComponentRepository
	CreateSource(source *models.ComponentSource) error
	GetSourceByKind(blockKind string) (*models.ComponentSource, error)
	// UpdateSourceIfVersion writes the new head only when the stored version
	// still matches expectedVersion. Returns false on a lost race.
	UpdateSourceIfVersion(source *models.ComponentSource, expectedVersion int) (bool, error)
	CreateVersion(version *models.ComponentVersion) error
	GetVersions(componentSourceID uint) ([]models.ComponentVersion, error)
	GetVersion(componentSourceID uint, versionNumber int) (*models.ComponentVersion, error)
	CreateBinding(binding *models.ProposalComponentCode) error
	GetBinding(id uint) (*models.ProposalComponentCode, error)
	GetBindingByProposalKind(proposalID uint, blockKind string) (*models.ProposalComponentCode, error)
}

type componentRepository struct {
	db *gorm.DB
}

func NewComponentRepository(db *gorm.DB) ComponentRepository {
	return &componentRepository{db: db}
}

func (r *componentRepository) WithTx(tx *gorm.DB) ComponentRepository {
	return &componentRepository{db: tx}
}

func (r *componentRepository) CreateSource(source *models.ComponentSource) error {
	return r.db.Create(source).Error
}

func (r *componentRepository) GetSourceByKind(blockKind string) (*models.ComponentSource, error) {
	var source models.ComponentSource
	err := r.db.Where("block_kind = ?", blockKind).First(&source).Error
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func (r *componentRepository) UpdateSourceIfVersion(source *models.ComponentSource, expectedVersion int) (bool, error) {
	result := r.db.Model(&models.ComponentSource{}).
		Where("id = ? AND version = ?", source.ID, expectedVersion).
		Updates(map[string]interface{}{
			"source_code":   source.SourceCode,
			"compiled_code": source.CompiledCode,
			"schema":        source.Schema,
			"version":       source.Version,
			"active":        source.Active,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *componentRepository) CreateVersion(version *models.ComponentVersion) error {
	return r.db.Create(version).Error
}

func (r *componentRepository) GetVersions(componentSourceID uint) ([]models.ComponentVersion, error) {
	var versions []models.ComponentVersion
	err := r.db.Where("component_source_id = ?", componentSourceID).
		Order("version_number desc").
		Find(&versions).Error
	return versions, err
}

func (r *componentRepository) GetVersion(componentSourceID uint, versionNumber int) (*models.ComponentVersion, error) {
	var version models.ComponentVersion
	err := r.db.Where("component_source_id = ? AND version_number = ?", componentSourceID, versionNumber).
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *componentRepository) CreateBinding(binding *models.ProposalComponentCode) error {
	return r.db.Create(binding).Error
}

func (r *componentRepository) GetBinding(id uint) (*models.ProposalComponentCode, error) {
	var binding models.ProposalComponentCode
	err := r.db.First(&binding, id).Error
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *componentRepository) GetBindingByProposalKind(proposalID uint, blockKind string) (*models.ProposalComponentCode, error) {
	var binding models.ProposalComponentCode
	err := r.db.Where("proposal_id = ? AND block_kind = ?", proposalID, blockKind).
		First(&binding).Error
	if err != nil {
		return nil, err
	}
	return &binding, nil
}
