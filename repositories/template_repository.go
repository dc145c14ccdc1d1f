package repositories

import (
	"proposal-cms/models"

	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(template *models.BlockTemplate) error
	GetByID(id uint) (*models.BlockTemplate, error)
	GetByKindNameBrand(blockKind, name string, brand models.Brand) (*models.BlockTemplate, error)
	GetActiveByBrand(brand models.Brand) ([]models.BlockTemplate, error)
	GetAll() ([]models.BlockTemplate, error)
	Update(template *models.BlockTemplate) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(template *models.BlockTemplate) error {
	return r.db.Create(template).Error
}

func (r *templateRepository) GetByID(id uint) (*models.BlockTemplate, error) {
	var template models.BlockTemplate
	err := r.db.First(&template, id).Error
	return &template, err
}

func (r *templateRepository) GetByKindNameBrand(blockKind, name string, brand models.Brand) (*models.BlockTemplate, error) {
	var template models.BlockTemplate
	err := r.db.Where("block_kind = ? AND name = ? AND brand = ?", blockKind, name, brand).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) GetActiveByBrand(brand models.Brand) ([]models.BlockTemplate, error) {
	var templates []models.BlockTemplate
	err := r.db.Where("brand = ? AND active = ?", brand, true).
		Order("display_order asc").
		Find(&templates).Error
	return templates, err
}

func (r *templateRepository) GetAll() ([]models.BlockTemplate, error) {
	var templates []models.BlockTemplate
	err := r.db.Order("brand asc, display_order asc").Find(&templates).Error
	return templates, err
}

func (r *templateRepository) Update(template *models.BlockTemplate) error {
	return r.db.Save(template).Error
}
