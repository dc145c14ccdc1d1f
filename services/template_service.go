package services

import (
	"errors"

	"proposal-cms/models"
	"proposal-cms/repositories"

	"gorm.io/gorm"
)

type TemplateService interface {
	CreateTemplate(req models.CreateTemplateRequest) (*models.BlockTemplate, error)
	GetTemplates() ([]models.BlockTemplate, error)
	GetTemplate(id uint) (*models.BlockTemplate, error)
	UpdateTemplate(id uint, req models.UpdateTemplateRequest) (*models.BlockTemplate, error)
}

type templateService struct {
	templateRepo repositories.TemplateRepository
}

func NewTemplateService(templateRepo repositories.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) CreateTemplate(req models.CreateTemplateRequest) (*models.BlockTemplate, error) {
	if !req.Brand.Valid() {
		return nil, models.ErrorBadRequest{Message: "unknown brand"}
	}

	// (block_kind, name, brand) is unique
	_, err := s.templateRepo.GetByKindNameBrand(req.BlockKind, req.Name, req.Brand)
	if err == nil {
		return nil, models.ErrorConflict{Message: "template already exists"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	content := string(req.DefaultContent)
	if content == "" {
		content = "{}"
	}
	template := &models.BlockTemplate{
		BlockKind:      req.BlockKind,
		Name:           req.Name,
		Brand:          req.Brand,
		Active:         true,
		DefaultContent: content,
		DisplayOrder:   req.DisplayOrder,
	}

	if err := s.templateRepo.Create(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) GetTemplates() ([]models.BlockTemplate, error) {
	return s.templateRepo.GetAll()
}

func (s *templateService) GetTemplate(id uint) (*models.BlockTemplate, error) {
	template, err := s.templateRepo.GetByID(id)
	if err != nil {
		return nil, models.ErrorNotFound{Message: "template not found"}
	}
	return template, nil
}

func (s *templateService) UpdateTemplate(id uint, req models.UpdateTemplateRequest) (*models.BlockTemplate, error) {
	template, err := s.templateRepo.GetByID(id)
	if err != nil {
		return nil, models.ErrorNotFound{Message: "template not found"}
	}

	template.Name = req.Name
	template.DisplayOrder = req.DisplayOrder
	if req.DefaultContent != nil {
		template.DefaultContent = string(req.DefaultContent)
	}
	if req.Active != nil {
		template.Active = *req.Active
	}

	if err := s.templateRepo.Update(template); err != nil {
		return nil, err
	}
	return template, nil
}
