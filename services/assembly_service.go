package services

import (
	"encoding/json"
	"errors"

	"proposal-cms/models"
	"proposal-cms/repositories"

	"gorm.io/gorm"
)

// AssemblyService creates new proposals from the brand's template set. This
// is the only place blocks and component bindings are created together;
// afterwards the canonical component source and the proposal's snapshots
// evolve independently.
type AssemblyService interface {
	AssembleProposal(req models.CreateProposalRequest, ownerID uint) (*models.Proposal, error)
}

type assemblyService struct {
	db            *gorm.DB
	proposalRepo  repositories.ProposalRepository
	blockRepo     repositories.BlockRepository
	templateRepo  repositories.TemplateRepository
	componentRepo repositories.ComponentRepository
}

func NewAssemblyService(db *gorm.DB, proposalRepo repositories.ProposalRepository, blockRepo repositories.BlockRepository, templateRepo repositories.TemplateRepository, componentRepo repositories.ComponentRepository) AssemblyService {
	return &assemblyService{
		db:            db,
		proposalRepo:  proposalRepo,
		blockRepo:     blockRepo,
		templateRepo:  templateRepo,
		componentRepo: componentRepo,
	}
}

func (s *assemblyService) AssembleProposal(req models.CreateProposalRequest, ownerID uint) (*models.Proposal, error) {
	if !req.Brand.Valid() {
		return nil, models.ErrorBadRequest{Message: "unknown brand"}
	}

	var proposalID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		proposals := s.proposalRepo.WithTx(tx)
		blocks := s.blockRepo.WithTx(tx)
		components := s.componentRepo.WithTx(tx)

		proposal := &models.Proposal{
			OwnerID: ownerID,
			Title:   req.Title,
			Brand:   req.Brand,
			Status:  models.StatusDraft,
		}
		if err := proposals.Create(proposal); err != nil {
			return err
		}
		proposalID = proposal.ID

		templates, err := s.templateRepo.GetActiveByBrand(req.Brand)
		if err != nil {
			return err
		}

		// An empty template set is not an error: the author still gets
		// one empty block to start from.
		if len(templates) == 0 {
			return blocks.Create(&models.ProposalBlock{
				ProposalID: proposal.ID,
				BlockKind:  "text",
				OrderKey:   0,
				Enabled:    true,
				Content:    "{}",
			})
		}

		bindings := map[string]*models.ProposalComponentCode{}
		for i, tpl := range templates {
			binding, ok := bindings[tpl.BlockKind]
			if !ok {
				binding, err = s.snapshotComponent(components, proposal.ID, tpl.BlockKind)
				if err != nil {
					return err
				}
				bindings[tpl.BlockKind] = binding
			}

			block := &models.ProposalBlock{
				ProposalID: proposal.ID,
				BlockKind:  tpl.BlockKind,
				OrderKey:   i,
				Enabled:    true,
				Content:    mergeTemplateContent(tpl),
			}
			if binding != nil {
				block.BindingID = &binding.ID
			}
			if err := blocks.Create(block); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.proposalRepo.GetByID(proposalID)
}

// snapshotComponent pins the proposal to the component source's current
// version. Kinds without a registered component get no binding; the block
// still renders through whatever the kind resolves to at display time.
func (s *assemblyService) snapshotComponent(components repositories.ComponentRepository, proposalID uint, blockKind string) (*models.ProposalComponentCode, error) {
	source, err := components.GetSourceByKind(blockKind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !source.Active {
		return nil, nil
	}

	binding := &models.ProposalComponentCode{
		ProposalID:        proposalID,
		BlockKind:         blockKind,
		ComponentSourceID: source.ID,
		VersionNumber:     source.Version,
		CompiledCode:      source.CompiledCode,
		Schema:            source.Schema,
	}
	if err := components.CreateBinding(binding); err != nil {
		return nil, err
	}
	return binding, nil
}

// mergeTemplateContent folds the template's display name into its default
// content. The name is a human label only, never executable identity.
func mergeTemplateContent(tpl models.BlockTemplate) string {
	content := map[string]interface{}{}
	if tpl.DefaultContent != "" {
		if err := json.Unmarshal([]byte(tpl.DefaultContent), &content); err != nil {
			content = map[string]interface{}{}
		}
	}
	content["name"] = tpl.Name
	merged, err := json.Marshal(content)
	if err != nil {
		return tpl.DefaultContent
	}
	return string(merged)
}
