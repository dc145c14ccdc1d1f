package services

import (
	"errors"

	"proposal-cms/models"
	"proposal-cms/repositories"

	"gorm.io/gorm"
)

// OrderingService keeps every proposal's block order keys dense, unique and
// zero-based. Mutations renumber in two phases inside one transaction:
// affected blocks are first displaced to negative keys (disjoint from all
// live non-negative keys, so the unique index on (proposal_id, order_key)
// cannot trip mid-pass), then committed to their final keys.
type OrderingService interface {
	InsertBlock(proposalID uint, req models.CreateBlockRequest, userID uint) (*models.ProposalBlock, error)
	DeleteBlock(proposalID, blockID, userID uint) error
	PatchBlocks(proposalID uint, req models.PatchBlocksRequest, userID uint) ([]models.ProposalBlock, error)
}

type orderingService struct {
	db            *gorm.DB
	proposalRepo  repositories.ProposalRepository
	blockRepo     repositories.BlockRepository
	componentRepo repositories.ComponentRepository
}

func NewOrderingService(db *gorm.DB, proposalRepo repositories.ProposalRepository, blockRepo repositories.BlockRepository, componentRepo repositories.ComponentRepository) OrderingService {
	return &orderingService{
		db:            db,
		proposalRepo:  proposalRepo,
		blockRepo:     blockRepo,
		componentRepo: componentRepo,
	}
}

// errRevisionRace aborts the transaction when the proposal's block revision
// moved under us; the caller retries once with fresh reads.
var errRevisionRace = errors.New("block revision moved")

func loadOwnedProposal(proposals repositories.ProposalRepository, proposalID, userID uint) (*models.Proposal, error) {
	proposal, err := proposals.GetByID(proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorNotFound{Message: "proposal not found"}
		}
		return nil, err
	}
	if proposal.OwnerID != userID {
		return nil, models.ErrorUnauthorized{Message: "not the proposal owner"}
	}
	return proposal, nil
}

func (s *orderingService) InsertBlock(proposalID uint, req models.CreateBlockRequest, userID uint) (*models.ProposalBlock, error) {
	var created *models.ProposalBlock

	err := s.withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			proposals := s.proposalRepo.WithTx(tx)
			blocks := s.blockRepo.WithTx(tx)

			proposal, err := loadOwnedProposal(proposals, proposalID, userID)
			if err != nil {
				return err
			}
			ok, err := proposals.BumpBlockRevision(proposalID, proposal.BlockRevision)
			if err != nil {
				return err
			}
			if !ok {
				return errRevisionRace
			}

			existing, err := blocks.GetByProposal(proposalID)
			if err != nil {
				return err
			}

			// New blocks land at the top unless the caller asked otherwise.
			position := 0
			if req.Position != nil {
				position = *req.Position
			}
			if position < 0 || position > len(existing) {
				return models.ErrorBadRequest{Message: "position out of range"}
			}

			shifted := existing[position:]
			for i := range shifted {
				if err := blocks.UpdateOrderKey(shifted[i].ID, -(position + i + 1)); err != nil {
					return err
				}
			}
			for i := range shifted {
				if err := blocks.UpdateOrderKey(shifted[i].ID, position+i+1); err != nil {
					return err
				}
			}

			content := string(req.Content)
			if content == "" {
				content = "{}"
			}
			block := &models.ProposalBlock{
				ProposalID: proposalID,
				BlockKind:  req.BlockKind,
				OrderKey:   position,
				Enabled:    true,
				Content:    content,
			}
			if binding, err := s.componentRepo.WithTx(tx).GetBindingByProposalKind(proposalID, req.BlockKind); err == nil {
				block.BindingID = &binding.ID
			}
			if err := blocks.Create(block); err != nil {
				return err
			}
			created = block
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *orderingService) DeleteBlock(proposalID, blockID, userID uint) error {
	return s.withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			proposals := s.proposalRepo.WithTx(tx)
			blocks := s.blockRepo.WithTx(tx)

			proposal, err := loadOwnedProposal(proposals, proposalID, userID)
			if err != nil {
				return err
			}

			block, err := blocks.GetByID(blockID)
			if err != nil || block.ProposalID != proposalID {
				return models.ErrorNotFound{Message: "block not found"}
			}

			ok, err := proposals.BumpBlockRevision(proposalID, proposal.BlockRevision)
			if err != nil {
				return err
			}
			if !ok {
				return errRevisionRace
			}

			if err := blocks.Delete(blockID); err != nil {
				return err
			}

			remaining, err := blocks.GetByProposal(proposalID)
			if err != nil {
				return err
			}
			return renumber(blocks, remaining)
		})
	})
}

func (s *orderingService) PatchBlocks(proposalID uint, req models.PatchBlocksRequest, userID uint) ([]models.ProposalBlock, error) {
	err := s.withConflictRetry(func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			proposals := s.proposalRepo.WithTx(tx)
			blocks := s.blockRepo.WithTx(tx)

			proposal, err := loadOwnedProposal(proposals, proposalID, userID)
			if err != nil {
				return err
			}

			existing, err := blocks.GetByProposal(proposalID)
			if err != nil {
				return err
			}
			byID := make(map[uint]*models.ProposalBlock, len(existing))
			for i := range existing {
				byID[existing[i].ID] = &existing[i]
			}

			// The patch must cover the proposal's full block set so the
			// final keys can be assigned densely.
			if len(req.Blocks) != len(existing) {
				return models.ErrorBadRequest{Message: "patch must list every block of the proposal"}
			}
			seen := make(map[uint]bool, len(req.Blocks))
			for _, patch := range req.Blocks {
				if _, found := byID[patch.ID]; !found {
					return models.ErrorBadRequest{Message: "block does not belong to this proposal"}
				}
				if seen[patch.ID] {
					return models.ErrorBadRequest{Message: "duplicate block in patch"}
				}
				seen[patch.ID] = true
			}

			ok, err := proposals.BumpBlockRevision(proposalID, proposal.BlockRevision)
			if err != nil {
				return err
			}
			if !ok {
				return errRevisionRace
			}

			for _, patch := range req.Blocks {
				fields := map[string]interface{}{}
				if patch.Enabled != nil {
					fields["enabled"] = *patch.Enabled
				}
				if patch.Content != nil {
					fields["content"] = string(patch.Content)
				}
				if len(fields) > 0 {
					if err := blocks.UpdateFields(patch.ID, fields); err != nil {
						return err
					}
				}
			}

			ordered := make([]models.ProposalBlock, len(req.Blocks))
			patches := make([]models.BlockPatch, len(req.Blocks))
			copy(patches, req.Blocks)
			sortPatches(patches)
			for i, patch := range patches {
				ordered[i] = *byID[patch.ID]
			}
			return renumber(blocks, ordered)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.blockRepo.GetByProposal(proposalID)
}

// renumber assigns dense keys 0..N-1 to blocks in slice order, negative
// displacement first.
func renumber(blocks repositories.BlockRepository, ordered []models.ProposalBlock) error {
	for i := range ordered {
		if err := blocks.UpdateOrderKey(ordered[i].ID, -(i + 1)); err != nil {
			return err
		}
	}
	for i := range ordered {
		if err := blocks.UpdateOrderKey(ordered[i].ID, i); err != nil {
			return err
		}
	}
	return nil
}

func sortPatches(patches []models.BlockPatch) {
	// Insertion sort keeps the request order for equal keys.
	for i := 1; i < len(patches); i++ {
		for j := i; j > 0 && patches[j].OrderKey < patches[j-1].OrderKey; j-- {
			patches[j], patches[j-1] = patches[j-1], patches[j]
		}
	}
}

// withConflictRetry reruns the whole two-phase sequence once with fresh
// reads after a detected race; a second failure surfaces as a conflict.
func (s *orderingService) withConflictRetry(fn func() error) error {
	err := fn()
	if err == nil || !isOrderingConflict(err) {
		return err
	}
	err = fn()
	if err != nil && isOrderingConflict(err) {
		return models.ErrorConflict{Message: "concurrent block mutation on this proposal"}
	}
	return err
}

func isOrderingConflict(err error) bool {
	return errors.Is(err, errRevisionRace) || errors.Is(err, gorm.ErrDuplicatedKey)
}
