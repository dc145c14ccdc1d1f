package services

import (
	"proposal-cms/models"
	"proposal-cms/repositories"
)

type ProposalService interface {
	CreateProposal(req models.CreateProposalRequest, userID uint) (*models.Proposal, error)
	GetProposal(id, userID uint) (*models.Proposal, error)
	GetProposals(params models.ProposalListParams, userID uint) ([]models.Proposal, int64, error)
	DeleteProposal(id, userID uint) error
	UpdateStatus(id uint, status models.ProposalStatus, userID uint) (*models.Proposal, error)
}

type proposalService struct {
	proposalRepo repositories.ProposalRepository
	assembly     AssemblyService
}

func NewProposalService(proposalRepo repositories.ProposalRepository, assembly AssemblyService) ProposalService {
	return &proposalService{
		proposalRepo: proposalRepo,
		assembly:     assembly,
	}
}

func (s *proposalService) CreateProposal(req models.CreateProposalRequest, userID uint) (*models.Proposal, error) {
	return s.assembly.AssembleProposal(req, userID)
}

func (s *proposalService) GetProposal(id, userID uint) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(id)
	if err != nil {
		return nil, models.ErrorNotFound{Message: "proposal not found"}
	}
	if proposal.OwnerID != userID {
		return nil, models.ErrorUnauthorized{Message: "not the proposal owner"}
	}
	return proposal, nil
}

func (s *proposalService) GetProposals(params models.ProposalListParams, userID uint) ([]models.Proposal, int64, error) {
	return s.proposalRepo.GetList(params, userID)
}

func (s *proposalService) DeleteProposal(id, userID uint) error {
	proposal, err := s.proposalRepo.GetByID(id)
	if err != nil {
		return models.ErrorNotFound{Message: "proposal not found"}
	}
	if proposal.OwnerID != userID {
		return models.ErrorUnauthorized{Message: "not the proposal owner"}
	}
	return s.proposalRepo.Delete(id)
}

func (s *proposalService) UpdateStatus(id uint, status models.ProposalStatus, userID uint) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(id)
	if err != nil {
		return nil, models.ErrorNotFound{Message: "proposal not found"}
	}
	if proposal.OwnerID != userID {
		return nil, models.ErrorUnauthorized{Message: "not the proposal owner"}
	}
	if !validTransition(proposal.Status, status) {
		return nil, models.ErrorBadRequest{Message: "invalid status transition"}
	}

	proposal.Status = status
	if err := s.proposalRepo.Update(proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

func validTransition(from, to models.ProposalStatus) bool {
	switch from {
	case models.StatusDraft:
		return to == models.StatusPublished || to == models.StatusArchived
	case models.StatusPublished:
		return to == models.StatusDraft || to == models.StatusArchived
	case models.StatusArchived:
		return to == models.StatusDraft
	}
	return false
}
