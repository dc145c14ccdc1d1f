package handlers

import (
	"net/http"
	"strconv"

	"proposal-cms/helper"
	"proposal-cms/models"
	"proposal-cms/services"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	proposalService services.ProposalService
	orderingService services.OrderingService
	Helper          *helper.HTTPHelper
}

func NewProposalHandler(proposalService services.ProposalService, orderingService services.OrderingService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		orderingService: orderingService,
		Helper:          &helper.HTTPHelper{},
	}
}

func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req models.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.CreateProposal(req, userID.(uint))
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

func (h *ProposalHandler) GetProposals(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var params models.ProposalListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = 10
	}

	proposals, total, err := h.proposalService.GetProposals(params, userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"total":     total,
		"paging":    h.Helper.GeneratePaging(c, 0, 0, params.Limit, params.Page, int(total)),
	})
}

func (h *ProposalHandler) GetProposal(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	proposal, err := h.proposalService.GetProposal(uint(id), userID.(uint))
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, proposal)
}

func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	if err := h.proposalService.DeleteProposal(uint(id), userID.(uint)); err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Proposal deleted successfully"})
}

func (h *ProposalHandler) UpdateStatus(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var req models.UpdateProposalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.proposalService.UpdateStatus(uint(id), req.Status, userID.(uint))
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, proposal)
}

func (h *ProposalHandler) CreateBlock(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var req models.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	block, err := h.orderingService.InsertBlock(uint(id), req, userID.(uint))
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, block)
}

func (h *ProposalHandler) DeleteBlock(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}
	blockID, err := strconv.ParseUint(c.Param("block_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block ID"})
		return
	}

	if err := h.orderingService.DeleteBlock(uint(id), uint(blockID), userID.(uint)); err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Block deleted successfully"})
}

func (h *ProposalHandler) PatchBlocks(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var req models.PatchBlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	blocks, err := h.orderingService.PatchBlocks(uint(id), req, userID.(uint))
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}
