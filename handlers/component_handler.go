package handlers

import (
	"net/http"
	"strconv"

	"proposal-cms/helper"
	"proposal-cms/models"
	"proposal-cms/services"

	"github.com/gin-gonic/gin"
)

type ComponentHandler struct {
	componentService services.ComponentService
	Helper           *helper.HTTPHelper
}

func NewComponentHandler(componentService services.ComponentService) *ComponentHandler {
	return &ComponentHandler{
		componentService: componentService,
		Helper:           &helper.HTTPHelper{},
	}
}

// GetArtifact serves the compiled artifact for a block kind, or for a
// proposal's own snapshot when binding_id is given. Consumed by the external
// renderer.
func (h *ComponentHandler) GetArtifact(c *gin.Context) {
	blockKind := c.Param("block_kind")

	var bindingID uint
	if raw := c.Query("binding_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid binding ID"})
			return
		}
		bindingID = uint(parsed)
	}

	response, err := h.componentService.GetArtifact(blockKind, bindingID)
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Upsert is the maintenance action that feeds component implementation
// source into the store; it is not part of the end-user surface.
func (h *ComponentHandler) Upsert(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req models.UpsertComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.componentService.Update(req, userID.(uint))
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, version)
}

func (h *ComponentHandler) Rollback(c *gin.Context) {
	userID, _ := c.Get("user_id")
	blockKind := c.Param("block_kind")

	var req models.RollbackComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.componentService.Rollback(blockKind, req, userID.(uint))
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, version)
}

func (h *ComponentHandler) GetVersions(c *gin.Context) {
	blockKind := c.Param("block_kind")

	versions, err := h.componentService.GetVersions(blockKind)
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, versions)
}

func (h *ComponentHandler) GetVersion(c *gin.Context) {
	blockKind := c.Param("block_kind")
	versionNumber, err := strconv.Atoi(c.Param("version_number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version number"})
		return
	}

	version, err := h.componentService.GetVersion(blockKind, versionNumber)
	if err != nil {
		c.JSON(h.Helper.GetStatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, version)
}

// InvalidateCache drops render cache entries only; persisted source is never
// touched from here.
func (h *ComponentHandler) InvalidateCache(c *gin.Context) {
	target := c.Param("block_kind")
	h.componentService.Invalidate(target)
	c.JSON(http.StatusOK, gin.H{"message": "Cache invalidated"})
}
