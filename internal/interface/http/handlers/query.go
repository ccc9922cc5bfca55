package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indelible-labs/indelibled/internal/core/application"
)

type QueryHandler struct {
	svc application.Service
}

func NewQueryHandler(svc application.Service) *QueryHandler {
	return &QueryHandler{svc}
}

func (h *QueryHandler) GetCollection(c *gin.Context) {
	collection, err := h.svc.GetCollection(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCollection(collection))
}

func (h *QueryHandler) GetLayers(c *gin.Context) {
	layers, err := h.svc.GetLayers(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layers": toLayers(layers)})
}

func (h *QueryHandler) GetTokenHash(c *gin.Context) {
	tokenID, err := parseUintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}
	hash, svcErr := h.svc.TokenHash(c.Request.Context(), tokenID)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_id": tokenID, "hash": hash})
}

func (h *QueryHandler) GetTokenURI(c *gin.Context) {
	tokenID, err := parseUintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}
	uri, svcErr := h.svc.TokenURI(c.Request.Context(), tokenID)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_id": tokenID, "uri": uri})
}

func (h *QueryHandler) GetContractURI(c *gin.Context) {
	uri, err := h.svc.ContractURI(c.Request.Context())
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uri": uri})
}

func (h *QueryHandler) GetHashSVG(c *gin.Context) {
	hash := c.Param("hash")
	svg, err := h.svc.HashToSVG(c.Request.Context(), hash)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hash": hash, "svg": svg})
}

func (h *QueryHandler) GetHashMetadata(c *gin.Context) {
	hash := c.Param("hash")
	attributes, err := h.svc.HashToMetadata(c.Request.Context(), hash)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hash": hash, "attributes": toAttributes(attributes)})
}

// GetTraitData serves the raw bytes of a trait image.
func (h *QueryHandler) GetTraitData(c *gin.Context) {
	layer, err := parseIntParam(c, "layer")
	if err != nil {
		WriteError(c, err)
		return
	}
	trait, err := parseIntParam(c, "trait")
	if err != nil {
		WriteError(c, err)
		return
	}
	data, svcErr := h.svc.TraitData(c.Request.Context(), layer, trait)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}
