package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/indelible-labs/indelibled/internal/core/application"
)

type MintHandler struct {
	svc application.Service
}

func NewMintHandler(svc application.Service) *MintHandler {
	return &MintHandler{svc}
}

func (h *MintHandler) Mint(c *gin.Context) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, err)
		return
	}
	call, err := parseCall(c, req.Value)
	if err != nil {
		WriteError(c, err)
		return
	}
	res, svcErr := h.svc.Mint(c.Request.Context(), call, req.Quantity)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, toMintResponse(res))
}

func (h *MintHandler) AllowlistMint(c *gin.Context) {
	var req AllowlistMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, err)
		return
	}
	call, err := parseCall(c, req.Value)
	if err != nil {
		WriteError(c, err)
		return
	}
	proof, err := parseProof(req.Proof)
	if err != nil {
		WriteError(c, err)
		return
	}
	res, svcErr := h.svc.AllowlistMint(c.Request.Context(), call, req.Quantity, proof, req.Quota)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, toMintResponse(res))
}

func (h *MintHandler) SignatureMint(c *gin.Context) {
	var req SignatureMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, err)
		return
	}
	call, err := parseCall(c, req.Value)
	if err != nil {
		WriteError(c, err)
		return
	}
	auth, err := parseSignedAuthorization(req)
	if err != nil {
		WriteError(c, err)
		return
	}
	res, svcErr := h.svc.SignatureMint(c.Request.Context(), call, auth)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, toMintResponse(res))
}

// Receive mints as many tokens as the attached value pays for.
func (h *MintHandler) Receive(c *gin.Context) {
	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, err)
		return
	}
	call, err := parseCall(c, req.Value)
	if err != nil {
		WriteError(c, err)
		return
	}
	res, svcErr := h.svc.Receive(c.Request.Context(), call)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, toMintResponse(res))
}

func (h *MintHandler) Airdrop(c *gin.Context) {
	var req AirdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, err)
		return
	}
	caller, err := parseCaller(c)
	if err != nil {
		WriteError(c, err)
		return
	}
	recipients, err := parseAddresses(req.Recipients)
	if err != nil {
		WriteError(c, err)
		return
	}
	res, svcErr := h.svc.Airdrop(c.Request.Context(), caller, req.Quantity, recipients)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, toMintResponse(res))
}

func (h *MintHandler) Withdraw(c *gin.Context) {
	caller, err := parseCaller(c)
	if err != nil {
		WriteError(c, err)
		return
	}
	res, svcErr := h.svc.Withdraw(c.Request.Context(), caller)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, toWithdrawResponse(res))
}

func (h *MintHandler) SetRenderOfTokenID(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, err)
		return
	}
	caller, err := parseCaller(c)
	if err != nil {
		WriteError(c, err)
		return
	}
	tokenID, err := parseUintParam(c, "id")
	if err != nil {
		WriteError(c, err)
		return
	}
	if svcErr := h.svc.SetRenderOfTokenID(
		c.Request.Context(), caller, tokenID, req.OffChain,
	); svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_id": tokenID, "off_chain": req.OffChain})
}
