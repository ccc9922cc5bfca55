package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/indelible-labs/indelibled/internal/core/application"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/pkg/errors"
)

type AdminHandler struct {
	admin application.AdminService
}

func NewAdminHandler(admin application.AdminService) *AdminHandler {
	return &AdminHandler{admin}
}

func (h *AdminHandler) AddLayer(c *gin.Context) {
	var req Layer
	if !bindAdminRequest(c, &req) {
		return
	}
	traits := make([]application.TraitInput, 0, len(req.Traits))
	for _, t := range req.Traits {
		traits = append(traits, toTraitInput(t))
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.AddLayer(c.Request.Context(), caller, application.LayerInput{
			Index:        req.Index,
			Name:         req.Name,
			PrimeNumber:  req.PrimeNumber,
			VariantCount: req.VariantCount,
			Traits:       traits,
		})
	})
}

func (h *AdminHandler) AddTrait(c *gin.Context) {
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
	var req Trait
	if !bindAdminRequest(c, &req) {
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.AddTrait(c.Request.Context(), caller, layer, trait, toTraitInput(req))
	})
}

func (h *AdminHandler) AddChunk(c *gin.Context) {
	var req ChunkRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.AddChunk(c.Request.Context(), caller, domain.Chunk{
			Layer: req.Layer,
			Trait: req.Trait,
			Index: req.Index,
			Data:  req.Data,
		})
	})
}

func (h *AdminHandler) TogglePublicMint(c *gin.Context) {
	h.toggle(c, h.admin.TogglePublicMint)
}

func (h *AdminHandler) ToggleAllowlistMint(c *gin.Context) {
	h.toggle(c, h.admin.ToggleAllowlistMint)
}

func (h *AdminHandler) SetMintModes(c *gin.Context) {
	var req MintModesRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	modes, err := domain.ParseMintModes(req.Modes)
	if err != nil {
		WriteError(c, err)
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetMintModes(c.Request.Context(), caller, modes)
	})
}

func (h *AdminHandler) SetPrices(c *gin.Context) {
	var req PricesRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	publicPrice, err := parseOptionalAmount(req.PublicMintPrice)
	if err != nil {
		WriteError(c, err)
		return
	}
	allowlistPrice, err := parseOptionalAmount(req.AllowlistPrice)
	if err != nil {
		WriteError(c, err)
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetPrices(c.Request.Context(), caller, application.Prices{
			PublicMintPrice: publicPrice,
			AllowlistPrice:  allowlistPrice,
		})
	})
}

func (h *AdminHandler) SetMintLimits(c *gin.Context) {
	var req MintLimitsRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetMintLimits(c.Request.Context(), caller, application.MintLimits{
			MaxPerAddress:   req.MaxPerAddress,
			MaxPerAllowlist: req.MaxPerAllowlist,
		})
	})
}

func (h *AdminHandler) SetMintWindow(c *gin.Context) {
	var req MintWindowRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetMintWindow(c.Request.Context(), caller, req.Start, req.End)
	})
}

func (h *AdminHandler) SetBaseURI(c *gin.Context) {
	var req ValueRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetBaseURI(c.Request.Context(), caller, req.Value)
	})
}

func (h *AdminHandler) SetPlaceholderImage(c *gin.Context) {
	var req ValueRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetPlaceholderImage(c.Request.Context(), caller, req.Value)
	})
}

func (h *AdminHandler) SetMerkleRoot(c *gin.Context) {
	var req ValueRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	root, err := parseHash(req.Value)
	if err != nil {
		WriteError(c, err)
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetMerkleRoot(c.Request.Context(), caller, root)
	})
}

func (h *AdminHandler) SetSigner(c *gin.Context) {
	var req AddressRequest
	if !bindAdminRequest(c, &req) {
		return
	}
	signer, err := parseAddress(req.Address)
	if err != nil {
		WriteError(c, err)
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetSigner(c.Request.Context(), caller, signer)
	})
}

func (h *AdminHandler) SetRevealSeed(c *gin.Context) {
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetRevealSeed(c.Request.Context(), caller)
	})
}

func (h *AdminHandler) SetLinkedTraits(c *gin.Context) {
	var req struct {
		Links []TraitLink `json:"links"`
	}
	if !bindAdminRequest(c, &req) {
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetLinkedTraits(c.Request.Context(), caller, parseTraitLinks(req.Links))
	})
}

func (h *AdminHandler) SetWithdrawRecipients(c *gin.Context) {
	var req struct {
		Recipients []WithdrawRecipient `json:"recipients"`
	}
	if !bindAdminRequest(c, &req) {
		return
	}
	recipients := make([]domain.WithdrawRecipient, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		addr, err := parseAddress(r.Address)
		if err != nil {
			WriteError(c, err)
			return
		}
		recipients = append(recipients, domain.WithdrawRecipient{
			Name:     r.Name,
			ImageURL: r.ImageURL,
			Address:  addr,
			Bps:      r.Bps,
		})
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetWithdrawRecipients(c.Request.Context(), caller, recipients)
	})
}

func (h *AdminHandler) SetContractData(c *gin.Context) {
	var req ContractData
	if !bindAdminRequest(c, &req) {
		return
	}
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.SetContractData(c.Request.Context(), caller, domain.ContractData(req))
	})
}

func (h *AdminHandler) Seal(c *gin.Context) {
	h.reply(c, func(caller common.Address) errors.Error {
		return h.admin.Seal(c.Request.Context(), caller)
	})
}

func (h *AdminHandler) toggle(
	c *gin.Context,
	toggle func(ctx context.Context, caller common.Address) (bool, errors.Error),
) {
	caller, err := parseCaller(c)
	if err != nil {
		WriteError(c, err)
		return
	}
	active, svcErr := toggle(c.Request.Context(), caller)
	if svcErr != nil {
		WriteError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": active})
}

// reply runs call on behalf of the request caller and replies with an empty
// object on success.
func (h *AdminHandler) reply(c *gin.Context, call func(caller common.Address) errors.Error) {
	caller, err := parseCaller(c)
	if err != nil {
		WriteError(c, err)
		return
	}
	if err := call(caller); err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func bindAdminRequest(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		WriteError(c, err)
		return false
	}
	return true
}

func toTraitInput(t Trait) application.TraitInput {
	return application.TraitInput{
		Name:              t.Name,
		Mimetype:          t.Mimetype,
		Weight:            t.Weight,
		Hide:              t.Hide,
		UseExistingData:   t.UseExistingData,
		ExistingDataIndex: t.ExistingDataIndex,
		Data:              t.Data,
	}
}
