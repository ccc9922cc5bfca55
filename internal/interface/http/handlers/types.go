package handlers

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/application"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/pkg/genart"
)

type MintRequest struct {
	Quantity uint64 `json:"quantity"`
	Value    string `json:"value"`
}

type AllowlistMintRequest struct {
	Quantity uint64   `json:"quantity"`
	Value    string   `json:"value"`
	Proof    []string `json:"proof"`
	// Quota is the allowance encoded in the allowlist leaf, if any.
	Quota uint64 `json:"quota"`
}

type SignatureMintRequest struct {
	Value        string `json:"value"`
	Signature    string `json:"signature" binding:"required"`
	Nonce        string `json:"nonce" binding:"required"`
	Quantity     uint64 `json:"quantity"`
	MaxPerWallet uint64 `json:"max_per_wallet"`
	Price        string `json:"price"`
	Fee          string `json:"fee"`
}

type ReceiveRequest struct {
	Value string `json:"value" binding:"required"`
}

type AirdropRequest struct {
	Quantity   uint64   `json:"quantity"`
	Recipients []string `json:"recipients" binding:"required"`
}

type RenderRequest struct {
	OffChain bool `json:"off_chain"`
}

type MintResponse struct {
	FirstTokenID uint64   `json:"first_token_id"`
	Quantity     uint64   `json:"quantity"`
	Recipients   []string `json:"recipients"`
}

type Payout struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type WithdrawResponse struct {
	Balance string   `json:"balance"`
	Payouts []Payout `json:"payouts"`
}

type Trait struct {
	Name              string `json:"name"`
	Mimetype          string `json:"mimetype"`
	Weight            uint64 `json:"weight"`
	Hide              bool   `json:"hide"`
	UseExistingData   bool   `json:"use_existing_data"`
	ExistingDataIndex int    `json:"existing_data_index"`
	// Data is the base64 encoded first chunk of the trait image.
	Data []byte `json:"data,omitempty"`
}

type Layer struct {
	Index        int     `json:"index"`
	Name         string  `json:"name"`
	PrimeNumber  uint64  `json:"prime_number"`
	VariantCount uint64  `json:"variant_count"`
	Traits       []Trait `json:"traits"`
}

type ChunkRequest struct {
	Layer int    `json:"layer"`
	Trait int    `json:"trait"`
	Index int    `json:"index"`
	Data  []byte `json:"data" binding:"required"`
}

type TraitLink struct {
	SourceLayer int `json:"source_layer"`
	SourceTrait int `json:"source_trait"`
	TargetLayer int `json:"target_layer"`
	TargetTrait int `json:"target_trait"`
}

type WithdrawRecipient struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Address  string `json:"address"`
	Bps      uint64 `json:"bps"`
}

type ContractData struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Image              string `json:"image"`
	Banner             string `json:"banner"`
	Website            string `json:"website"`
	Royalties          uint64 `json:"royalties"`
	RoyaltiesRecipient string `json:"royalties_recipient"`
}

type PricesRequest struct {
	PublicMintPrice string `json:"public_mint_price"`
	AllowlistPrice  string `json:"allowlist_price"`
}

type MintLimitsRequest struct {
	MaxPerAddress   uint64 `json:"max_per_address"`
	MaxPerAllowlist uint64 `json:"max_per_allowlist"`
}

type MintWindowRequest struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type MintModesRequest struct {
	Modes []string `json:"modes"`
}

type ValueRequest struct {
	Value string `json:"value"`
}

type AddressRequest struct {
	Address string `json:"address" binding:"required"`
}

type DepositRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type Collection struct {
	Name               string              `json:"name"`
	Symbol             string              `json:"symbol"`
	Address            string              `json:"address"`
	Owner              string              `json:"owner"`
	Operator           string              `json:"operator,omitempty"`
	ChainID            string              `json:"chain_id"`
	Network            string              `json:"network"`
	MaxSupply          uint64              `json:"max_supply"`
	TotalMinted        uint64              `json:"total_minted"`
	MaxPerAddress      uint64              `json:"max_per_address"`
	MaxPerAllowlist    uint64              `json:"max_per_allowlist"`
	NumLayers          int                 `json:"num_layers"`
	MintModes          string              `json:"mint_modes"`
	IsPublicMintActive bool                `json:"is_public_mint_active"`
	IsAllowlistActive  bool                `json:"is_allowlist_active"`
	MintStart          int64               `json:"mint_start"`
	MintEnd            int64               `json:"mint_end"`
	PublicMintPrice    string              `json:"public_mint_price"`
	AllowlistPrice     string              `json:"allowlist_price"`
	ProtocolFee        string              `json:"protocol_fee"`
	FeeRecipient       string              `json:"fee_recipient,omitempty"`
	ProtocolShareBps   uint64              `json:"protocol_share_bps"`
	MerkleRoot         string              `json:"merkle_root,omitempty"`
	Signer             string              `json:"signer,omitempty"`
	BaseURI            string              `json:"base_uri"`
	PlaceholderImage   string              `json:"placeholder_image"`
	BackgroundColor    string              `json:"background_color"`
	ContractData       ContractData        `json:"contract_data"`
	TraitLinks         []TraitLink         `json:"trait_links"`
	WithdrawRecipients []WithdrawRecipient `json:"withdraw_recipients"`
	IsRevealed         bool                `json:"is_revealed"`
	IsSealed           bool                `json:"is_sealed"`
}

func toMintResponse(res *application.MintResult) MintResponse {
	return MintResponse{
		FirstTokenID: res.FirstTokenID,
		Quantity:     res.Quantity,
		Recipients:   hexAddresses(res.Recipients),
	}
}

func toWithdrawResponse(res *application.WithdrawResult) WithdrawResponse {
	payouts := make([]Payout, 0, len(res.Payouts))
	for _, p := range res.Payouts {
		payouts = append(payouts, Payout{Address: p.Address.Hex(), Amount: p.Amount.String()})
	}
	return WithdrawResponse{Balance: res.Balance.String(), Payouts: payouts}
}

func toLayers(layers []domain.Layer) []Layer {
	list := make([]Layer, 0, len(layers))
	for _, l := range layers {
		traits := make([]Trait, 0, len(l.Traits))
		for _, t := range l.Traits {
			traits = append(traits, Trait{
				Name:              t.Name,
				Mimetype:          t.Mimetype,
				Weight:            t.Weight,
				Hide:              t.Hide,
				UseExistingData:   t.UseExistingData,
				ExistingDataIndex: t.ExistingDataIndex,
			})
		}
		list = append(list, Layer{
			Index:        l.Index,
			Name:         l.Name,
			PrimeNumber:  l.PrimeNumber,
			VariantCount: l.VariantCount,
			Traits:       traits,
		})
	}
	return list
}

func toCollection(c *domain.Collection) Collection {
	links := make([]TraitLink, 0, len(c.TraitLinks))
	for _, l := range c.TraitLinks {
		links = append(links, TraitLink(l))
	}
	recipients := make([]WithdrawRecipient, 0, len(c.WithdrawRecipients))
	for _, r := range c.WithdrawRecipients {
		recipients = append(recipients, WithdrawRecipient{
			Name:     r.Name,
			ImageURL: r.ImageURL,
			Address:  r.Address.Hex(),
			Bps:      r.Bps,
		})
	}
	return Collection{
		Name:               c.Name,
		Symbol:             c.Symbol,
		Address:            c.Address.Hex(),
		Owner:              c.Owner.Hex(),
		Operator:           optionalAddress(c.Operator),
		ChainID:            amountString(c.ChainID),
		Network:            c.Network,
		MaxSupply:          c.MaxSupply,
		TotalMinted:        c.TotalMinted,
		MaxPerAddress:      c.MaxPerAddress,
		MaxPerAllowlist:    c.MaxPerAllowlist,
		NumLayers:          c.NumLayers,
		MintModes:          c.MintModes.String(),
		IsPublicMintActive: c.IsPublicMintActive,
		IsAllowlistActive:  c.IsAllowlistActive,
		MintStart:          c.MintStart,
		MintEnd:            c.MintEnd,
		PublicMintPrice:    amountString(c.PublicMintPrice),
		AllowlistPrice:     amountString(c.AllowlistPrice),
		ProtocolFee:        amountString(c.ProtocolFee),
		FeeRecipient:       optionalAddress(c.FeeRecipient),
		ProtocolShareBps:   c.ProtocolShareBps,
		MerkleRoot:         optionalHash(c.MerkleRoot),
		Signer:             optionalAddress(c.Signer),
		BaseURI:            c.BaseURI,
		PlaceholderImage:   c.PlaceholderImage,
		BackgroundColor:    c.BackgroundColor,
		ContractData:       ContractData(c.ContractData),
		TraitLinks:         links,
		WithdrawRecipients: recipients,
		IsRevealed:         c.IsRevealed(),
		IsSealed:           c.IsSealed,
	}
}

func toAttributes(attributes []genart.Attribute) []genart.Attribute {
	if attributes == nil {
		return []genart.Attribute{}
	}
	return attributes
}

func hexAddresses(addrs []common.Address) []string {
	list := make([]string, 0, len(addrs))
	for _, a := range addrs {
		list = append(list, a.Hex())
	}
	return list
}

func optionalAddress(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return addr.Hex()
}

func optionalHash(hash common.Hash) string {
	if hash == (common.Hash{}) {
		return ""
	}
	return hash.Hex()
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
