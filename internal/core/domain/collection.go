package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/indelible-labs/indelibled/pkg/genart"
)

// MintModes is the set of mint paths a collection accepts.
type MintModes uint8

const (
	MintModePublic MintModes = 1 << iota
	MintModeAllowlist
	MintModeSignature

	MintModeAll = MintModePublic | MintModeAllowlist | MintModeSignature
)

func (m MintModes) Has(mode MintModes) bool {
	return m&mode == mode
}

// ParseMintModes parses mode names as printed by MintModes.String.
func ParseMintModes(modes []string) (MintModes, error) {
	var parsed MintModes
	for _, mode := range modes {
		switch strings.ToLower(strings.TrimSpace(mode)) {
		case "public":
			parsed |= MintModePublic
		case "allowlist":
			parsed |= MintModeAllowlist
		case "signature":
			parsed |= MintModeSignature
		default:
			return 0, fmt.Errorf("unknown mint mode %q", mode)
		}
	}
	return parsed, nil
}

func (m MintModes) String() string {
	modes := ""
	for _, mode := range []struct {
		flag MintModes
		name string
	}{
		{MintModePublic, "public"},
		{MintModeAllowlist, "allowlist"},
		{MintModeSignature, "signature"},
	} {
		if !m.Has(mode.flag) {
			continue
		}
		if modes != "" {
			modes += ","
		}
		modes += mode.name
	}
	if modes == "" {
		return "none"
	}
	return modes
}

// ContractData is the collection-level metadata shown by marketplaces.
type ContractData struct {
	Name               string
	Description        string
	Image              string
	Banner             string
	Website            string
	Royalties          uint64
	RoyaltiesRecipient string
}

type WithdrawRecipient struct {
	Name     string
	ImageURL string
	Address  common.Address
	Bps      uint64
}

type Collection struct {
	Name     string
	Symbol   string
	Address  common.Address
	Owner    common.Address
	Operator common.Address
	ChainID  *big.Int
	Network  string

	MaxSupply     uint64
	MaxPerAddress uint64
	NumLayers     int
	// LayerWeights optionally presets the weight table of every layer.
	LayerWeights [][]uint64

	MintModes          MintModes
	IsPublicMintActive bool
	IsAllowlistActive  bool
	MintStart          int64
	MintEnd            int64
	PublicMintPrice    *big.Int
	AllowlistPrice     *big.Int
	MaxPerAllowlist    uint64
	MerkleRoot         common.Hash
	Signer             common.Address

	ProtocolFee      *big.Int
	FeeRecipient     common.Address
	ProtocolShareBps uint64

	BaseURI          string
	PlaceholderImage string
	BackgroundColor  string
	ContractData     ContractData

	RevealSeed         genart.Seed
	TraitLinks         []genart.TraitLink
	WithdrawRecipients []WithdrawRecipient
	IsSealed           bool
	TotalMinted        uint64
	UpdatedAt          time.Time
}

func (c *Collection) IsRevealed() bool {
	return !c.RevealSeed.IsZero()
}

// IsPrivileged returns whether addr is the owner or the operator.
func (c *Collection) IsPrivileged(addr common.Address) bool {
	if addr == (common.Address{}) {
		return false
	}
	return addr == c.Owner || addr == c.Operator
}

func (c *Collection) IsMintWindowOpen(now time.Time) bool {
	ts := now.Unix()
	if c.MintStart > 0 && ts < c.MintStart {
		return false
	}
	if c.MintEnd > 0 && ts >= c.MintEnd {
		return false
	}
	return true
}

func (c *Collection) RemainingSupply() uint64 {
	if c.TotalMinted >= c.MaxSupply {
		return 0
	}
	return c.MaxSupply - c.TotalMinted
}

func (c *Collection) Shares() []genart.Share {
	shares := make([]genart.Share, 0, len(c.WithdrawRecipients)+1)
	for _, r := range c.WithdrawRecipients {
		shares = append(shares, genart.Share{Address: r.Address, Bps: r.Bps})
	}
	return shares
}

func (c *Collection) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("missing collection name")
	}
	if c.Owner == (common.Address{}) {
		return fmt.Errorf("missing collection owner")
	}
	if c.Address == (common.Address{}) {
		return fmt.Errorf("missing collection address")
	}
	if c.MaxSupply == 0 {
		return fmt.Errorf("max supply must be greater than zero")
	}
	if c.NumLayers <= 0 {
		return fmt.Errorf("number of layers must be greater than zero")
	}
	if len(c.LayerWeights) > 0 {
		if len(c.LayerWeights) != c.NumLayers {
			return fmt.Errorf(
				"got %d weight tables for %d layers", len(c.LayerWeights), c.NumLayers,
			)
		}
		for i, weights := range c.LayerWeights {
			if err := genart.ValidateWeights(weights, c.MaxSupply); err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
		}
	}
	if c.MintEnd > 0 && c.MintEnd <= c.MintStart {
		return fmt.Errorf("mint end must be after mint start")
	}
	if c.ChainID != nil && (c.ChainID.Sign() < 0 || c.ChainID.Cmp(math.MaxBig256) > 0) {
		return fmt.Errorf("chain id out of uint256 range")
	}
	for _, price := range []*big.Int{c.PublicMintPrice, c.AllowlistPrice, c.ProtocolFee} {
		if price != nil && price.Sign() < 0 {
			return fmt.Errorf("prices and fees must not be negative")
		}
	}
	if c.ProtocolFee != nil && c.ProtocolFee.Sign() > 0 && c.FeeRecipient == (common.Address{}) {
		return fmt.Errorf("missing fee recipient")
	}
	if c.ProtocolShareBps > 0 && c.FeeRecipient == (common.Address{}) {
		return fmt.Errorf("missing fee recipient")
	}
	if err := genart.ValidateShares(c.Shares(), c.ProtocolShareBps); err != nil {
		return fmt.Errorf("invalid withdraw recipients: %w", err)
	}
	for _, link := range c.TraitLinks {
		if err := link.Validate(c.NumLayers); err != nil {
			return fmt.Errorf("invalid trait link: %w", err)
		}
	}
	return nil
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	clone := c
	clone.ChainID = cloneInt(c.ChainID)
	clone.PublicMintPrice = cloneInt(c.PublicMintPrice)
	clone.AllowlistPrice = cloneInt(c.AllowlistPrice)
	clone.ProtocolFee = cloneInt(c.ProtocolFee)
	if c.LayerWeights != nil {
		clone.LayerWeights = make([][]uint64, 0, len(c.LayerWeights))
		for _, w := range c.LayerWeights {
			clone.LayerWeights = append(clone.LayerWeights, append([]uint64{}, w...))
		}
	}
	if c.TraitLinks != nil {
		clone.TraitLinks = append([]genart.TraitLink{}, c.TraitLinks...)
	}
	if c.WithdrawRecipients != nil {
		clone.WithdrawRecipients = append([]WithdrawRecipient{}, c.WithdrawRecipients...)
	}
	return clone
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
