package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const etherDecimals = 18

// collectionFile is the layout of the file the collection is bootstrapped
// from. Prices and fees are expressed in ether.
type collectionFile struct {
	Name          string     `mapstructure:"name"`
	Symbol        string     `mapstructure:"symbol"`
	Address       string     `mapstructure:"address"`
	Owner         string     `mapstructure:"owner"`
	Operator      string     `mapstructure:"operator"`
	ChainID       uint64     `mapstructure:"chain_id"`
	Network       string     `mapstructure:"network"`
	MaxSupply     uint64     `mapstructure:"max_supply"`
	MaxPerAddress uint64     `mapstructure:"max_per_address"`
	NumLayers     int        `mapstructure:"num_layers"`
	LayerWeights  [][]uint64 `mapstructure:"layer_weights"`

	MintModes          []string                `mapstructure:"mint_modes"`
	PublicMintActive   bool                    `mapstructure:"public_mint_active"`
	AllowlistActive    bool                    `mapstructure:"allowlist_active"`
	MintStart          int64                   `mapstructure:"mint_start"`
	MintEnd            int64                   `mapstructure:"mint_end"`
	PublicMintPrice    string                  `mapstructure:"public_mint_price"`
	AllowlistPrice     string                  `mapstructure:"allowlist_price"`
	MaxPerAllowlist    uint64                  `mapstructure:"max_per_allowlist"`
	MerkleRoot         string                  `mapstructure:"merkle_root"`
	Signer             string                  `mapstructure:"signer"`
	ProtocolFee        string                  `mapstructure:"protocol_fee"`
	FeeRecipient       string                  `mapstructure:"fee_recipient"`
	ProtocolShareBps   uint64                  `mapstructure:"protocol_share_bps"`
	BaseURI            string                  `mapstructure:"base_uri"`
	PlaceholderImage   string                  `mapstructure:"placeholder_image"`
	BackgroundColor    string                  `mapstructure:"background_color"`
	ContractData       contractDataFile        `mapstructure:"contract_data"`
	WithdrawRecipients []withdrawRecipientFile `mapstructure:"withdraw_recipients"`
	TraitLinks         []traitLinkFile         `mapstructure:"trait_links"`
}

type contractDataFile struct {
	Name               string `mapstructure:"name"`
	Description        string `mapstructure:"description"`
	Image              string `mapstructure:"image"`
	Banner             string `mapstructure:"banner"`
	Website            string `mapstructure:"website"`
	Royalties          uint64 `mapstructure:"royalties"`
	RoyaltiesRecipient string `mapstructure:"royalties_recipient"`
}

type traitLinkFile struct {
	SourceLayer int `mapstructure:"source_layer"`
	SourceTrait int `mapstructure:"source_trait"`
	TargetLayer int `mapstructure:"target_layer"`
	TargetTrait int `mapstructure:"target_trait"`
}

type withdrawRecipientFile struct {
	Name     string `mapstructure:"name"`
	ImageURL string `mapstructure:"image_url"`
	Address  string `mapstructure:"address"`
	Bps      uint64 `mapstructure:"bps"`
}

// LoadCollection reads the collection parameters from a yaml, json or toml
// file, the format being picked from the file extension.
func LoadCollection(path string) (*domain.Collection, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read collection file: %s", err)
	}

	var file collectionFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to parse collection file: %s", err)
	}
	return file.toDomain()
}

func (f collectionFile) toDomain() (*domain.Collection, error) {
	var err error
	collection := &domain.Collection{
		Name:               f.Name,
		Symbol:             f.Symbol,
		ChainID:            new(big.Int).SetUint64(f.ChainID),
		Network:            f.Network,
		MaxSupply:          f.MaxSupply,
		MaxPerAddress:      f.MaxPerAddress,
		NumLayers:          f.NumLayers,
		LayerWeights:       f.LayerWeights,
		IsPublicMintActive: f.PublicMintActive,
		IsAllowlistActive:  f.AllowlistActive,
		MintStart:          f.MintStart,
		MintEnd:            f.MintEnd,
		MaxPerAllowlist:    f.MaxPerAllowlist,
		ProtocolShareBps:   f.ProtocolShareBps,
		BaseURI:            f.BaseURI,
		PlaceholderImage:   f.PlaceholderImage,
		BackgroundColor:    f.BackgroundColor,
		ContractData: domain.ContractData{
			Name:               f.ContractData.Name,
			Description:        f.ContractData.Description,
			Image:              f.ContractData.Image,
			Banner:             f.ContractData.Banner,
			Website:            f.ContractData.Website,
			Royalties:          f.ContractData.Royalties,
			RoyaltiesRecipient: f.ContractData.RoyaltiesRecipient,
		},
	}

	if collection.MintModes, err = domain.ParseMintModes(f.MintModes); err != nil {
		return nil, err
	}
	if len(f.MintModes) == 0 {
		collection.MintModes = domain.MintModeAll
	}

	addresses := []struct {
		name     string
		value    string
		target   *common.Address
		required bool
	}{
		{"address", f.Address, &collection.Address, true},
		{"owner", f.Owner, &collection.Owner, true},
		{"operator", f.Operator, &collection.Operator, false},
		{"signer", f.Signer, &collection.Signer, false},
		{"fee_recipient", f.FeeRecipient, &collection.FeeRecipient, false},
	}
	for _, addr := range addresses {
		if *addr.target, err = parseAddress(addr.value, addr.required); err != nil {
			return nil, fmt.Errorf("invalid %s: %s", addr.name, err)
		}
	}

	prices := []struct {
		name   string
		value  string
		target **big.Int
	}{
		{"public_mint_price", f.PublicMintPrice, &collection.PublicMintPrice},
		{"allowlist_price", f.AllowlistPrice, &collection.AllowlistPrice},
		{"protocol_fee", f.ProtocolFee, &collection.ProtocolFee},
	}
	for _, price := range prices {
		if *price.target, err = parseEther(price.value); err != nil {
			return nil, fmt.Errorf("invalid %s: %s", price.name, err)
		}
	}

	if f.MerkleRoot != "" {
		root := common.FromHex(f.MerkleRoot)
		if len(root) != common.HashLength {
			return nil, fmt.Errorf("invalid merkle_root: must be %d bytes", common.HashLength)
		}
		collection.MerkleRoot = common.BytesToHash(root)
	}

	for i, r := range f.WithdrawRecipients {
		addr, err := parseAddress(r.Address, true)
		if err != nil {
			return nil, fmt.Errorf("invalid address of withdraw recipient %d: %s", i, err)
		}
		collection.WithdrawRecipients = append(
			collection.WithdrawRecipients, domain.WithdrawRecipient{
				Name:     r.Name,
				ImageURL: r.ImageURL,
				Address:  addr,
				Bps:      r.Bps,
			},
		)
	}

	for _, l := range f.TraitLinks {
		collection.TraitLinks = append(collection.TraitLinks, genart.TraitLink{
			SourceLayer: l.SourceLayer,
			SourceTrait: l.SourceTrait,
			TargetLayer: l.TargetLayer,
			TargetTrait: l.TargetTrait,
		})
	}

	return collection, nil
}

func parseAddress(value string, required bool) (common.Address, error) {
	if value == "" {
		if required {
			return common.Address{}, fmt.Errorf("missing address")
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%q is not an address", value)
	}
	return common.HexToAddress(value), nil
}

// parseEther converts an amount of ether into wei. Amounts with more than 18
// decimals are rejected.
func parseEther(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return big.NewInt(0), nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}
	wei := amount.Shift(etherDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimals", value, etherDecimals)
	}
	return wei.BigInt(), nil
}
