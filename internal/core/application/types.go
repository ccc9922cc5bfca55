package application

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/pkg/errors"
	"github.com/indelible-labs/indelibled/pkg/genart"
)

type Service interface {
	Mint(ctx context.Context, call Call, quantity uint64) (*MintResult, errors.Error)
	AllowlistMint(
		ctx context.Context, call Call, quantity uint64, proof []common.Hash, quota uint64,
	) (*MintResult, errors.Error)
	SignatureMint(
		ctx context.Context, call Call, auth SignedMintAuthorization,
	) (*MintResult, errors.Error)
	// Receive handles a bare transfer of value to the collection address.
	Receive(ctx context.Context, call Call) (*MintResult, errors.Error)
	Airdrop(
		ctx context.Context, caller common.Address, quantity uint64, recipients []common.Address,
	) (*MintResult, errors.Error)
	Withdraw(ctx context.Context, caller common.Address) (*WithdrawResult, errors.Error)
	SetRenderOfTokenID(
		ctx context.Context, caller common.Address, tokenID uint64, offChain bool,
	) errors.Error

	GetCollection(ctx context.Context) (*domain.Collection, errors.Error)
	GetLayers(ctx context.Context) ([]domain.Layer, errors.Error)
	TokenHash(ctx context.Context, tokenID uint64) (string, errors.Error)
	TokenURI(ctx context.Context, tokenID uint64) (string, errors.Error)
	ContractURI(ctx context.Context) (string, errors.Error)
	HashToSVG(ctx context.Context, hash string) (string, errors.Error)
	HashToMetadata(ctx context.Context, hash string) ([]genart.Attribute, errors.Error)
	TraitData(ctx context.Context, layer, trait int) ([]byte, errors.Error)
}

type AdminService interface {
	InitCollection(ctx context.Context, collection domain.Collection) errors.Error
	AddLayer(ctx context.Context, caller common.Address, layer LayerInput) errors.Error
	AddTrait(
		ctx context.Context, caller common.Address, layer, traitIndex int, trait TraitInput,
	) errors.Error
	AddChunk(ctx context.Context, caller common.Address, chunk domain.Chunk) errors.Error
	TogglePublicMint(ctx context.Context, caller common.Address) (bool, errors.Error)
	ToggleAllowlistMint(ctx context.Context, caller common.Address) (bool, errors.Error)
	SetMintModes(ctx context.Context, caller common.Address, modes domain.MintModes) errors.Error
	SetPrices(ctx context.Context, caller common.Address, prices Prices) errors.Error
	SetMintLimits(ctx context.Context, caller common.Address, limits MintLimits) errors.Error
	SetMintWindow(ctx context.Context, caller common.Address, start, end int64) errors.Error
	SetBaseURI(ctx context.Context, caller common.Address, baseURI string) errors.Error
	SetPlaceholderImage(ctx context.Context, caller common.Address, image string) errors.Error
	SetMerkleRoot(ctx context.Context, caller common.Address, root common.Hash) errors.Error
	SetSigner(ctx context.Context, caller common.Address, signer common.Address) errors.Error
	SetRevealSeed(ctx context.Context, caller common.Address) errors.Error
	SetLinkedTraits(
		ctx context.Context, caller common.Address, links []genart.TraitLink,
	) errors.Error
	SetWithdrawRecipients(
		ctx context.Context, caller common.Address, recipients []domain.WithdrawRecipient,
	) errors.Error
	SetContractData(
		ctx context.Context, caller common.Address, data domain.ContractData,
	) errors.Error
	Seal(ctx context.Context, caller common.Address) errors.Error
}

// Call is the envelope of a mint request: Caller is the account invoking the
// engine, Origin the account that signed the outer transaction and Value the
// native value attached.
type Call struct {
	Caller common.Address
	Origin common.Address
	Value  *big.Int
}

type SignedMintAuthorization struct {
	Signature    []byte
	Nonce        *big.Int
	Quantity     uint64
	MaxPerWallet uint64
	Price        *big.Int
	Fee          *big.Int
}

type MintResult struct {
	FirstTokenID uint64
	Quantity     uint64
	Recipients   []common.Address
}

type WithdrawResult struct {
	Balance *big.Int
	Payouts []genart.Payout
}

type TraitInput struct {
	Name              string
	Mimetype          string
	Weight            uint64
	Hide              bool
	UseExistingData   bool
	ExistingDataIndex int
	Data              []byte
}

type LayerInput struct {
	Index        int
	Name         string
	PrimeNumber  uint64
	VariantCount uint64
	Traits       []TraitInput
}

// Prices updates only the non nil values.
type Prices struct {
	PublicMintPrice *big.Int
	AllowlistPrice  *big.Int
}

type MintLimits struct {
	MaxPerAddress   uint64
	MaxPerAllowlist uint64
}
