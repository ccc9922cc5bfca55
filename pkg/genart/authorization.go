package genart

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// MintAuthorization is the off-chain credential of a signature mint.
type MintAuthorization struct {
	Nonce        *big.Int
	Contract     common.Address
	Caller       common.Address
	Quantity     uint64
	MaxPerWallet uint64
	Price        *big.Int
	Fee          *big.Int
	ChainID      *big.Int
}

// MessageHash is keccak256(abi.encodePacked(nonce, contract, caller,
// quantity, maxPerWallet, price, fee, chainId)).
func (a MintAuthorization) MessageHash() common.Hash {
	return crypto.Keccak256Hash(
		u256(a.Nonce),
		a.Contract.Bytes(),
		a.Caller.Bytes(),
		uint256(a.Quantity),
		uint256(a.MaxPerWallet),
		u256(a.Price),
		u256(a.Fee),
		u256(a.ChainID),
	)
}

// Validate checks that every amount of the authorization is encodable as a
// uint256. Missing amounts other than the nonce encode as zero.
func (a MintAuthorization) Validate() error {
	if a.Nonce == nil {
		return fmt.Errorf("missing nonce")
	}
	values := []struct {
		name  string
		value *big.Int
	}{
		{"nonce", a.Nonce},
		{"price", a.Price},
		{"fee", a.Fee},
		{"chain id", a.ChainID},
	}
	for _, v := range values {
		if v.value == nil {
			continue
		}
		if v.value.Sign() < 0 || v.value.Cmp(math.MaxBig256) > 0 {
			return fmt.Errorf("%s out of uint256 range", v.name)
		}
	}
	return nil
}

// SigningHash is the EIP-191 personal message hash of MessageHash.
func (a MintAuthorization) SigningHash() []byte {
	msg := a.MessageHash()
	return accounts.TextHash(msg[:])
}

// Sign returns a 65 bytes [R || S || V] signature with V in {27, 28}.
func (a MintAuthorization) Sign(key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(a.SigningHash(), key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// RecoverSigner returns the address that produced sig over the authorization.
func (a MintAuthorization) RecoverSigner(sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf(
			"invalid signature length: got %d, expected %d", len(sig), crypto.SignatureLength,
		)
	}
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	pubkey, err := crypto.SigToPub(a.SigningHash(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

func u256(v *big.Int) []byte {
	if v == nil {
		return make([]byte, 32)
	}
	return math.U256Bytes(new(big.Int).Set(v))
}
