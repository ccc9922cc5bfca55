package handlers

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/indelible-labs/indelibled/internal/core/application"
	"github.com/indelible-labs/indelibled/pkg/errors"
	"github.com/indelible-labs/indelibled/pkg/genart"
)

const (
	// CallerHeader carries the account invoking the engine. The gateway in
	// front of the service is in charge of authenticating it.
	CallerHeader = "X-Caller-Address"
	// OriginHeader carries the account that signed the outer transaction.
	OriginHeader = "X-Origin-Address"
)

func parseCaller(c *gin.Context) (common.Address, error) {
	caller := c.GetHeader(CallerHeader)
	if caller == "" {
		return common.Address{}, errors.NOT_AUTHORIZED.New("missing %s header", CallerHeader)
	}
	addr, err := parseAddress(caller)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid %s header: %s", CallerHeader, err)
	}
	return addr, nil
}

func parseCall(c *gin.Context, value string) (application.Call, error) {
	caller, err := parseCaller(c)
	if err != nil {
		return application.Call{}, err
	}
	var origin common.Address
	if header := c.GetHeader(OriginHeader); header != "" {
		if origin, err = parseAddress(header); err != nil {
			return application.Call{}, fmt.Errorf("invalid %s header: %s", OriginHeader, err)
		}
	}
	amount, err := parseAmount(value)
	if err != nil {
		return application.Call{}, fmt.Errorf("invalid value: %s", err)
	}
	return application.Call{Caller: caller, Origin: origin, Value: amount}, nil
}

func parseAddress(addr string) (common.Address, error) {
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("%q is not an address", addr)
	}
	return common.HexToAddress(addr), nil
}

func parseAddresses(addrs []string) ([]common.Address, error) {
	parsed := make([]common.Address, 0, len(addrs))
	for _, addr := range addrs {
		a, err := parseAddress(addr)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, a)
	}
	return parsed, nil
}

// parseAmount parses a base 10 amount of wei, empty meaning zero.
func parseAmount(amount string) (*big.Int, error) {
	if amount == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", amount)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return v, nil
}

func parseOptionalAmount(amount string) (*big.Int, error) {
	if amount == "" {
		return nil, nil
	}
	return parseAmount(amount)
}

func parseHash(hash string) (common.Hash, error) {
	buf, err := hexutil.Decode(hash)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash %q: %s", hash, err)
	}
	if len(buf) != common.HashLength {
		return common.Hash{}, fmt.Errorf(
			"invalid hash %q: got %d bytes, expected %d", hash, len(buf), common.HashLength,
		)
	}
	return common.BytesToHash(buf), nil
}

func parseProof(proof []string) ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, len(proof))
	for _, p := range proof {
		h, err := parseHash(p)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

func parseUintParam(c *gin.Context, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return v, nil
}

func parseIntParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return v, nil
}

func parseSignedAuthorization(req SignatureMintRequest) (application.SignedMintAuthorization, error) {
	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		return application.SignedMintAuthorization{}, fmt.Errorf("invalid signature: %s", err)
	}
	nonce, ok := new(big.Int).SetString(req.Nonce, 10)
	if !ok {
		return application.SignedMintAuthorization{}, fmt.Errorf("invalid nonce %q", req.Nonce)
	}
	price, err := parseAmount(req.Price)
	if err != nil {
		return application.SignedMintAuthorization{}, fmt.Errorf("invalid price: %s", err)
	}
	fee, err := parseAmount(req.Fee)
	if err != nil {
		return application.SignedMintAuthorization{}, fmt.Errorf("invalid fee: %s", err)
	}
	return application.SignedMintAuthorization{
		Signature:    sig,
		Nonce:        nonce,
		Quantity:     req.Quantity,
		MaxPerWallet: req.MaxPerWallet,
		Price:        price,
		Fee:          fee,
	}, nil
}

func parseTraitLinks(links []TraitLink) []genart.TraitLink {
	parsed := make([]genart.TraitLink, 0, len(links))
	for _, l := range links {
		parsed = append(parsed, genart.TraitLink(l))
	}
	return parsed
}
