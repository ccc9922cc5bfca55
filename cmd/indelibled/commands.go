package main

import (
	"bufio"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/indelible-labs/indelibled/internal/interface/http/handlers"
	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/urfave/cli/v2"
)

var (
	allowlistCommand = &cli.Command{
		Name:   "allowlist",
		Usage:  "Compute the merkle root of an allowlist and, optionally, the proof of an address",
		Flags:  []cli.Flag{allowlistFileFlag, allowlistAddressFlag},
		Action: allowlistAction,
	}
	signCommand = &cli.Command{
		Name:  "sign",
		Usage: "Sign a mint authorization with the collection signer key",
		Flags: []cli.Flag{
			signerKeyFlag, contractFlag, callerFlag, chainIDFlag, nonceFlag,
			quantityFlag, maxPerWalletFlag, priceFlag, feeFlag,
		},
		Action: signAction,
	}
	versionCommand = &cli.Command{
		Name:  "version",
		Usage: "Print the version of the binary",
		Action: func(c *cli.Context) error {
			return printJSON(map[string]string{
				"version":    Version,
				"go_version": runtime.Version(),
			})
		},
	}
)

type allowlistEntry struct {
	address common.Address
	quota   uint64
}

func (e allowlistEntry) leaf() common.Hash {
	if e.quota > 0 {
		return genart.QuotaLeaf(e.address, e.quota)
	}
	return genart.AllowlistLeaf(e.address)
}

type allowlistResult struct {
	Root    string   `json:"root"`
	Size    int      `json:"size"`
	Address string   `json:"address,omitempty"`
	Quota   uint64   `json:"quota,omitempty"`
	Proof   []string `json:"proof,omitempty"`
}

func allowlistAction(c *cli.Context) error {
	entries, err := loadAllowlist(c.String(fileFlagName))
	if err != nil {
		return err
	}

	var addr *common.Address
	if c.IsSet(addressFlagName) {
		value := c.String(addressFlagName)
		if !common.IsHexAddress(value) {
			return fmt.Errorf("invalid address %q", value)
		}
		a := common.HexToAddress(value)
		addr = &a
	}

	result, err := buildAllowlist(entries, addr)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// loadAllowlist parses lines in the form `address[,quota]`. Blank lines and
// lines starting with # are skipped.
func loadAllowlist(path string) ([]allowlistEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open allowlist: %s", err)
	}
	// nolint
	defer file.Close()

	entries := make([]allowlistEntry, 0)
	seen := make(map[common.Address]struct{})
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, ",")
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: expected address[,quota]", line)
		}
		value := strings.TrimSpace(fields[0])
		if !common.IsHexAddress(value) {
			return nil, fmt.Errorf("line %d: invalid address %q", line, value)
		}
		entry := allowlistEntry{address: common.HexToAddress(value)}
		if len(fields) == 2 {
			quota, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
			if err != nil || quota == 0 {
				return nil, fmt.Errorf("line %d: invalid quota %q", line, fields[1])
			}
			entry.quota = quota
		}
		if _, ok := seen[entry.address]; ok {
			return nil, fmt.Errorf("line %d: duplicate address %s", line, entry.address.Hex())
		}
		seen[entry.address] = struct{}{}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read allowlist: %s", err)
	}
	return entries, nil
}

func buildAllowlist(entries []allowlistEntry, addr *common.Address) (*allowlistResult, error) {
	leaves := make([]common.Hash, 0, len(entries))
	for _, e := range entries {
		leaves = append(leaves, e.leaf())
	}
	tree, err := genart.NewMerkleTree(leaves)
	if err != nil {
		return nil, err
	}

	result := &allowlistResult{Root: tree.Root().Hex(), Size: len(entries)}
	if addr == nil {
		return result, nil
	}

	for _, e := range entries {
		if e.address != *addr {
			continue
		}
		proof, err := tree.Proof(e.leaf())
		if err != nil {
			return nil, err
		}
		result.Address = addr.Hex()
		result.Quota = e.quota
		result.Proof = make([]string, 0, len(proof))
		for _, p := range proof {
			result.Proof = append(result.Proof, p.Hex())
		}
		return result, nil
	}
	return nil, fmt.Errorf("address %s not in allowlist", addr.Hex())
}

func signAction(c *cli.Context) error {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.String(signerKeyFlagName), "0x"))
	if err != nil {
		return fmt.Errorf("invalid signer key: %s", err)
	}

	addresses := make(map[string]common.Address)
	for _, name := range []string{contractFlagName, callerFlagName} {
		value := c.String(name)
		if !common.IsHexAddress(value) {
			return fmt.Errorf("invalid %s address %q", name, value)
		}
		addresses[name] = common.HexToAddress(value)
	}

	amounts := make(map[string]*big.Int)
	for _, name := range []string{priceFlagName, feeFlagName} {
		amount, ok := new(big.Int).SetString(c.String(name), 10)
		if !ok || amount.Sign() < 0 {
			return fmt.Errorf("invalid %s %q", name, c.String(name))
		}
		amounts[name] = amount
	}

	nonce := randomNonce()
	if c.IsSet(nonceFlagName) {
		var ok bool
		if nonce, ok = new(big.Int).SetString(c.String(nonceFlagName), 10); !ok {
			return fmt.Errorf("invalid nonce %q", c.String(nonceFlagName))
		}
	}

	auth := genart.MintAuthorization{
		Nonce:        nonce,
		Contract:     addresses[contractFlagName],
		Caller:       addresses[callerFlagName],
		Quantity:     c.Uint64(quantityFlagName),
		MaxPerWallet: c.Uint64(maxPerWalletFlagName),
		Price:        amounts[priceFlagName],
		Fee:          amounts[feeFlagName],
		ChainID:      new(big.Int).SetUint64(c.Uint64(chainIDFlagName)),
	}
	req, err := signAuthorization(auth, key)
	if err != nil {
		return err
	}
	return printJSON(req)
}

// signAuthorization returns the body of the signature mint request redeeming
// auth, its value being the total price and fee due.
func signAuthorization(
	auth genart.MintAuthorization, key *ecdsa.PrivateKey,
) (*handlers.SignatureMintRequest, error) {
	sig, err := auth.Sign(key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign authorization: %s", err)
	}
	return &handlers.SignatureMintRequest{
		Value:        genart.TotalPrice(auth.Quantity, auth.Price, auth.Fee).String(),
		Signature:    hexutil.Encode(sig),
		Nonce:        auth.Nonce.String(),
		Quantity:     auth.Quantity,
		MaxPerWallet: auth.MaxPerWallet,
		Price:        auth.Price.String(),
		Fee:          auth.Fee.String(),
	}, nil
}

func randomNonce() *big.Int {
	id := uuid.New()
	return new(big.Int).SetBytes(id[:])
}

func printJSON(v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}
