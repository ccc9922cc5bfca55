package main

import (
	"github.com/urfave/cli/v2"
)

const (
	fileFlagName         = "file"
	addressFlagName      = "address"
	signerKeyFlagName    = "signer-prvkey"
	contractFlagName     = "contract"
	callerFlagName       = "caller"
	chainIDFlagName      = "chain-id"
	nonceFlagName        = "nonce"
	quantityFlagName     = "quantity"
	maxPerWalletFlagName = "max-per-wallet"
	priceFlagName        = "price"
	feeFlagName          = "fee"
)

var (
	allowlistFileFlag = &cli.StringFlag{
		Name: fileFlagName,
		Usage: "file listing one allowed address per line, optionally followed by a comma " +
			"and its mint quota",
		Required: true,
	}
	allowlistAddressFlag = &cli.StringFlag{
		Name:  addressFlagName,
		Usage: "address to compute the allowlist proof for",
	}
	signerKeyFlag = &cli.StringFlag{
		Name:     signerKeyFlagName,
		Usage:    "hex encoded private key of the collection signer",
		EnvVars:  []string{"INDELIBLED_SIGNER_PRVKEY"},
		Required: true,
	}
	contractFlag = &cli.StringFlag{
		Name:     contractFlagName,
		Usage:    "address of the collection",
		Required: true,
	}
	callerFlag = &cli.StringFlag{
		Name:     callerFlagName,
		Usage:    "address the authorization is issued to",
		Required: true,
	}
	chainIDFlag = &cli.Uint64Flag{
		Name:  chainIDFlagName,
		Usage: "chain id of the collection",
		Value: 1,
	}
	nonceFlag = &cli.StringFlag{
		Name:  nonceFlagName,
		Usage: "nonce of the authorization, random if unset",
	}
	quantityFlag = &cli.Uint64Flag{
		Name:  quantityFlagName,
		Usage: "quantity of tokens to authorize",
		Value: 1,
	}
	maxPerWalletFlag = &cli.Uint64Flag{
		Name:  maxPerWalletFlagName,
		Usage: "max number of tokens the caller can hold through signature mints, 0 for no limit",
	}
	priceFlag = &cli.StringFlag{
		Name:  priceFlagName,
		Usage: "unit price in wei",
		Value: "0",
	}
	feeFlag = &cli.StringFlag{
		Name:  feeFlagName,
		Usage: "unit protocol fee in wei",
		Value: "0",
	}
)
