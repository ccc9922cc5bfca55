package application_test

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/indelible-labs/indelibled/internal/core/application"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/pkg/errors"
	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

func TestMint(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t, newCollection())
		env.fund(t, alice, ether)

		res, err := env.svc.Mint(ctx, application.Call{
			Caller: alice, Origin: alice, Value: cost(2, unitPrice),
		}, 2)
		require.NoError(t, err)
		require.Equal(t, uint64(0), res.FirstTokenID)
		require.Equal(t, uint64(2), res.Quantity)
		require.Equal(t, []common.Address{alice}, res.Recipients)

		res, err = env.svc.Mint(ctx, application.Call{
			Caller: alice, Value: cost(3, unitPrice),
		}, 3)
		require.NoError(t, err)
		require.Equal(t, uint64(2), res.FirstTokenID)

		require.Equal(t, uint64(5), env.totalMinted(t))
		require.Equal(t, cost(5, mintPrice), env.balance(t, contract))
		require.Equal(t, cost(5, mintFee), env.balance(t, feeRecipient))
		require.Equal(
			t, new(big.Int).Sub(ether, cost(5, unitPrice)), env.balance(t, alice),
		)
	})

	t.Run("privileged callers skip fee and activation", func(t *testing.T) {
		collection := newCollection()
		collection.IsPublicMintActive = false
		collection.MintStart = 1800000000
		collection.MaxPerAddress = 1

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, owner, ether)
		env.fund(t, operator, ether)

		_, err := env.svc.Mint(ctx, application.Call{
			Caller: owner, Value: cost(3, mintPrice),
		}, 3)
		require.NoError(t, err)
		_, err = env.svc.Mint(ctx, application.Call{
			Caller: operator, Value: cost(2, mintPrice),
		}, 2)
		require.NoError(t, err)

		require.Equal(t, cost(5, mintPrice), env.balance(t, contract))
		require.Zero(t, env.balance(t, feeRecipient).Sign())

		_, err = env.svc.Mint(ctx, application.Call{
			Caller: owner, Value: cost(1, unitPrice),
		}, 1)
		requireCode(t, errors.INVALID_INPUT, err)
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name     string
			update   func(c *domain.Collection)
			call     application.Call
			quantity uint64
			code     interface{ Is(error) bool }
		}{
			{
				name:     "underpaid",
				call:     application.Call{Caller: alice, Value: cost(1, mintPrice)},
				quantity: 1,
				code:     errors.INVALID_INPUT,
			},
			{
				name:     "overpaid",
				call:     application.Call{Caller: alice, Value: cost(3, unitPrice)},
				quantity: 2,
				code:     errors.INVALID_INPUT,
			},
			{
				name:     "zero quantity",
				call:     application.Call{Caller: alice, Value: big.NewInt(0)},
				quantity: 0,
				code:     errors.INVALID_INPUT,
			},
			{
				name:     "sold out",
				call:     application.Call{Caller: alice, Value: cost(101, unitPrice)},
				quantity: 101,
				code:     errors.NOT_AVAILABLE,
			},
			{
				name:     "public mint inactive",
				update:   func(c *domain.Collection) { c.IsPublicMintActive = false },
				call:     application.Call{Caller: alice, Value: cost(1, unitPrice)},
				quantity: 1,
				code:     errors.NOT_AVAILABLE,
			},
			{
				name:     "public mint disabled",
				update:   func(c *domain.Collection) { c.MintModes = domain.MintModeAllowlist },
				call:     application.Call{Caller: owner, Value: cost(1, mintPrice)},
				quantity: 1,
				code:     errors.NOT_AVAILABLE,
			},
			{
				name:     "mint window not open",
				update:   func(c *domain.Collection) { c.MintStart = 1800000000 },
				call:     application.Call{Caller: alice, Value: cost(1, unitPrice)},
				quantity: 1,
				code:     errors.NOT_AVAILABLE,
			},
			{
				name: "mint window closed",
				update: func(c *domain.Collection) {
					c.MintStart, c.MintEnd = 1600000000, 1700000000
				},
				call:     application.Call{Caller: alice, Value: cost(1, unitPrice)},
				quantity: 1,
				code:     errors.NOT_AVAILABLE,
			},
			{
				name:     "max per address",
				update:   func(c *domain.Collection) { c.MaxPerAddress = 2 },
				call:     application.Call{Caller: alice, Value: cost(3, unitPrice)},
				quantity: 3,
				code:     errors.INVALID_INPUT,
			},
			{
				name:     "contract caller",
				call:     application.Call{Caller: alice, Origin: bob, Value: cost(1, unitPrice)},
				quantity: 1,
				code:     errors.NOT_AUTHORIZED,
			},
			{
				name:     "missing caller",
				call:     application.Call{Value: cost(1, unitPrice)},
				quantity: 1,
				code:     errors.NOT_AUTHORIZED,
			},
			{
				name:     "insufficient funds",
				call:     application.Call{Caller: carol, Value: cost(1, unitPrice)},
				quantity: 1,
				code:     errors.INVALID_INPUT,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				collection := newCollection()
				if tt.update != nil {
					tt.update(&collection)
				}
				env := newTestEnv(t)
				env.setup(t, collection)
				env.fund(t, alice, ether)
				env.fund(t, owner, ether)

				res, err := env.svc.Mint(ctx, tt.call, tt.quantity)
				requireCode(t, tt.code, err)
				require.Nil(t, res)
				require.Zero(t, env.totalMinted(t))
				require.Zero(t, env.balance(t, contract).Sign())
			})
		}
	})

	t.Run("collection not initialized", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Mint(ctx, application.Call{Caller: alice}, 1)
		requireCode(t, errors.NOT_AVAILABLE, err)
	})

	t.Run("failed settlement leaves no token", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t, newCollection())
		env.fund(t, alice, cost(1, unitPrice))

		_, err := env.svc.Mint(ctx, application.Call{
			Caller: alice, Value: cost(2, unitPrice),
		}, 2)
		requireCode(t, errors.INVALID_INPUT, err)
		require.Zero(t, env.totalMinted(t))

		_, err = env.svc.TokenURI(ctx, 0)
		requireCode(t, errors.NOT_FOUND, err)

		res, err := env.svc.Mint(ctx, application.Call{
			Caller: alice, Value: cost(1, unitPrice),
		}, 1)
		require.NoError(t, err)
		require.Equal(t, uint64(0), res.FirstTokenID)
	})

	t.Run("concurrent mints", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t, newCollection())

		minters := make([]common.Address, 10)
		for i := range minters {
			minters[i] = common.BigToAddress(big.NewInt(int64(100 + i)))
			env.fund(t, minters[i], ether)
		}

		wg := &sync.WaitGroup{}
		ids := make(chan uint64, len(minters))
		for _, minter := range minters {
			wg.Add(1)
			go func(minter common.Address) {
				defer wg.Done()
				res, err := env.svc.Mint(ctx, application.Call{
					Caller: minter, Value: cost(2, unitPrice),
				}, 2)
				if err == nil {
					ids <- res.FirstTokenID
				}
			}(minter)
		}
		wg.Wait()
		close(ids)

		seen := make(map[uint64]bool)
		for id := range ids {
			require.Zero(t, id%2)
			require.False(t, seen[id])
			seen[id] = true
		}
		require.Len(t, seen, len(minters))
		require.Equal(t, uint64(20), env.totalMinted(t))
	})
}

func TestReceive(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t, newCollection())
		env.fund(t, alice, ether)
		env.fund(t, owner, ether)

		res, err := env.svc.Receive(ctx, application.Call{
			Caller: alice, Value: cost(3, unitPrice),
		})
		require.NoError(t, err)
		require.Equal(t, uint64(3), res.Quantity)

		res, err = env.svc.Receive(ctx, application.Call{
			Caller: owner, Value: cost(2, mintPrice),
		})
		require.NoError(t, err)
		require.Equal(t, uint64(3), res.FirstTokenID)
		require.Equal(t, uint64(2), res.Quantity)
		require.Equal(t, uint64(5), env.totalMinted(t))
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name   string
			update func(c *domain.Collection)
			value  *big.Int
		}{
			{
				name:  "remainder",
				value: new(big.Int).Add(cost(2, unitPrice), big.NewInt(1)),
			},
			{
				name:  "zero value",
				value: big.NewInt(0),
			},
			{
				name: "free mint",
				update: func(c *domain.Collection) {
					c.PublicMintPrice = big.NewInt(0)
					c.ProtocolFee = big.NewInt(0)
				},
				value: big.NewInt(1),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				collection := newCollection()
				if tt.update != nil {
					tt.update(&collection)
				}
				env := newTestEnv(t)
				env.setup(t, collection)
				env.fund(t, alice, ether)

				_, err := env.svc.Receive(ctx, application.Call{Caller: alice, Value: tt.value})
				requireCode(t, errors.INVALID_INPUT, err)
				require.Zero(t, env.totalMinted(t))
			})
		}
	})
}

func TestAllowlistMint(t *testing.T) {
	ctx := context.Background()
	allowlistPrice := big.NewInt(5e15)
	allowlistUnit := new(big.Int).Add(allowlistPrice, mintFee)

	newAllowlist := func(t *testing.T, leaves ...common.Hash) *genart.MerkleTree {
		tree, err := genart.NewMerkleTree(leaves)
		require.NoError(t, err)
		return tree
	}

	t.Run("valid", func(t *testing.T) {
		tree := newAllowlist(t, genart.AllowlistLeaf(alice), genart.AllowlistLeaf(bob))
		collection := newCollection()
		collection.IsPublicMintActive = false
		collection.IsAllowlistActive = true
		collection.MaxPerAllowlist = 2
		collection.MerkleRoot = tree.Root()

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, alice, ether)
		env.fund(t, bob, ether)

		proof, err := tree.Proof(genart.AllowlistLeaf(alice))
		require.NoError(t, err)

		res, mErr := env.svc.AllowlistMint(ctx, application.Call{
			Caller: alice, Value: cost(2, allowlistUnit),
		}, 2, proof, 0)
		require.NoError(t, mErr)
		require.Equal(t, uint64(2), res.Quantity)
		require.Equal(t, cost(2, allowlistPrice), env.balance(t, contract))

		_, mErr = env.svc.AllowlistMint(ctx, application.Call{
			Caller: alice, Value: cost(1, allowlistUnit),
		}, 1, proof, 0)
		requireCode(t, errors.INVALID_INPUT, mErr)

		_, mErr = env.svc.AllowlistMint(ctx, application.Call{
			Caller: bob, Value: cost(1, allowlistUnit),
		}, 1, proof, 0)
		requireCode(t, errors.INVALID_INPUT, mErr)

		bobProof, err := tree.Proof(genart.AllowlistLeaf(bob))
		require.NoError(t, err)
		_, mErr = env.svc.AllowlistMint(ctx, application.Call{
			Caller: bob, Value: cost(1, allowlistUnit),
		}, 1, bobProof, 0)
		require.NoError(t, mErr)
		require.Equal(t, uint64(3), env.totalMinted(t))
	})

	t.Run("quota leaves", func(t *testing.T) {
		tree := newAllowlist(t, genart.QuotaLeaf(alice, 3), genart.QuotaLeaf(bob, 1))
		collection := newCollection()
		collection.IsAllowlistActive = true
		collection.MerkleRoot = tree.Root()

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, alice, ether)

		proof, err := tree.Proof(genart.QuotaLeaf(alice, 3))
		require.NoError(t, err)

		_, mErr := env.svc.AllowlistMint(ctx, application.Call{
			Caller: alice, Value: cost(5, allowlistUnit),
		}, 5, proof, 5)
		requireCode(t, errors.INVALID_INPUT, mErr)

		_, mErr = env.svc.AllowlistMint(ctx, application.Call{
			Caller: alice, Value: cost(3, allowlistUnit),
		}, 3, proof, 3)
		require.NoError(t, mErr)

		_, mErr = env.svc.AllowlistMint(ctx, application.Call{
			Caller: alice, Value: cost(1, allowlistUnit),
		}, 1, proof, 3)
		requireCode(t, errors.INVALID_INPUT, mErr)

		// Public mints don't count against the allowlist quota.
		_, mErr = env.svc.Mint(ctx, application.Call{
			Caller: alice, Value: cost(1, unitPrice),
		}, 1)
		require.NoError(t, mErr)
	})

	t.Run("not available", func(t *testing.T) {
		tree := newAllowlist(t, genart.AllowlistLeaf(alice))
		proof, err := tree.Proof(genart.AllowlistLeaf(alice))
		require.NoError(t, err)

		tests := []struct {
			name   string
			update func(c *domain.Collection)
		}{
			{
				name:   "inactive",
				update: func(c *domain.Collection) { c.MerkleRoot = tree.Root() },
			},
			{
				name: "disabled",
				update: func(c *domain.Collection) {
					c.MerkleRoot = tree.Root()
					c.IsAllowlistActive = true
					c.MintModes = domain.MintModePublic
				},
			},
			{
				name:   "missing root",
				update: func(c *domain.Collection) { c.IsAllowlistActive = true },
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				collection := newCollection()
				tt.update(&collection)
				env := newTestEnv(t)
				env.setup(t, collection)
				env.fund(t, alice, ether)

				_, mErr := env.svc.AllowlistMint(ctx, application.Call{
					Caller: alice, Value: cost(1, allowlistUnit),
				}, 1, proof, 0)
				requireCode(t, errors.NOT_AVAILABLE, mErr)
			})
		}
	})
}

func TestSignatureMint(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)
	price := big.NewInt(1e15)

	sign := func(t *testing.T, caller common.Address, nonce int64, quantity uint64) application.SignedMintAuthorization {
		auth := genart.MintAuthorization{
			Nonce:        big.NewInt(nonce),
			Contract:     contract,
			Caller:       caller,
			Quantity:     quantity,
			MaxPerWallet: 5,
			Price:        price,
			Fee:          big.NewInt(0),
			ChainID:      big.NewInt(1),
		}
		sig, err := auth.Sign(key)
		require.NoError(t, err)
		return application.SignedMintAuthorization{
			Signature:    sig,
			Nonce:        auth.Nonce,
			Quantity:     auth.Quantity,
			MaxPerWallet: auth.MaxPerWallet,
			Price:        auth.Price,
			Fee:          auth.Fee,
		}
	}

	newEnv := func(t *testing.T) *testEnv {
		collection := newCollection()
		collection.IsPublicMintActive = false
		collection.Signer = signer
		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, alice, ether)
		env.fund(t, bob, ether)
		return env
	}

	t.Run("valid", func(t *testing.T) {
		env := newEnv(t)

		res, mErr := env.svc.SignatureMint(ctx, application.Call{
			Caller: alice, Value: cost(2, price),
		}, sign(t, alice, 1, 2))
		require.NoError(t, mErr)
		require.Equal(t, uint64(2), res.Quantity)
		require.Equal(t, cost(2, price), env.balance(t, contract))
	})

	t.Run("nonce reuse", func(t *testing.T) {
		env := newEnv(t)
		auth := sign(t, alice, 7, 1)

		_, mErr := env.svc.SignatureMint(ctx, application.Call{
			Caller: alice, Value: cost(1, price),
		}, auth)
		require.NoError(t, mErr)

		_, mErr = env.svc.SignatureMint(ctx, application.Call{
			Caller: alice, Value: cost(1, price),
		}, auth)
		requireCode(t, errors.NOT_AUTHORIZED, mErr)
		require.Equal(t, uint64(1), env.totalMinted(t))

		// the same signature over a nonce wrapped past 2^256
		wrapped := auth
		wrapped.Nonce = new(big.Int).Add(auth.Nonce, new(big.Int).Lsh(big.NewInt(1), 256))
		_, mErr = env.svc.SignatureMint(ctx, application.Call{
			Caller: alice, Value: cost(1, price),
		}, wrapped)
		requireCode(t, errors.INVALID_INPUT, mErr)
		require.Equal(t, uint64(1), env.totalMinted(t))
	})

	t.Run("signature bound to caller", func(t *testing.T) {
		env := newEnv(t)

		_, mErr := env.svc.SignatureMint(ctx, application.Call{
			Caller: bob, Value: cost(1, price),
		}, sign(t, alice, 1, 1))
		requireCode(t, errors.NOT_AUTHORIZED, mErr)
	})

	t.Run("tampered price", func(t *testing.T) {
		env := newEnv(t)
		auth := sign(t, alice, 1, 1)
		auth.Price = big.NewInt(1)

		_, mErr := env.svc.SignatureMint(ctx, application.Call{
			Caller: alice, Value: big.NewInt(1),
		}, auth)
		requireCode(t, errors.NOT_AUTHORIZED, mErr)
	})

	t.Run("max per wallet", func(t *testing.T) {
		env := newEnv(t)

		_, mErr := env.svc.SignatureMint(ctx, application.Call{
			Caller: alice, Value: cost(4, price),
		}, sign(t, alice, 1, 4))
		require.NoError(t, mErr)

		_, mErr = env.svc.SignatureMint(ctx, application.Call{
			Caller: alice, Value: cost(2, price),
		}, sign(t, alice, 2, 2))
		requireCode(t, errors.INVALID_INPUT, mErr)
	})

	t.Run("failed settlement releases nonce", func(t *testing.T) {
		env := newEnv(t)
		auth := sign(t, carol, 3, 1)

		_, mErr := env.svc.SignatureMint(ctx, application.Call{
			Caller: carol, Value: cost(1, price),
		}, auth)
		requireCode(t, errors.INVALID_INPUT, mErr)

		env.fund(t, carol, ether)
		_, mErr = env.svc.SignatureMint(ctx, application.Call{
			Caller: carol, Value: cost(1, price),
		}, auth)
		require.NoError(t, mErr)
	})

	t.Run("signer not set", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t, newCollection())
		env.fund(t, alice, ether)

		_, mErr := env.svc.SignatureMint(ctx, application.Call{
			Caller: alice, Value: cost(1, price),
		}, sign(t, alice, 1, 1))
		requireCode(t, errors.NOT_AVAILABLE, mErr)
	})
}

func TestAirdrop(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t, newCollection())

		res, err := env.svc.Airdrop(ctx, owner, 2, []common.Address{alice, bob})
		require.NoError(t, err)
		require.Equal(t, uint64(0), res.FirstTokenID)
		require.Equal(t, uint64(4), res.Quantity)
		require.Equal(t, uint64(4), env.totalMinted(t))
		require.Zero(t, env.balance(t, contract).Sign())

		require.NoError(t, env.svc.SetRenderOfTokenID(ctx, bob, 2, true))
		requireCode(t, errors.NOT_AUTHORIZED, env.svc.SetRenderOfTokenID(ctx, alice, 2, true))
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name       string
			caller     common.Address
			quantity   uint64
			recipients []common.Address
			code       interface{ Is(error) bool }
		}{
			{
				name:       "not owner",
				caller:     operator,
				quantity:   1,
				recipients: []common.Address{alice},
				code:       errors.NOT_AUTHORIZED,
			},
			{
				name:       "no recipients",
				caller:     owner,
				quantity:   1,
				recipients: nil,
				code:       errors.INVALID_INPUT,
			},
			{
				name:       "zero address recipient",
				caller:     owner,
				quantity:   1,
				recipients: []common.Address{{}},
				code:       errors.INVALID_INPUT,
			},
			{
				name:       "exceeds supply",
				caller:     owner,
				quantity:   51,
				recipients: []common.Address{alice, bob},
				code:       errors.NOT_AVAILABLE,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := newTestEnv(t)
				env.setup(t, newCollection())

				_, err := env.svc.Airdrop(ctx, tt.caller, tt.quantity, tt.recipients)
				requireCode(t, tt.code, err)
				require.Zero(t, env.totalMinted(t))
			})
		}
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	balance := new(big.Int).Div(new(big.Int).Mul(big.NewInt(15), ether), big.NewInt(100))
	// eth returns the given basis points of one ether.
	eth := func(bps int64) *big.Int {
		return new(big.Int).Div(new(big.Int).Mul(big.NewInt(bps), ether), big.NewInt(10000))
	}

	recipients := []domain.WithdrawRecipient{
		{Name: "alice", Address: alice, Bps: 4000},
		{Name: "bob", Address: bob, Bps: 2000},
	}

	t.Run("valid", func(t *testing.T) {
		collection := newCollection()
		collection.WithdrawRecipients = recipients

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, contract, balance)

		res, err := env.svc.Withdraw(ctx, owner)
		require.NoError(t, err)
		require.Equal(t, balance, res.Balance)
		require.Len(t, res.Payouts, 3)

		require.Equal(t, eth(600), env.balance(t, alice))
		require.Equal(t, eth(300), env.balance(t, bob))
		require.Equal(t, eth(600), env.balance(t, owner))
		require.Zero(t, env.balance(t, contract).Sign())

		res, err = env.svc.Withdraw(ctx, owner)
		require.NoError(t, err)
		require.Zero(t, res.Balance.Sign())
		require.Empty(t, res.Payouts)
	})

	t.Run("minted proceeds", func(t *testing.T) {
		collection := newCollection()
		collection.PublicMintPrice = balance
		collection.WithdrawRecipients = recipients

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, carol, ether)

		_, err := env.svc.Mint(ctx, application.Call{
			Caller: carol, Value: new(big.Int).Add(balance, mintFee),
		}, 1)
		require.NoError(t, err)
		require.Equal(t, balance, env.balance(t, contract))
		require.Equal(t, mintFee, env.balance(t, feeRecipient))

		res, err := env.svc.Withdraw(ctx, owner)
		require.NoError(t, err)
		require.Equal(t, balance, res.Balance)

		require.Equal(t, eth(600), env.balance(t, alice))
		require.Equal(t, eth(300), env.balance(t, bob))
		require.Equal(t, eth(600), env.balance(t, owner))
		require.Equal(t, mintFee, env.balance(t, feeRecipient))
		require.Zero(t, env.balance(t, contract).Sign())
	})

	t.Run("failing recipient reverts forwarded payouts", func(t *testing.T) {
		collection := newCollection()
		collection.WithdrawRecipients = recipients

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, contract, balance)

		env.ledger.OnReceive(alice, func(ctx context.Context, transfer ports.Transfer) error {
			return env.ledger.Settle(ctx, []ports.Transfer{
				{From: alice, To: carol, Amount: transfer.Amount},
			})
		})
		env.ledger.OnReceive(bob, func(context.Context, ports.Transfer) error {
			return fmt.Errorf("rejected")
		})

		_, err := env.svc.Withdraw(ctx, owner)
		require.Error(t, err)
		require.Equal(t, balance, env.balance(t, contract))
		require.Zero(t, env.balance(t, alice).Sign())
		require.Zero(t, env.balance(t, bob).Sign())
		require.Zero(t, env.balance(t, carol).Sign())
		require.Zero(t, env.balance(t, owner).Sign())
	})

	t.Run("protocol share", func(t *testing.T) {
		collection := newCollection()
		collection.WithdrawRecipients = recipients
		collection.ProtocolShareBps = 500

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, contract, balance)

		_, err := env.svc.Withdraw(ctx, operator)
		require.NoError(t, err)

		require.Equal(t, eth(75), env.balance(t, feeRecipient))
		require.Equal(t, eth(600), env.balance(t, alice))
		require.Equal(t, eth(300), env.balance(t, bob))
		require.Equal(t, eth(525), env.balance(t, owner))
	})

	t.Run("dust goes to owner", func(t *testing.T) {
		collection := newCollection()
		collection.WithdrawRecipients = recipients

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, contract, big.NewInt(7))

		_, err := env.svc.Withdraw(ctx, owner)
		require.NoError(t, err)
		require.Equal(t, big.NewInt(2), env.balance(t, alice))
		require.Equal(t, big.NewInt(1), env.balance(t, bob))
		require.Equal(t, big.NewInt(4), env.balance(t, owner))
	})

	t.Run("not authorized", func(t *testing.T) {
		env := newTestEnv(t)
		env.setup(t, newCollection())
		env.fund(t, contract, balance)

		_, err := env.svc.Withdraw(ctx, alice)
		requireCode(t, errors.NOT_AUTHORIZED, err)
		require.Equal(t, balance, env.balance(t, contract))
	})

	t.Run("reentrant withdraw", func(t *testing.T) {
		collection := newCollection()
		collection.WithdrawRecipients = recipients

		env := newTestEnv(t)
		env.setup(t, collection)
		env.fund(t, contract, balance)

		env.ledger.OnReceive(alice, func(ctx context.Context, _ ports.Transfer) error {
			_, err := env.svc.Withdraw(ctx, owner)
			return err
		})

		_, err := env.svc.Withdraw(ctx, owner)
		requireCode(t, errors.REENTRANT_CALL, err)
		require.Equal(t, balance, env.balance(t, contract))
		require.Zero(t, env.balance(t, alice).Sign())
		require.Zero(t, env.balance(t, bob).Sign())
		require.Zero(t, env.balance(t, owner).Sign())
	})
}

func TestReentrantMint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.setup(t, newCollection())
	env.fund(t, alice, ether)
	env.fund(t, feeRecipient, ether)

	env.ledger.OnReceive(feeRecipient, func(ctx context.Context, _ ports.Transfer) error {
		_, err := env.svc.Mint(ctx, application.Call{
			Caller: feeRecipient, Value: cost(1, unitPrice),
		}, 1)
		return err
	})

	_, err := env.svc.Mint(ctx, application.Call{Caller: alice, Value: cost(1, unitPrice)}, 1)
	requireCode(t, errors.REENTRANT_CALL, err)
	require.Zero(t, env.totalMinted(t))
	require.Equal(t, ether, env.balance(t, alice))
	require.Equal(t, ether, env.balance(t, feeRecipient))
}
