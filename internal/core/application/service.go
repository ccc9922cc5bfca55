package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/pkg/errors"
	"github.com/indelible-labs/indelibled/pkg/genart"
	log "github.com/sirupsen/logrus"
)

const maxSeedDraws = 3

type service struct {
	*Engine
}

func NewService(engine *Engine) Service {
	return &service{engine}
}

func (s *service) Mint(
	ctx context.Context, call Call, quantity uint64,
) (*MintResult, errors.Error) {
	ctx, exit, err := s.guard.enter(ctx, call.Caller)
	if err != nil {
		return nil, err
	}
	defer exit()

	return s.publicMint(ctx, call, quantity, domain.MintPathPublic)
}

func (s *service) Receive(ctx context.Context, call Call) (*MintResult, errors.Error) {
	ctx, exit, err := s.guard.enter(ctx, call.Caller)
	if err != nil {
		return nil, err
	}
	defer exit()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return nil, err
	}
	price, fee := collection.PublicMintPrice, s.feeFor(collection, call.Caller)
	quantity, qErr := genart.InferQuantity(value(call), price, fee)
	if qErr != nil {
		return nil, errors.INVALID_INPUT.New("invalid transfer: %s", qErr).
			WithMetadata(map[string]any{
				"value":      value(call).String(),
				"unit_price": genart.UnitPrice(price, fee).String(),
			})
	}
	return s.publicMint(ctx, call, quantity, domain.MintPathReceive)
}

func (s *service) AllowlistMint(
	ctx context.Context, call Call, quantity uint64, proof []common.Hash, quota uint64,
) (*MintResult, errors.Error) {
	ctx, exit, err := s.guard.enter(ctx, call.Caller)
	if err != nil {
		return nil, err
	}
	defer exit()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOrigin(call); err != nil {
		return nil, err
	}
	if !collection.MintModes.Has(domain.MintModeAllowlist) || !collection.IsAllowlistActive {
		return nil, errors.NOT_AVAILABLE.New("allowlist mint is not active")
	}
	if collection.MerkleRoot == (common.Hash{}) {
		return nil, errors.NOT_AVAILABLE.New("allowlist not set")
	}

	leaf := genart.AllowlistLeaf(call.Caller)
	limit := collection.MaxPerAllowlist
	if quota > 0 {
		leaf = genart.QuotaLeaf(call.Caller, quota)
		limit = quota
	}
	if !genart.VerifyProof(proof, collection.MerkleRoot, leaf) {
		return nil, errors.INVALID_INPUT.New("invalid allowlist proof").
			WithMetadata(map[string]any{"address": call.Caller.Hex()})
	}
	if err := s.checkQuota(
		ctx, call.Caller, quantity, limit, domain.MintPathAllowlist,
	); err != nil {
		return nil, err
	}

	return s.mint(ctx, collection, mintRequest{
		call:      call,
		quantity:  quantity,
		path:      domain.MintPathAllowlist,
		price:     collection.AllowlistPrice,
		fee:       s.feeFor(collection, call.Caller),
		recipient: call.Caller,
	})
}

func (s *service) SignatureMint(
	ctx context.Context, call Call, auth SignedMintAuthorization,
) (*MintResult, errors.Error) {
	ctx, exit, err := s.guard.enter(ctx, call.Caller)
	if err != nil {
		return nil, err
	}
	defer exit()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOrigin(call); err != nil {
		return nil, err
	}
	if !collection.MintModes.Has(domain.MintModeSignature) {
		return nil, errors.NOT_AVAILABLE.New("signature mint is not enabled")
	}
	if collection.Signer == (common.Address{}) {
		return nil, errors.NOT_AVAILABLE.New("mint signer not set")
	}
	signed := genart.MintAuthorization{
		Nonce:        auth.Nonce,
		Contract:     collection.Address,
		Caller:       call.Caller,
		Quantity:     auth.Quantity,
		MaxPerWallet: auth.MaxPerWallet,
		Price:        auth.Price,
		Fee:          auth.Fee,
		ChainID:      collection.ChainID,
	}
	if err := signed.Validate(); err != nil {
		return nil, errors.INVALID_INPUT.Wrap(err)
	}
	signer, recoverErr := signed.RecoverSigner(auth.Signature)
	if recoverErr != nil || signer != collection.Signer {
		return nil, errors.NOT_AUTHORIZED.New("invalid mint signature").
			WithMetadata(errors.CallerMetadata{Caller: call.Caller.Hex()})
	}

	nonce := auth.Nonce.String()
	used, usedErr := s.repoManager.Nonces().IsConsumed(ctx, nonce)
	if usedErr != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(usedErr)
	}
	if used {
		return nil, errors.NOT_AUTHORIZED.New("nonce %s already used", nonce).
			WithMetadata(errors.CallerMetadata{Caller: call.Caller.Hex()})
	}
	if err := s.checkQuota(ctx, call.Caller, auth.Quantity, auth.MaxPerWallet); err != nil {
		return nil, err
	}

	return s.mint(ctx, collection, mintRequest{
		call:      call,
		quantity:  auth.Quantity,
		path:      domain.MintPathSignature,
		price:     auth.Price,
		fee:       auth.Fee,
		recipient: call.Caller,
		nonce:     nonce,
	})
}

func (s *service) Airdrop(
	ctx context.Context, caller common.Address, quantity uint64, recipients []common.Address,
) (*MintResult, errors.Error) {
	ctx, exit, err := s.guard.enter(ctx, caller)
	if err != nil {
		return nil, err
	}
	defer exit()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return nil, err
	}
	if caller != collection.Owner {
		return nil, errors.NOT_AUTHORIZED.New("only the owner can airdrop").
			WithMetadata(errors.CallerMetadata{Caller: caller.Hex()})
	}
	if len(recipients) == 0 {
		return nil, errors.INVALID_INPUT.New("missing airdrop recipients")
	}
	for _, recipient := range recipients {
		if recipient == (common.Address{}) {
			return nil, errors.INVALID_INPUT.New("invalid airdrop recipient")
		}
	}
	if quantity == 0 {
		return nil, errors.INVALID_INPUT.New("quantity must be greater than zero")
	}
	total := quantity * uint64(len(recipients))
	if total/uint64(len(recipients)) != quantity || total > collection.RemainingSupply() {
		return nil, errors.NOT_AVAILABLE.New("not enough tokens left").
			WithMetadata(map[string]any{
				"minted":     collection.TotalMinted,
				"max_supply": collection.MaxSupply,
			})
	}

	j := &journal{}
	startID := collection.TotalMinted
	for _, recipient := range recipients {
		if err := s.issue(
			ctx, j, collection, quantity, recipient, caller, domain.MintPathAirdrop,
		); err != nil {
			j.rollback(ctx)
			return nil, err
		}
	}
	log.WithFields(log.Fields{
		"first_token_id": startID,
		"quantity":       total,
		"recipients":     len(recipients),
	}).Info("airdropped tokens")
	s.publish(ctx, domain.TokensMinted{
		Type:         domain.EventTypeTokensMinted,
		FirstTokenID: startID,
		Quantity:     total,
		Recipients:   recipients,
		Minter:       caller,
		Path:         domain.MintPathAirdrop,
		Timestamp:    s.now().Unix(),
	})

	return &MintResult{
		FirstTokenID: startID,
		Quantity:     total,
		Recipients:   recipients,
	}, nil
}

func (s *service) Withdraw(
	ctx context.Context, caller common.Address,
) (*WithdrawResult, errors.Error) {
	ctx, exit, err := s.guard.enter(ctx, caller)
	if err != nil {
		return nil, err
	}
	defer exit()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return nil, err
	}
	if !collection.IsPrivileged(caller) {
		return nil, errors.NOT_AUTHORIZED.New("only the owner can withdraw").
			WithMetadata(errors.CallerMetadata{Caller: caller.Hex()})
	}

	balance, balanceErr := s.ledger.Balance(ctx, collection.Address)
	if balanceErr != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(balanceErr)
	}
	if balance.Sign() == 0 {
		return &WithdrawResult{Balance: balance}, nil
	}

	shares := collection.Shares()
	if collection.ProtocolShareBps > 0 {
		shares = append([]genart.Share{{
			Address: collection.FeeRecipient,
			Bps:     collection.ProtocolShareBps,
		}}, shares...)
	}
	payouts, splitErr := genart.SplitRevenue(balance, shares, collection.Owner)
	if splitErr != nil {
		return nil, errors.INVALID_INPUT.New("invalid withdraw recipients: %s", splitErr)
	}

	transfers := make([]ports.Transfer, 0, len(payouts))
	for _, p := range payouts {
		transfers = append(transfers, ports.Transfer{
			From:   collection.Address,
			To:     p.Address,
			Amount: p.Amount,
		})
	}
	if err := s.settle(ctx, transfers); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"balance": balance.String(),
		"payouts": len(payouts),
	}).Info("withdrew collection balance")
	s.publish(ctx, domain.FundsWithdrawn{
		Type:      domain.EventTypeFundsWithdrawn,
		Balance:   balance,
		Payouts:   payouts,
		Timestamp: s.now().Unix(),
	})

	return &WithdrawResult{Balance: balance, Payouts: payouts}, nil
}

func (s *service) SetRenderOfTokenID(
	ctx context.Context, caller common.Address, tokenID uint64, offChain bool,
) errors.Error {
	ctx, exit, err := s.guard.enter(ctx, caller)
	if err != nil {
		return err
	}
	defer exit()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return err
	}
	batch, err := s.findBatch(ctx, collection, tokenID)
	if err != nil {
		return err
	}
	if batch.Owner != caller {
		return errors.NOT_AUTHORIZED.New("only the token owner can change the render method").
			WithMetadata(errors.CallerMetadata{Caller: caller.Hex()})
	}
	if err := s.repoManager.Tokens().SetRenderOffChain(ctx, tokenID, offChain); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	return nil
}

type mintRequest struct {
	call      Call
	quantity  uint64
	path      domain.MintPath
	price     *big.Int
	fee       *big.Int
	recipient common.Address
	nonce     string
}

func (s *service) publicMint(
	ctx context.Context, call Call, quantity uint64, path domain.MintPath,
) (*MintResult, errors.Error) {
	collection, err := s.getCollection(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkOrigin(call); err != nil {
		return nil, err
	}
	if !collection.MintModes.Has(domain.MintModePublic) {
		return nil, errors.NOT_AVAILABLE.New("public mint is not enabled")
	}

	privileged := collection.IsPrivileged(call.Caller)
	if !privileged {
		if !collection.IsPublicMintActive {
			return nil, errors.NOT_AVAILABLE.New("public mint is not active")
		}
		if now := s.now(); !collection.IsMintWindowOpen(now) {
			return nil, errors.NOT_AVAILABLE.New("outside of mint window").
				WithMetadata(map[string]any{
					"mint_start": collection.MintStart,
					"mint_end":   collection.MintEnd,
					"now":        now.Unix(),
				})
		}
		if err := s.checkQuota(
			ctx, call.Caller, quantity, collection.MaxPerAddress,
		); err != nil {
			return nil, err
		}
	}

	return s.mint(ctx, collection, mintRequest{
		call:      call,
		quantity:  quantity,
		path:      path,
		price:     collection.PublicMintPrice,
		fee:       s.feeFor(collection, call.Caller),
		recipient: call.Caller,
	})
}

// mint checks supply and payment, records the batches and settles the payment.
// Any failure reverts every state change made so far.
func (s *service) mint(
	ctx context.Context, collection *domain.Collection, req mintRequest,
) (*MintResult, errors.Error) {
	if req.quantity == 0 {
		return nil, errors.INVALID_INPUT.New("quantity must be greater than zero")
	}
	if req.quantity > collection.RemainingSupply() {
		return nil, errors.NOT_AVAILABLE.New("not enough tokens left").
			WithMetadata(map[string]any{
				"minted":     collection.TotalMinted,
				"quantity":   req.quantity,
				"max_supply": collection.MaxSupply,
			})
	}

	priceTotal := genart.TotalPrice(req.quantity, req.price, nil)
	feeTotal := genart.TotalPrice(req.quantity, nil, req.fee)
	expected := new(big.Int).Add(priceTotal, feeTotal)
	if value(req.call).Cmp(expected) != 0 {
		return nil, errors.INVALID_INPUT.New("incorrect amount sent").
			WithMetadata(map[string]any{
				"expected": expected.String(),
				"got":      value(req.call).String(),
			})
	}

	j := &journal{}
	if req.nonce != "" {
		fresh, err := s.repoManager.Nonces().Consume(ctx, req.nonce)
		if err != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(err)
		}
		if !fresh {
			return nil, errors.NOT_AUTHORIZED.New("nonce %s already used", req.nonce).
				WithMetadata(errors.CallerMetadata{Caller: req.call.Caller.Hex()})
		}
		j.add(func(ctx context.Context) error {
			return s.repoManager.Nonces().Release(ctx, req.nonce)
		})
	}

	startID := collection.TotalMinted
	if err := s.issue(
		ctx, j, collection, req.quantity, req.recipient, req.call.Caller, req.path,
	); err != nil {
		j.rollback(ctx)
		return nil, err
	}

	feeRecipient := collection.FeeRecipient
	if feeRecipient == (common.Address{}) {
		feeRecipient = collection.Address
	}
	transfers := make([]ports.Transfer, 0, 2)
	if priceTotal.Sign() > 0 {
		transfers = append(transfers, ports.Transfer{
			From: req.call.Caller, To: collection.Address, Amount: priceTotal,
		})
	}
	if feeTotal.Sign() > 0 {
		transfers = append(transfers, ports.Transfer{
			From: req.call.Caller, To: feeRecipient, Amount: feeTotal,
		})
	}
	if err := s.settle(ctx, transfers); err != nil {
		j.rollback(ctx)
		return nil, err
	}

	log.WithFields(log.Fields{
		"path":           req.path,
		"minter":         req.call.Caller.Hex(),
		"first_token_id": startID,
		"quantity":       req.quantity,
	}).Info("minted tokens")
	s.publish(ctx, domain.TokensMinted{
		Type:         domain.EventTypeTokensMinted,
		FirstTokenID: startID,
		Quantity:     req.quantity,
		Recipients:   []common.Address{req.recipient},
		Minter:       req.call.Caller,
		Path:         req.path,
		Timestamp:    s.now().Unix(),
	})

	return &MintResult{
		FirstTokenID: startID,
		Quantity:     req.quantity,
		Recipients:   []common.Address{req.recipient},
	}, nil
}

// issue records quantity new tokens owned by recipient and bumps the minted
// counter of the collection, which is updated in place.
func (s *service) issue(
	ctx context.Context, j *journal, collection *domain.Collection, quantity uint64,
	recipient, minter common.Address, path domain.MintPath,
) errors.Error {
	seed, err := s.drawSeed(ctx)
	if err != nil {
		return err
	}

	previous := collection.Clone()
	batches := domain.SplitMint(
		collection.TotalMinted, quantity, seed, recipient, minter, path, s.now().Unix(),
	)
	for _, batch := range batches {
		if err := s.repoManager.Tokens().AddBatch(ctx, batch); err != nil {
			return errors.INTERNAL_ERROR.Wrap(err)
		}
		startID := batch.StartID
		j.add(func(ctx context.Context) error {
			return s.repoManager.Tokens().DeleteBatch(ctx, startID)
		})
	}

	collection.TotalMinted += quantity
	collection.UpdatedAt = s.now()
	if err := s.repoManager.Collection().Upsert(ctx, *collection); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	j.add(func(ctx context.Context) error {
		*collection = previous
		return s.repoManager.Collection().Upsert(ctx, previous)
	})
	return nil
}

func (s *service) settle(ctx context.Context, transfers []ports.Transfer) errors.Error {
	if len(transfers) == 0 {
		return nil
	}
	err := s.ledger.Settle(ctx, transfers)
	if err == nil {
		return nil
	}
	var typedErr errors.Error
	if stderrors.As(err, &typedErr) {
		return typedErr
	}
	if stderrors.Is(err, ports.ErrInsufficientFunds) {
		return errors.INVALID_INPUT.New("payment failed: %s", err)
	}
	return errors.INTERNAL_ERROR.New("failed to settle transfers: %s", err)
}

// checkQuota fails if minter would go beyond limit by minting quantity more
// tokens through any of paths. A zero limit means no limit.
func (s *service) checkQuota(
	ctx context.Context, minter common.Address, quantity, limit uint64,
	paths ...domain.MintPath,
) errors.Error {
	if limit == 0 {
		return nil
	}
	minted, err := s.repoManager.Tokens().CountMinted(ctx, minter, paths...)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if minted+quantity > limit {
		return errors.INVALID_INPUT.New("exceeded max mints allowed").
			WithMetadata(map[string]any{
				"address":  minter.Hex(),
				"minted":   minted,
				"quantity": quantity,
				"limit":    limit,
			})
	}
	return nil
}

// findBatch walks back from tokenID to the batch holding its seed.
func (e *Engine) findBatch(
	ctx context.Context, collection *domain.Collection, tokenID uint64,
) (*domain.MintBatch, errors.Error) {
	if tokenID >= collection.TotalMinted {
		return nil, errors.NOT_FOUND.New("token %d not minted", tokenID).
			WithMetadata(map[string]any{"token_id": tokenID})
	}
	for i := uint64(0); i < genart.MaxBatchMint && i <= tokenID; i++ {
		batch, err := e.repoManager.Tokens().GetBatch(ctx, tokenID-i)
		if err != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(err)
		}
		if batch == nil || batch.Seed.IsZero() {
			continue
		}
		if !batch.Contains(tokenID) {
			break
		}
		return batch, nil
	}
	err := errors.DATA_INTEGRITY.New("invalid token: no batch seed found").
		WithMetadata(errors.TokenMetadata{TokenID: tokenID})
	err.Log().Error("token without batch seed")
	return nil, err
}

func (s *service) feeFor(collection *domain.Collection, caller common.Address) *big.Int {
	if collection.IsPrivileged(caller) || collection.ProtocolFee == nil {
		return big.NewInt(0)
	}
	return collection.ProtocolFee
}

func checkOrigin(call Call) errors.Error {
	if call.Caller == (common.Address{}) {
		return errors.NOT_AUTHORIZED.New("missing caller")
	}
	if call.Origin != (common.Address{}) && call.Origin != call.Caller {
		return errors.NOT_AUTHORIZED.New("contracts cannot mint").
			WithMetadata(errors.CallerMetadata{
				Caller: call.Caller.Hex(),
				Origin: call.Origin.Hex(),
			})
	}
	return nil
}

func value(call Call) *big.Int {
	if call.Value == nil {
		return big.NewInt(0)
	}
	return call.Value
}

func tokenName(collection *domain.Collection, tokenID uint64) string {
	return fmt.Sprintf("%s #%d", collection.Name, tokenID)
}
