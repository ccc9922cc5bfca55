package application

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/pkg/errors"
	"github.com/indelible-labs/indelibled/pkg/genart"
	log "github.com/sirupsen/logrus"
)

type adminService struct {
	*Engine
}

func NewAdminService(engine *Engine) AdminService {
	return &adminService{engine}
}

func (a *adminService) InitCollection(
	ctx context.Context, collection domain.Collection,
) errors.Error {
	ctx, exit, err := a.guard.enter(ctx, collection.Owner)
	if err != nil {
		return err
	}
	defer exit()

	existing, getErr := a.repoManager.Collection().Get(ctx)
	if getErr != nil {
		return errors.INTERNAL_ERROR.Wrap(getErr)
	}
	if existing != nil {
		return errors.NOT_AVAILABLE.New("collection %s already initialized", existing.Name)
	}
	if err := collection.Validate(); err != nil {
		return errors.INVALID_INPUT.New("invalid collection: %s", err)
	}
	collection.TotalMinted = 0
	collection.RevealSeed = genart.Seed{}
	collection.IsSealed = false
	collection.UpdatedAt = a.now()
	if err := a.repoManager.Collection().Upsert(ctx, collection); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}

	log.WithFields(log.Fields{
		"name":       collection.Name,
		"address":    collection.Address.Hex(),
		"max_supply": collection.MaxSupply,
		"layers":     collection.NumLayers,
		"mint_modes": collection.MintModes.String(),
	}).Info("initialized collection")
	return nil
}

func (a *adminService) AddLayer(
	ctx context.Context, caller common.Address, input LayerInput,
) errors.Error {
	ctx, exit, err := a.guard.enter(ctx, caller)
	if err != nil {
		return err
	}
	defer exit()

	collection, err := a.getUnsealedCollection(ctx, caller)
	if err != nil {
		return err
	}
	if input.Index < 0 || input.Index >= collection.NumLayers {
		return errors.INVALID_INPUT.New(
			"layer index %d out of range, collection has %d layers",
			input.Index, collection.NumLayers,
		)
	}
	if len(input.Traits) > genart.MaxTraitsPerLayer {
		return errors.INVALID_INPUT.New(
			"there cannot be over %d traits per layer", genart.MaxTraitsPerLayer,
		)
	}

	layer := domain.Layer{
		Index:        input.Index,
		Name:         input.Name,
		PrimeNumber:  input.PrimeNumber,
		VariantCount: input.VariantCount,
		Traits:       make([]domain.Trait, 0, len(input.Traits)),
	}
	var preset []uint64
	if len(collection.LayerWeights) > 0 {
		preset = collection.LayerWeights[input.Index]
		if len(preset) != len(input.Traits) {
			return errors.INVALID_INPUT.New(
				"traits size does not match tiers for this index: got %d, expected %d",
				len(input.Traits), len(preset),
			)
		}
	}
	for i, t := range input.Traits {
		weight := t.Weight
		if preset != nil {
			if weight != 0 && weight != preset[i] {
				return errors.INVALID_INPUT.New(
					"weight of trait %d does not match tier: got %d, expected %d",
					i, weight, preset[i],
				)
			}
			weight = preset[i]
		}
		layer.Traits = append(layer.Traits, domain.Trait{
			Name:              t.Name,
			Mimetype:          t.Mimetype,
			Weight:            weight,
			Hide:              t.Hide,
			UseExistingData:   t.UseExistingData,
			ExistingDataIndex: t.ExistingDataIndex,
		})
	}
	if err := layer.Validate(collection.MaxSupply); err != nil {
		return errors.INVALID_INPUT.New("invalid layer %d: %s", input.Index, err).
			WithMetadata(map[string]any{"layer": input.Index})
	}
	if err := validateTraitData(input.Traits); err != nil {
		return err
	}
	if err := checkLinksInRange(collection.TraitLinks, layer); err != nil {
		return err
	}

	j := &journal{}
	previous, getErr := a.repoManager.Assets().GetLayer(ctx, input.Index)
	if getErr != nil {
		return errors.INTERNAL_ERROR.Wrap(getErr)
	}
	if previous != nil {
		for trait := range previous.Traits {
			if err := a.deleteTraitChunks(ctx, j, input.Index, trait); err != nil {
				j.rollback(ctx)
				return err
			}
		}
	}
	if err := a.putLayer(ctx, j, layer, previous); err != nil {
		j.rollback(ctx)
		return err
	}
	for i, t := range input.Traits {
		if len(t.Data) == 0 {
			continue
		}
		chunk := domain.Chunk{Layer: input.Index, Trait: i, Index: 0, Data: t.Data}
		if err := a.putChunk(ctx, j, chunk); err != nil {
			j.rollback(ctx)
			return err
		}
	}

	log.WithFields(log.Fields{
		"layer":  input.Index,
		"name":   input.Name,
		"traits": len(input.Traits),
	}).Info("added layer")
	return nil
}

func (a *adminService) AddTrait(
	ctx context.Context, caller common.Address, layerIndex, traitIndex int, input TraitInput,
) errors.Error {
	ctx, exit, err := a.guard.enter(ctx, caller)
	if err != nil {
		return err
	}
	defer exit()

	collection, err := a.getUnsealedCollection(ctx, caller)
	if err != nil {
		return err
	}
	layer, getErr := a.repoManager.Assets().GetLayer(ctx, layerIndex)
	if getErr != nil {
		return errors.INTERNAL_ERROR.Wrap(getErr)
	}
	if layer == nil {
		return errors.NOT_FOUND.New("layer %d not found", layerIndex)
	}
	if traitIndex < 0 || traitIndex >= len(layer.Traits) {
		return errors.INVALID_INPUT.New(
			"trait index %d out of range, layer has %d traits", traitIndex, len(layer.Traits),
		)
	}

	previous := *layer
	previous.Traits = append([]domain.Trait{}, layer.Traits...)
	weight := input.Weight
	if weight == 0 {
		weight = layer.Traits[traitIndex].Weight
	}
	layer.Traits[traitIndex] = domain.Trait{
		Name:              input.Name,
		Mimetype:          input.Mimetype,
		Weight:            weight,
		Hide:              input.Hide,
		UseExistingData:   input.UseExistingData,
		ExistingDataIndex: input.ExistingDataIndex,
	}
	if err := layer.Validate(collection.MaxSupply); err != nil {
		return errors.INVALID_INPUT.New("invalid trait %d: %s", traitIndex, err)
	}
	if err := validateTraitData([]TraitInput{input}); err != nil {
		return err
	}

	j := &journal{}
	if err := a.deleteTraitChunks(ctx, j, layerIndex, traitIndex); err != nil {
		j.rollback(ctx)
		return err
	}
	if err := a.putLayer(ctx, j, *layer, &previous); err != nil {
		j.rollback(ctx)
		return err
	}
	if len(input.Data) > 0 {
		chunk := domain.Chunk{Layer: layerIndex, Trait: traitIndex, Index: 0, Data: input.Data}
		if err := a.putChunk(ctx, j, chunk); err != nil {
			j.rollback(ctx)
			return err
		}
	}
	return nil
}

func (a *adminService) AddChunk(
	ctx context.Context, caller common.Address, chunk domain.Chunk,
) errors.Error {
	ctx, exit, err := a.guard.enter(ctx, caller)
	if err != nil {
		return err
	}
	defer exit()

	if _, err := a.getUnsealedCollection(ctx, caller); err != nil {
		return err
	}
	if err := chunk.Validate(); err != nil {
		return errors.INVALID_INPUT.New("invalid chunk: %s", err).
			WithMetadata(chunkMetadata(chunk))
	}
	layer, getErr := a.repoManager.Assets().GetLayer(ctx, chunk.Layer)
	if getErr != nil {
		return errors.INTERNAL_ERROR.Wrap(getErr)
	}
	if layer == nil {
		return errors.NOT_FOUND.New("layer %d not found", chunk.Layer)
	}
	if chunk.Trait >= len(layer.Traits) {
		return errors.NOT_FOUND.New("trait %d not found in layer %d", chunk.Trait, chunk.Layer)
	}
	if layer.Traits[chunk.Trait].UseExistingData {
		return errors.INVALID_INPUT.New("trait %d reuses existing data", chunk.Trait).
			WithMetadata(chunkMetadata(chunk))
	}

	existing, getErr := a.repoManager.Assets().GetChunk(
		ctx, chunk.Layer, chunk.Trait, chunk.Index,
	)
	if getErr != nil {
		return errors.INTERNAL_ERROR.Wrap(getErr)
	}
	if existing != nil {
		// Retried uploads of the same bytes are no-ops.
		if bytes.Equal(existing.Data, chunk.Data) {
			return nil
		}
		return errors.INVALID_INPUT.New("chunk already exists with different data").
			WithMetadata(chunkMetadata(chunk))
	}

	chunks, getErr := a.repoManager.Assets().GetChunks(ctx, chunk.Layer, chunk.Trait)
	if getErr != nil {
		return errors.INTERNAL_ERROR.Wrap(getErr)
	}
	if chunk.Index > len(chunks) {
		return errors.INVALID_INPUT.New(
			"chunk index %d leaves a gap, next index is %d", chunk.Index, len(chunks),
		).WithMetadata(chunkMetadata(chunk))
	}
	if err := a.repoManager.Assets().UpsertChunk(ctx, chunk); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}

	log.WithFields(chunkFields(chunk)).Debug("added chunk")
	return nil
}

func (a *adminService) TogglePublicMint(
	ctx context.Context, caller common.Address,
) (bool, errors.Error) {
	var active bool
	err := a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.IsPublicMintActive = !c.IsPublicMintActive
		active = c.IsPublicMintActive
		return nil
	})
	return active, err
}

func (a *adminService) ToggleAllowlistMint(
	ctx context.Context, caller common.Address,
) (bool, errors.Error) {
	var active bool
	err := a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.IsAllowlistActive = !c.IsAllowlistActive
		active = c.IsAllowlistActive
		return nil
	})
	return active, err
}

func (a *adminService) SetMintModes(
	ctx context.Context, caller common.Address, modes domain.MintModes,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		if modes&^domain.MintModeAll != 0 {
			return errors.INVALID_INPUT.New("unknown mint modes %d", modes)
		}
		c.MintModes = modes
		return nil
	})
}

func (a *adminService) SetPrices(
	ctx context.Context, caller common.Address, prices Prices,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		if prices.PublicMintPrice != nil {
			c.PublicMintPrice = new(big.Int).Set(prices.PublicMintPrice)
		}
		if prices.AllowlistPrice != nil {
			c.AllowlistPrice = new(big.Int).Set(prices.AllowlistPrice)
		}
		return nil
	})
}

func (a *adminService) SetMintLimits(
	ctx context.Context, caller common.Address, limits MintLimits,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.MaxPerAddress = limits.MaxPerAddress
		c.MaxPerAllowlist = limits.MaxPerAllowlist
		return nil
	})
}

func (a *adminService) SetMintWindow(
	ctx context.Context, caller common.Address, start, end int64,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.MintStart, c.MintEnd = start, end
		return nil
	})
}

func (a *adminService) SetBaseURI(
	ctx context.Context, caller common.Address, baseURI string,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.BaseURI = baseURI
		return nil
	})
}

func (a *adminService) SetPlaceholderImage(
	ctx context.Context, caller common.Address, image string,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.PlaceholderImage = image
		return nil
	})
}

func (a *adminService) SetMerkleRoot(
	ctx context.Context, caller common.Address, root common.Hash,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.MerkleRoot = root
		return nil
	})
}

func (a *adminService) SetSigner(
	ctx context.Context, caller common.Address, signer common.Address,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.Signer = signer
		return nil
	})
}

func (a *adminService) SetRevealSeed(ctx context.Context, caller common.Address) errors.Error {
	var seed genart.Seed
	if err := a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		if c.IsRevealed() {
			return errors.NOT_AVAILABLE.New("collection already revealed")
		}
		var err errors.Error
		if seed, err = a.drawSeed(ctx); err != nil {
			return err
		}
		c.RevealSeed = seed
		return nil
	}); err != nil {
		return err
	}

	log.WithField("seed", seed.String()).Info("revealed collection")
	a.publish(ctx, domain.CollectionRevealed{
		Type:       domain.EventTypeCollectionRevealed,
		RevealSeed: seed,
		Timestamp:  a.now().Unix(),
	})
	return nil
}

func (a *adminService) SetLinkedTraits(
	ctx context.Context, caller common.Address, links []genart.TraitLink,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		if c.IsSealed {
			return errors.CONTRACT_SEALED.New("collection is sealed")
		}
		for i, link := range links {
			if err := link.Validate(c.NumLayers); err != nil {
				return errors.INVALID_INPUT.New("invalid trait link %d: %s", i, err)
			}
			if err := a.checkLinkedTrait(ctx, link.SourceLayer, link.SourceTrait); err != nil {
				return err
			}
			if err := a.checkLinkedTrait(ctx, link.TargetLayer, link.TargetTrait); err != nil {
				return err
			}
		}
		c.TraitLinks = append([]genart.TraitLink{}, links...)
		return nil
	})
}

func (a *adminService) SetWithdrawRecipients(
	ctx context.Context, caller common.Address, recipients []domain.WithdrawRecipient,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.WithdrawRecipients = append([]domain.WithdrawRecipient{}, recipients...)
		return nil
	})
}

func (a *adminService) SetContractData(
	ctx context.Context, caller common.Address, data domain.ContractData,
) errors.Error {
	return a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		c.ContractData = data
		return nil
	})
}

func (a *adminService) Seal(ctx context.Context, caller common.Address) errors.Error {
	sealed := false
	if err := a.updateCollection(ctx, caller, func(c *domain.Collection) errors.Error {
		sealed = !c.IsSealed
		c.IsSealed = true
		return nil
	}); err != nil {
		return err
	}

	if sealed {
		log.Info("sealed collection")
		a.publish(ctx, domain.CollectionSealed{
			Type:      domain.EventTypeCollectionSealed,
			Timestamp: a.now().Unix(),
		})
	}
	return nil
}

// updateCollection applies update to the collection on behalf of its owner
// and stores the result if still valid.
func (a *adminService) updateCollection(
	ctx context.Context, caller common.Address,
	update func(c *domain.Collection) errors.Error,
) errors.Error {
	ctx, exit, err := a.guard.enter(ctx, caller)
	if err != nil {
		return err
	}
	defer exit()

	collection, err := a.getOwnedCollection(ctx, caller)
	if err != nil {
		return err
	}
	updated := collection.Clone()
	if err := update(&updated); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return errors.INVALID_INPUT.New("%s", err)
	}
	updated.UpdatedAt = a.now()
	if err := a.repoManager.Collection().Upsert(ctx, updated); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	return nil
}

func (a *adminService) getOwnedCollection(
	ctx context.Context, caller common.Address,
) (*domain.Collection, errors.Error) {
	collection, err := a.getCollection(ctx)
	if err != nil {
		return nil, err
	}
	if caller != collection.Owner {
		return nil, errors.NOT_AUTHORIZED.New("caller is not the owner").
			WithMetadata(errors.CallerMetadata{Caller: caller.Hex()})
	}
	return collection, nil
}

func (a *adminService) getUnsealedCollection(
	ctx context.Context, caller common.Address,
) (*domain.Collection, errors.Error) {
	collection, err := a.getOwnedCollection(ctx, caller)
	if err != nil {
		return nil, err
	}
	if collection.IsSealed {
		return nil, errors.CONTRACT_SEALED.New("collection is sealed")
	}
	return collection, nil
}

// checkLinksInRange rejects a layer leaving some stored trait link pointing
// outside of its traits.
func checkLinksInRange(links []genart.TraitLink, layer domain.Layer) errors.Error {
	for i, link := range links {
		for _, ref := range [][2]int{
			{link.SourceLayer, link.SourceTrait}, {link.TargetLayer, link.TargetTrait},
		} {
			if ref[0] == layer.Index && ref[1] >= len(layer.Traits) {
				return errors.INVALID_INPUT.New(
					"trait link %d refers to trait %d, layer %d has %d traits",
					i, ref[1], layer.Index, len(layer.Traits),
				).WithMetadata(map[string]any{"layer": layer.Index})
			}
		}
	}
	return nil
}

func (a *adminService) checkLinkedTrait(ctx context.Context, layer, trait int) errors.Error {
	l, err := a.repoManager.Assets().GetLayer(ctx, layer)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	if l != nil && trait >= len(l.Traits) {
		return errors.INVALID_INPUT.New("trait %d not found in layer %d", trait, layer)
	}
	return nil
}

func (a *adminService) putLayer(
	ctx context.Context, j *journal, layer domain.Layer, previous *domain.Layer,
) errors.Error {
	if err := a.repoManager.Assets().UpsertLayer(ctx, layer); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	j.add(func(ctx context.Context) error {
		if previous == nil {
			return a.repoManager.Assets().DeleteLayer(ctx, layer.Index)
		}
		return a.repoManager.Assets().UpsertLayer(ctx, *previous)
	})
	return nil
}

func (a *adminService) putChunk(ctx context.Context, j *journal, chunk domain.Chunk) errors.Error {
	if err := a.repoManager.Assets().UpsertChunk(ctx, chunk); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	j.add(func(ctx context.Context) error {
		return a.repoManager.Assets().DeleteChunk(ctx, chunk.Layer, chunk.Trait, chunk.Index)
	})
	return nil
}

func (a *adminService) deleteTraitChunks(
	ctx context.Context, j *journal, layer, trait int,
) errors.Error {
	chunks, err := a.repoManager.Assets().GetChunks(ctx, layer, trait)
	if err != nil {
		return errors.INTERNAL_ERROR.Wrap(err)
	}
	for _, chunk := range chunks {
		if err := a.repoManager.Assets().DeleteChunk(
			ctx, chunk.Layer, chunk.Trait, chunk.Index,
		); err != nil {
			return errors.INTERNAL_ERROR.Wrap(err)
		}
		j.add(func(ctx context.Context) error {
			return a.repoManager.Assets().UpsertChunk(ctx, chunk)
		})
	}
	return nil
}

func (e *Engine) drawSeed(ctx context.Context) (genart.Seed, errors.Error) {
	for range maxSeedDraws {
		seed, err := e.seeds.NewSeed(ctx)
		if err != nil {
			return genart.Seed{}, errors.INTERNAL_ERROR.Wrap(err)
		}
		if !seed.IsZero() {
			return seed, nil
		}
	}
	return genart.Seed{}, errors.INTERNAL_ERROR.New("seed source returned empty seeds")
}

func validateTraitData(traits []TraitInput) errors.Error {
	for i, t := range traits {
		if t.UseExistingData && len(t.Data) > 0 {
			return errors.INVALID_INPUT.New("trait %d reuses existing data but carries its own", i)
		}
		if len(t.Data) > domain.MaxChunkSize {
			return errors.INVALID_INPUT.New(
				"data of trait %d exceeds the chunk size, upload the rest with AddChunk", i,
			)
		}
	}
	return nil
}

func chunkMetadata(chunk domain.Chunk) map[string]any {
	return map[string]any{
		"layer": chunk.Layer,
		"trait": chunk.Trait,
		"chunk": chunk.Index,
	}
}

func chunkFields(chunk domain.Chunk) log.Fields {
	return log.Fields{
		"layer": chunk.Layer,
		"trait": chunk.Trait,
		"chunk": chunk.Index,
		"size":  len(chunk.Data),
	}
}
