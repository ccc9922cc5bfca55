package application

import (
	"bytes"
	"context"
	"fmt"

	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/pkg/errors"
	"github.com/indelible-labs/indelibled/pkg/genart"
)

func (s *service) GetCollection(ctx context.Context) (*domain.Collection, errors.Error) {
	defer s.guard.view(ctx)()

	return s.getCollection(ctx)
}

func (s *service) GetLayers(ctx context.Context) ([]domain.Layer, errors.Error) {
	defer s.guard.view(ctx)()

	layers, err := s.repoManager.Assets().GetLayers(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return layers, nil
}

func (s *service) TokenHash(ctx context.Context, tokenID uint64) (string, errors.Error) {
	defer s.guard.view(ctx)()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return "", err
	}
	if !collection.IsRevealed() {
		return "", errors.NOT_AVAILABLE.New("%s", genart.ErrUnrevealed)
	}
	layers, err := s.getAllLayers(ctx, collection)
	if err != nil {
		return "", err
	}
	return s.tokenHash(ctx, collection, layers, tokenID)
}

func (s *service) TokenURI(ctx context.Context, tokenID uint64) (string, errors.Error) {
	defer s.guard.view(ctx)()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return "", err
	}
	if _, err := s.findBatch(ctx, collection, tokenID); err != nil {
		return "", err
	}

	metadata := genart.TokenMetadata{
		Name:        tokenName(collection, tokenID),
		Description: collection.ContractData.Description,
	}
	if !collection.IsRevealed() {
		metadata.Image = collection.PlaceholderImage
		return encodeMetadata(metadata)
	}

	layers, err := s.getAllLayers(ctx, collection)
	if err != nil {
		return "", err
	}
	hash, err := s.tokenHash(ctx, collection, layers, tokenID)
	if err != nil {
		return "", err
	}
	traits, err := s.resolveTraits(ctx, layers, hash)
	if err != nil {
		return "", err
	}

	offChain, rErr := s.repoManager.Tokens().IsRenderedOffChain(ctx, tokenID)
	if rErr != nil {
		return "", errors.INTERNAL_ERROR.Wrap(rErr)
	}
	if collection.BaseURI != "" && offChain {
		metadata.Image = genart.OffChainImageURL(
			collection.BaseURI, tokenID, hash, collection.Network,
		)
	} else {
		metadata.ImageData = genart.ComposeSVG(collection.BackgroundColor, traits)
	}
	metadata.Attributes = genart.Attributes(traits)
	return encodeMetadata(metadata)
}

func (s *service) ContractURI(ctx context.Context) (string, errors.Error) {
	defer s.guard.view(ctx)()

	collection, err := s.getCollection(ctx)
	if err != nil {
		return "", err
	}
	data := collection.ContractData
	return encodeMetadata(genart.ContractMetadata{
		Name:                 data.Name,
		Description:          data.Description,
		Image:                data.Image,
		Banner:               data.Banner,
		ExternalLink:         data.Website,
		SellerFeeBasisPoints: data.Royalties,
		FeeRecipient:         data.RoyaltiesRecipient,
	})
}

func (s *service) HashToSVG(ctx context.Context, hash string) (string, errors.Error) {
	defer s.guard.view(ctx)()

	collection, traits, err := s.traitsOfHash(ctx, hash)
	if err != nil {
		return "", err
	}
	return genart.ComposeSVG(collection.BackgroundColor, traits), nil
}

func (s *service) HashToMetadata(
	ctx context.Context, hash string,
) ([]genart.Attribute, errors.Error) {
	defer s.guard.view(ctx)()

	_, traits, err := s.traitsOfHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	return genart.Attributes(traits), nil
}

func (s *service) TraitData(ctx context.Context, layer, trait int) ([]byte, errors.Error) {
	defer s.guard.view(ctx)()

	l, err := s.repoManager.Assets().GetLayer(ctx, layer)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if l == nil {
		return nil, errors.NOT_FOUND.New("layer %d not found", layer)
	}
	return s.traitData(ctx, *l, trait)
}

func (e *Engine) tokenHash(
	ctx context.Context, collection *domain.Collection, layers []domain.Layer, tokenID uint64,
) (string, errors.Error) {
	batch, err := e.findBatch(ctx, collection, tokenID)
	if err != nil {
		return "", err
	}

	weights := make([]genart.LayerWeights, 0, len(layers))
	for _, l := range layers {
		weights = append(weights, genart.LayerWeights{
			Salt:    l.PrimeNumber,
			Weights: l.Weights(),
		})
	}
	hash, hErr := genart.DeriveHash(genart.DeriveParams{
		BatchSeed:    batch.Seed,
		RevealSeed:   collection.RevealSeed,
		TokenID:      tokenID,
		StartTokenID: batch.StartID,
		Layers:       weights,
		MaxSupply:    collection.MaxSupply,
	})
	if hErr != nil {
		err := errors.DATA_INTEGRITY.New("failed to derive token hash: %s", hErr).
			WithMetadata(errors.TokenMetadata{TokenID: tokenID})
		err.Log().Error("invalid layer configuration")
		return "", err
	}

	linked, lErr := genart.ApplyLinks(hash, collection.TraitLinks)
	if lErr != nil {
		err := errors.DATA_INTEGRITY.New("failed to apply trait links: %s", lErr).
			WithMetadata(errors.TokenMetadata{TokenID: tokenID})
		err.Log().Error("invalid trait links")
		return "", err
	}
	for _, l := range layers {
		trait, tErr := genart.TraitIndexAt(linked, l.Index)
		if tErr == nil && trait >= len(l.Traits) {
			tErr = fmt.Errorf("trait %d not found in layer %d", trait, l.Index)
		}
		if tErr != nil {
			err := errors.DATA_INTEGRITY.New("invalid token hash %s: %s", linked, tErr).
				WithMetadata(errors.TokenMetadata{TokenID: tokenID})
			err.Log().Error("token hash points outside of the uploaded traits")
			return "", err
		}
	}
	return linked, nil
}

// getAllLayers returns every layer of the collection, failing if some have not
// been added yet.
func (e *Engine) getAllLayers(
	ctx context.Context, collection *domain.Collection,
) ([]domain.Layer, errors.Error) {
	layers, err := e.repoManager.Assets().GetLayers(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if len(layers) != collection.NumLayers {
		return nil, errors.NOT_AVAILABLE.New(
			"traits have not been added: got %d of %d layers", len(layers), collection.NumLayers,
		)
	}
	return layers, nil
}

func (e *Engine) traitsOfHash(
	ctx context.Context, hash string,
) (*domain.Collection, []genart.ResolvedTrait, errors.Error) {
	collection, err := e.getCollection(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(hash) != collection.NumLayers*genart.DigitWidth {
		return nil, nil, errors.INVALID_INPUT.New(
			"invalid hash length: got %d, expected %d",
			len(hash), collection.NumLayers*genart.DigitWidth,
		)
	}
	if _, hErr := genart.TraitIndexes(hash); hErr != nil {
		return nil, nil, errors.INVALID_INPUT.New("%s", hErr)
	}
	layers, err := e.getAllLayers(ctx, collection)
	if err != nil {
		return nil, nil, err
	}
	traits, err := e.resolveTraits(ctx, layers, hash)
	if err != nil {
		return nil, nil, err
	}
	return collection, traits, nil
}

func (e *Engine) resolveTraits(
	ctx context.Context, layers []domain.Layer, hash string,
) ([]genart.ResolvedTrait, errors.Error) {
	indexes, hErr := genart.TraitIndexes(hash)
	if hErr != nil || len(indexes) != len(layers) {
		return nil, errors.INVALID_INPUT.New("invalid hash %s", hash)
	}

	traits := make([]genart.ResolvedTrait, 0, len(layers))
	for i, layer := range layers {
		index := indexes[i]
		if index >= len(layer.Traits) {
			return nil, errors.INVALID_INPUT.New(
				"trait %d not found in layer %d", index, layer.Index,
			)
		}
		data, err := e.traitData(ctx, layer, index)
		if err != nil {
			return nil, err
		}
		trait := layer.Traits[index]
		traits = append(traits, genart.ResolvedTrait{
			Layer:    layer.Name,
			Name:     trait.Name,
			Mimetype: trait.Mimetype,
			Hide:     trait.Hide,
			Data:     data,
		})
	}
	return traits, nil
}

// traitData concatenates the chunks of a trait, which must be contiguous.
func (e *Engine) traitData(
	ctx context.Context, layer domain.Layer, trait int,
) ([]byte, errors.Error) {
	dataIndex, err := layer.DataTraitIndex(trait)
	if err != nil {
		return nil, errors.NOT_FOUND.New("%s", err)
	}
	chunks, err := e.repoManager.Assets().GetChunks(ctx, layer.Index, dataIndex)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}

	var buf bytes.Buffer
	for i, chunk := range chunks {
		if chunk.Index != i {
			return nil, errors.NOT_AVAILABLE.New(
				"missing chunk %d of trait %d in layer %d", i, dataIndex, layer.Index,
			)
		}
		buf.Write(chunk.Data)
	}
	return buf.Bytes(), nil
}

func encodeMetadata(v any) (string, errors.Error) {
	uri, err := genart.JSONDataURI(v)
	if err != nil {
		return "", errors.INTERNAL_ERROR.Wrap(fmt.Errorf("failed to encode metadata: %w", err))
	}
	return uri, nil
}
