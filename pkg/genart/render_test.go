package genart_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestAttributes(t *testing.T) {
	traits := []genart.ResolvedTrait{
		{Layer: "background", Name: "blue"},
		{Layer: "signature", Name: "artist", Hide: true},
		{Layer: "eyes", Name: "laser"},
	}
	require.Equal(t, []genart.Attribute{
		{TraitType: "background", Value: "blue"},
		{TraitType: "eyes", Value: "laser"},
	}, genart.Attributes(traits))
}

func TestComposeSVG(t *testing.T) {
	traits := []genart.ResolvedTrait{
		{Layer: "eyes", Name: "laser", Mimetype: "image/png", Data: []byte("eyes")},
		{Layer: "none", Name: "empty", Mimetype: "image/png"},
		{Layer: "background", Name: "blue", Mimetype: "image/png", Data: []byte("bg")},
	}
	uri := genart.ComposeSVG("#121212", traits)
	payload, ok := strings.CutPrefix(uri, "data:image/svg+xml;base64,")
	require.True(t, ok)

	svg, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(svg), "<svg"))
	require.Contains(t, string(svg), "background-color:#121212")

	eyes := "url(data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("eyes")) + ")"
	bg := "url(data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("bg")) + ")"
	require.Contains(t, string(svg), eyes+","+bg)
}

func TestJSONDataURI(t *testing.T) {
	t.Run("unrevealed token omits attributes", func(t *testing.T) {
		uri, err := genart.JSONDataURI(genart.TokenMetadata{
			Name:        "Test #1",
			Description: "desc",
			Image:       "ipfs://placeholder",
		})
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, genart.DecodeJSONDataURI(uri, &doc))
		require.Equal(t, "Test #1", doc["name"])
		require.NotContains(t, doc, "attributes")
		require.NotContains(t, doc, "image_data")
	})

	t.Run("contract metadata", func(t *testing.T) {
		uri, err := genart.JSONDataURI(genart.ContractMetadata{
			Name:                 "Test",
			ExternalLink:         "https://example.com",
			SellerFeeBasisPoints: 500,
		})
		require.NoError(t, err)
		payload := strings.TrimPrefix(uri, "data:application/json;base64,")
		buf, err := base64.StdEncoding.DecodeString(payload)
		require.NoError(t, err)
		require.Equal(t, int64(500), gjson.GetBytes(buf, "seller_fee_basis_points").Int())
		require.Equal(t, "https://example.com", gjson.GetBytes(buf, "external_link").String())
	})

	t.Run("invalid", func(t *testing.T) {
		var doc map[string]any
		require.Error(t, genart.DecodeJSONDataURI("data:text/plain,hello", &doc))
	})
}

func TestOffChainImageURL(t *testing.T) {
	require.Equal(
		t, "https://render.example/7?dna=0102&network=mainnet",
		genart.OffChainImageURL("https://render.example/", 7, "0102", "mainnet"),
	)
}
