package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

var (
	testOwner     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testOperator  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	testContract  = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	testRecipient = common.HexToAddress("0x00000000000000000000000000000000000000dd")
)

func testCollection() Collection {
	return Collection{
		Name:            "Test",
		Symbol:          "TST",
		Address:         testContract,
		Owner:           testOwner,
		Operator:        testOperator,
		MaxSupply:       100,
		NumLayers:       2,
		MintModes:       MintModeAll,
		PublicMintPrice: big.NewInt(10),
		AllowlistPrice:  big.NewInt(5),
		ProtocolFee:     big.NewInt(1),
		FeeRecipient:    testRecipient,
	}
}

func TestCollectionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := testCollection()
		require.NoError(t, c.Validate())

		c.LayerWeights = [][]uint64{{50, 50}, {100}}
		c.WithdrawRecipients = []WithdrawRecipient{{Address: testRecipient, Bps: 4000}}
		c.ProtocolShareBps = 500
		require.NoError(t, c.Validate())
	})

	fixtures := []struct {
		name   string
		mutate func(c *Collection)
	}{
		{"missing name", func(c *Collection) { c.Name = "" }},
		{"missing owner", func(c *Collection) { c.Owner = common.Address{} }},
		{"missing address", func(c *Collection) { c.Address = common.Address{} }},
		{"zero supply", func(c *Collection) { c.MaxSupply = 0 }},
		{"zero layers", func(c *Collection) { c.NumLayers = 0 }},
		{"preset weights count", func(c *Collection) { c.LayerWeights = [][]uint64{{100}} }},
		{"preset weights sum", func(c *Collection) { c.LayerWeights = [][]uint64{{100}, {99}} }},
		{"mint window", func(c *Collection) { c.MintStart, c.MintEnd = 10, 5 }},
		{"negative price", func(c *Collection) { c.PublicMintPrice = big.NewInt(-1) }},
		{"chain id overflow", func(c *Collection) {
			c.ChainID = new(big.Int).Lsh(big.NewInt(1), 256)
		}},
		{"fee without recipient", func(c *Collection) { c.FeeRecipient = common.Address{} }},
		{"shares above 100%", func(c *Collection) {
			c.ProtocolShareBps = 1000
			c.WithdrawRecipients = []WithdrawRecipient{{Address: testRecipient, Bps: 9001}}
		}},
		{"trait link out of range", func(c *Collection) {
			c.TraitLinks = []genart.TraitLink{{SourceLayer: 0, TargetLayer: 2}}
		}},
	}
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			c := testCollection()
			f.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestCollectionMintWindow(t *testing.T) {
	c := testCollection()
	now := time.Unix(1000, 0)
	require.True(t, c.IsMintWindowOpen(now))

	c.MintStart = 1000
	require.True(t, c.IsMintWindowOpen(now))
	require.False(t, c.IsMintWindowOpen(now.Add(-time.Second)))

	c.MintEnd = 1001
	require.True(t, c.IsMintWindowOpen(now))
	require.False(t, c.IsMintWindowOpen(now.Add(time.Second)))
}

func TestCollectionPrivileges(t *testing.T) {
	c := testCollection()
	require.True(t, c.IsPrivileged(testOwner))
	require.True(t, c.IsPrivileged(testOperator))
	require.False(t, c.IsPrivileged(testRecipient))

	c.Operator = common.Address{}
	require.False(t, c.IsPrivileged(common.Address{}))
}

func TestCollectionClone(t *testing.T) {
	c := testCollection()
	c.TraitLinks = []genart.TraitLink{{SourceLayer: 0, TargetLayer: 1}}
	clone := c.Clone()

	clone.PublicMintPrice.SetInt64(99)
	clone.TraitLinks[0].TargetTrait = 3
	require.Equal(t, int64(10), c.PublicMintPrice.Int64())
	require.Zero(t, c.TraitLinks[0].TargetTrait)
}

func TestMintModes(t *testing.T) {
	require.True(t, MintModeAll.Has(MintModeSignature))
	require.False(t, MintModePublic.Has(MintModeAllowlist))
	require.Equal(t, "public,signature", (MintModePublic | MintModeSignature).String())
	require.Equal(t, "none", MintModes(0).String())
}

func TestParseMintModes(t *testing.T) {
	modes, err := ParseMintModes([]string{"Public", " signature"})
	require.NoError(t, err)
	require.Equal(t, MintModePublic|MintModeSignature, modes)

	modes, err = ParseMintModes(nil)
	require.NoError(t, err)
	require.Zero(t, modes)

	_, err = ParseMintModes([]string{"public", "presale"})
	require.ErrorContains(t, err, "presale")
}
