package watermillbus_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	watermillbus "github.com/indelible-labs/indelibled/internal/infrastructure/events/watermill"
	"github.com/indelible-labs/indelibled/pkg/genart"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := watermillbus.NewEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx, domain.CollectionTopic)
	require.NoError(t, err)

	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	published := []domain.Event{
		domain.TokensMinted{
			Type:         domain.EventTypeTokensMinted,
			FirstTokenID: 3,
			Quantity:     2,
			Recipients:   []common.Address{owner},
			Minter:       owner,
			Path:         domain.MintPathPublic,
			Timestamp:    1700000000,
		},
		domain.FundsWithdrawn{
			Type:    domain.EventTypeFundsWithdrawn,
			Balance: big.NewInt(150),
			Payouts: []genart.Payout{{Address: owner, Amount: big.NewInt(150)}},
		},
		domain.CollectionRevealed{
			Type:       domain.EventTypeCollectionRevealed,
			RevealSeed: genart.Seed{7},
		},
		domain.CollectionSealed{Type: domain.EventTypeCollectionSealed},
	}
	require.NoError(t, bus.Publish(context.Background(), published...))

	for _, expected := range published {
		select {
		case event := <-events:
			require.Equal(t, expected.GetType(), event.GetType())
			switch e := event.(type) {
			case domain.TokensMinted:
				require.Equal(t, expected, e)
			case domain.FundsWithdrawn:
				require.Zero(t, big.NewInt(150).Cmp(e.Balance))
				require.Len(t, e.Payouts, 1)
			case domain.CollectionRevealed:
				require.Equal(t, genart.Seed{7}, e.RevealSeed)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s event", expected.GetType())
		}
	}

	cancel()
	select {
	case _, ok := <-events:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after context cancellation")
	}
}
