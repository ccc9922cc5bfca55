package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/pkg/genart"
)

const CollectionTopic = "collection"

type EventType int

const (
	EventTypeUndefined EventType = iota
	EventTypeTokensMinted
	EventTypeFundsWithdrawn
	EventTypeCollectionRevealed
	EventTypeCollectionSealed
)

func (t EventType) String() string {
	switch t {
	case EventTypeTokensMinted:
		return "tokens_minted"
	case EventTypeFundsWithdrawn:
		return "funds_withdrawn"
	case EventTypeCollectionRevealed:
		return "collection_revealed"
	case EventTypeCollectionSealed:
		return "collection_sealed"
	default:
		return "undefined"
	}
}

type Event interface {
	GetTopic() string
	GetType() EventType
}

type TokensMinted struct {
	Type         EventType
	FirstTokenID uint64
	Quantity     uint64
	Recipients   []common.Address
	Minter       common.Address
	Path         MintPath
	Timestamp    int64
}

func (e TokensMinted) GetTopic() string   { return CollectionTopic }
func (e TokensMinted) GetType() EventType { return EventTypeTokensMinted }

type FundsWithdrawn struct {
	Type      EventType
	Balance   *big.Int
	Payouts   []genart.Payout
	Timestamp int64
}

func (e FundsWithdrawn) GetTopic() string   { return CollectionTopic }
func (e FundsWithdrawn) GetType() EventType { return EventTypeFundsWithdrawn }

type CollectionRevealed struct {
	Type       EventType
	RevealSeed genart.Seed
	Timestamp  int64
}

func (e CollectionRevealed) GetTopic() string   { return CollectionTopic }
func (e CollectionRevealed) GetType() EventType { return EventTypeCollectionRevealed }

type CollectionSealed struct {
	Type      EventType
	Timestamp int64
}

func (e CollectionSealed) GetTopic() string   { return CollectionTopic }
func (e CollectionSealed) GetType() EventType { return EventTypeCollectionSealed }
