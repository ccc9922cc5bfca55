package application_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/indelible-labs/indelibled/internal/core/application"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/internal/infrastructure/db"
	inmemoryledger "github.com/indelible-labs/indelibled/internal/infrastructure/ledger/inmemory"
	"github.com/indelible-labs/indelibled/pkg/errors"
	"github.com/indelible-labs/indelibled/pkg/genart"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var (
	owner        = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	operator     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	contract     = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	feeRecipient = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	alice        = common.HexToAddress("0x0000000000000000000000000000000000000001")
	bob          = common.HexToAddress("0x0000000000000000000000000000000000000002")
	carol        = common.HexToAddress("0x0000000000000000000000000000000000000003")

	ether     = big.NewInt(1e18)
	mintPrice = big.NewInt(1e16)
	mintFee   = big.NewInt(5e14)
	unitPrice = new(big.Int).Add(mintPrice, mintFee)
)

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	os.Exit(m.Run())
}

// seedSequence draws the seeds 1, 2, 3... so that tests are deterministic.
type seedSequence struct {
	lock sync.Mutex
	next uint64
}

func (s *seedSequence) NewSeed(context.Context) (genart.Seed, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.next++
	var seed genart.Seed
	binary.BigEndian.PutUint64(seed[24:], s.next)
	return seed, nil
}

type testEnv struct {
	repo   ports.RepoManager
	engine *application.Engine
	svc    application.Service
	admin  application.AdminService
	ledger *inmemoryledger.Ledger
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repoManager, err := db.NewService(db.ServiceConfig{
		DataStoreType:   "badger",
		DataStoreConfig: []interface{}{"", nil},
	})
	require.NoError(t, err)

	env := &testEnv{
		repo:   repoManager,
		ledger: inmemoryledger.NewLedger(),
		now:    time.Unix(1700000000, 0),
	}
	env.engine = application.NewEngine(repoManager, env.ledger, &seedSequence{}).
		WithClock(func() time.Time { return env.now })
	t.Cleanup(env.engine.Close)

	env.svc = application.NewService(env.engine)
	env.admin = application.NewAdminService(env.engine)
	return env
}

// withEventBus makes the engine publish on bus, which it closes on cleanup.
func (e *testEnv) withEventBus(bus ports.EventBus) {
	e.engine.WithEventBus(bus)
}

// newCollection returns a 2-layer collection of 100 tokens open to public mint.
func newCollection() domain.Collection {
	return domain.Collection{
		Name:               "Blobs",
		Symbol:             "BLOB",
		Address:            contract,
		Owner:              owner,
		Operator:           operator,
		ChainID:            big.NewInt(1),
		Network:            "mainnet",
		MaxSupply:          100,
		NumLayers:          2,
		MintModes:          domain.MintModeAll,
		IsPublicMintActive: true,
		PublicMintPrice:    mintPrice,
		AllowlistPrice:     big.NewInt(5e15),
		ProtocolFee:        mintFee,
		FeeRecipient:       feeRecipient,
		PlaceholderImage:   "ipfs://placeholder",
		BackgroundColor:    "#ffffff",
		ContractData: domain.ContractData{
			Name:        "Blobs",
			Description: "Blobs living on chain",
			Royalties:   500,
		},
	}
}

func testLayers() []application.LayerInput {
	return []application.LayerInput{
		{
			Index: 0,
			Name:  "body",
			Traits: []application.TraitInput{
				{Name: "round", Mimetype: "image/png", Weight: 50, Data: []byte("round")},
				{Name: "square", Mimetype: "image/png", Weight: 50, Data: []byte("square")},
			},
		},
		{
			Index: 1,
			Name:  "background",
			Traits: []application.TraitInput{
				{Name: "red", Mimetype: "image/png", Weight: 60, Data: []byte("red")},
				{Name: "blue", Mimetype: "image/png", Weight: 40, Hide: true, Data: []byte("blue")},
			},
		},
	}
}

// setup initializes the collection and uploads the test layers.
func (e *testEnv) setup(t *testing.T, collection domain.Collection) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, e.admin.InitCollection(ctx, collection))
	for _, layer := range testLayers() {
		require.NoError(t, e.admin.AddLayer(ctx, owner, layer))
	}
}

func (e *testEnv) fund(t *testing.T, addr common.Address, amount *big.Int) {
	t.Helper()
	require.NoError(t, e.ledger.Deposit(context.Background(), addr, amount))
}

func (e *testEnv) balance(t *testing.T, addr common.Address) *big.Int {
	t.Helper()
	balance, err := e.ledger.Balance(context.Background(), addr)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) totalMinted(t *testing.T) uint64 {
	t.Helper()
	collection, err := e.svc.GetCollection(context.Background())
	require.NoError(t, err)
	return collection.TotalMinted
}

func cost(quantity int64, unit *big.Int) *big.Int {
	return new(big.Int).Mul(big.NewInt(quantity), unit)
}

func requireCode(t *testing.T, code interface{ Is(error) bool }, err errors.Error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, code.Is(err), "unexpected error: %v", err)
}

func decodeMetadata(t *testing.T, uri string) []byte {
	t.Helper()
	var raw json.RawMessage
	require.NoError(t, genart.DecodeJSONDataURI(uri, &raw))
	return raw
}
