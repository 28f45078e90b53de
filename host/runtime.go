// Package host is a reference runtime for the kitties core. It
// authenticates nothing itself: callers hand it the resolved account. It
// runs one operation at a time and gives each call a fresh sequence number.
package host

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"kitties-ledger/chain"
	"kitties-ledger/config"
	"kitties-ledger/core"
	"kitties-ledger/core/balances"
	"kitties-ledger/core/model"
	"kitties-ledger/core/store"

	"github.com/boltdb/bolt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

type Runtime struct {
	mu       sync.Mutex
	kitties  *core.Kitties
	ledger   *balances.Ledger
	sequence Sequence
	recorder *Recorder
	closers  []func() error
}

func New(kitties *core.Kitties, ledger *balances.Ledger, sequence Sequence, recorder *Recorder) *Runtime {
	return &Runtime{
		kitties:  kitties,
		ledger:   ledger,
		sequence: sequence,
		recorder: recorder,
	}
}

// Open builds a runtime whose kitties, balances and sequence live in
// kitties.db under cfg.DataDir.
func Open(cfg *config.Config) (*Runtime, error) {
	db, err := store.OpenBolt(filepath.Join(cfg.DataDir, "kitties.db"))
	if err != nil {
		return nil, err
	}

	rt, err := open(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, db.Close)
	return rt, nil
}

func open(cfg *config.Config, db *store.Bolt) (*Runtime, error) {
	backend, err := balances.NewBoltBackend(db.DB())
	if err != nil {
		return nil, err
	}
	ledger := balances.NewLedger(backend, cfg.ExistentialDepositValue())

	sequence, err := NewBoltSequence(db.DB())
	if err != nil {
		return nil, err
	}

	var (
		randomness core.Randomness = chain.StaticSource(cfg.Seed)
		closers    []func() error
	)
	if cfg.ChainURL != "" {
		bc, err := chain.NewBlockchainClient(cfg.ChainURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		closers = append(closers, func() error { bc.Close(); return nil })

		number, err := bc.GetLatestBlockNumber()
		if err != nil {
			bc.Close()
			return nil, fmt.Errorf("failed to get latest block number: %w", err)
		}
		randomness = chain.NewRandomSource(bc, 5*time.Second)
		logrus.Infof("randomness from %s, latest block %d", cfg.ChainURL, number)
	}

	if err := applyGenesis(db.DB(), ledger, cfg.Genesis); err != nil {
		for _, closer := range closers {
			closer()
		}
		return nil, err
	}

	recorder := &Recorder{}
	kitties := core.New(
		core.Config{ReserveValue: cfg.ReserveValue()},
		db,
		ledger,
		randomness,
		MultiSink{LogSink{}, recorder},
	)

	rt := New(kitties, ledger, sequence, recorder)
	rt.closers = closers
	return rt, nil
}

// applyGenesis endows the genesis accounts the first time a database is
// opened. All endowments land in one write, before the marker is set.
func applyGenesis(db *bolt.DB, ledger *balances.Ledger, genesis []config.Genesis) error {
	var applied bool
	err := db.View(func(tx *bolt.Tx) error {
		applied = tx.Bucket(hostBucket).Get(genesisKey) != nil
		return nil
	})
	if err != nil || applied {
		return err
	}

	endowments := make([]balances.Endowment, 0, len(genesis))
	for _, g := range genesis {
		endowments = append(endowments, balances.Endowment{
			Account: common.HexToAddress(g.Account),
			Amount:  uint256.NewInt(uint64(g.Balance)),
		})
	}
	if err := ledger.EndowAll(endowments); err != nil {
		return fmt.Errorf("genesis endowment: %w", err)
	}
	for _, e := range endowments {
		logrus.Infof("genesis %s endowed with %s", e.Account.Hex(), e.Amount.Dec())
	}

	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(hostBucket).Put(genesisKey, []byte{1})
	})
}

func (r *Runtime) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Runtime) Kitties() *core.Kitties {
	return r.kitties
}

func (r *Runtime) Recorder() *Recorder {
	return r.recorder
}

func (r *Runtime) Balance(account common.Address) (balances.Account, error) {
	return r.ledger.Account(account)
}

// Fund endows account out of thin air. Meant for development networks.
func (r *Runtime) Fund(account common.Address, amount *uint256.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ledger.Endow(account, amount)
}

func (r *Runtime) call(account common.Address) (model.Call, error) {
	index, err := r.sequence.Next()
	if err != nil {
		return model.Call{}, fmt.Errorf("failed to advance the call sequence: %w", err)
	}
	return model.Call{Account: account, Index: index}, nil
}

func (r *Runtime) Create(account common.Address) (model.KittyIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, err := r.call(account)
	if err != nil {
		return 0, err
	}
	return r.kitties.Create(call)
}

func (r *Runtime) Transfer(account, newOwner common.Address, id model.KittyIndex) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, err := r.call(account)
	if err != nil {
		return err
	}
	return r.kitties.Transfer(call, newOwner, id)
}

func (r *Runtime) Breed(account common.Address, parent1, parent2 model.KittyIndex) (model.KittyIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, err := r.call(account)
	if err != nil {
		return 0, err
	}
	return r.kitties.Breed(call, parent1, parent2)
}

func (r *Runtime) List(account common.Address, id model.KittyIndex, price *uint256.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, err := r.call(account)
	if err != nil {
		return err
	}
	return r.kitties.List(call, id, price)
}

func (r *Runtime) Purchase(account common.Address, id model.KittyIndex) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, err := r.call(account)
	if err != nil {
		return err
	}
	return r.kitties.Purchase(call, id)
}
