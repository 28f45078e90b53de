package store

import (
	"sort"
	"sync"

	"kitties-ledger/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type Memory struct {
	mu       sync.RWMutex
	count    model.KittyIndex
	hasCount bool
	kitties  map[model.KittyIndex]model.Kitty
	owners   map[model.KittyIndex]common.Address
	listings map[model.KittyIndex]*uint256.Int
}

func NewMemory() *Memory {
	return &Memory{
		kitties:  make(map[model.KittyIndex]model.Kitty),
		owners:   make(map[model.KittyIndex]common.Address),
		listings: make(map[model.KittyIndex]*uint256.Int),
	}
}

func (m *Memory) View(fn func(tx Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fn(&memTx{base: m})
}

func (m *Memory) Update(fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		base:     m,
		writable: true,
		kitties:  make(map[model.KittyIndex]model.Kitty),
		owners:   make(map[model.KittyIndex]common.Address),
		listings: make(map[model.KittyIndex]*uint256.Int),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// memTx buffers writes on top of the committed maps. A zero price in
// listings marks a removal.
type memTx struct {
	base     *Memory
	writable bool

	count    *model.KittyIndex
	kitties  map[model.KittyIndex]model.Kitty
	owners   map[model.KittyIndex]common.Address
	listings map[model.KittyIndex]*uint256.Int
}

func (tx *memTx) commit() {
	m := tx.base
	if tx.count != nil {
		m.count = *tx.count
		m.hasCount = true
	}
	for id, kitty := range tx.kitties {
		m.kitties[id] = kitty
	}
	for id, owner := range tx.owners {
		m.owners[id] = owner
	}
	for id, price := range tx.listings {
		if price.IsZero() {
			delete(m.listings, id)
		} else {
			m.listings[id] = price
		}
	}
}

func (tx *memTx) Count() (model.KittyIndex, bool, error) {
	if tx.count != nil {
		return *tx.count, true, nil
	}
	return tx.base.count, tx.base.hasCount, nil
}

func (tx *memTx) SetCount(n model.KittyIndex) error {
	if !tx.writable {
		return ErrReadOnly
	}
	tx.count = &n
	return nil
}

func (tx *memTx) Kitty(id model.KittyIndex) (*model.Kitty, error) {
	if kitty, ok := tx.kitties[id]; ok {
		return &kitty, nil
	}
	if kitty, ok := tx.base.kitties[id]; ok {
		return &kitty, nil
	}
	return nil, nil
}

func (tx *memTx) Owner(id model.KittyIndex) (common.Address, bool, error) {
	if owner, ok := tx.owners[id]; ok {
		return owner, true, nil
	}
	owner, ok := tx.base.owners[id]
	return owner, ok, nil
}

func (tx *memTx) Insert(id model.KittyIndex, kitty model.Kitty, owner common.Address) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if existing, _ := tx.Kitty(id); existing != nil {
		return ErrKittyExists
	}
	tx.kitties[id] = kitty
	tx.owners[id] = owner
	return nil
}

func (tx *memTx) SetOwner(id model.KittyIndex, owner common.Address) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if existing, _ := tx.Kitty(id); existing == nil {
		return ErrUnknownKitty
	}
	tx.owners[id] = owner
	return nil
}

func (tx *memTx) Price(id model.KittyIndex) (*uint256.Int, error) {
	price, ok := tx.listings[id]
	if !ok {
		price, ok = tx.base.listings[id]
	}
	if !ok {
		return uint256.NewInt(0), nil
	}
	return price.Clone(), nil
}

func (tx *memTx) PutListing(id model.KittyIndex, price *uint256.Int) error {
	if !tx.writable {
		return ErrReadOnly
	}
	tx.listings[id] = price.Clone()
	return nil
}

func (tx *memTx) RemoveListing(id model.KittyIndex) error {
	return tx.PutListing(id, uint256.NewInt(0))
}

func (tx *memTx) ForEach(fn func(id model.KittyIndex, kitty model.Kitty, owner common.Address) error) error {
	seen := make(map[model.KittyIndex]bool, len(tx.base.kitties)+len(tx.kitties))
	ids := make([]model.KittyIndex, 0, len(seen))
	for _, set := range []map[model.KittyIndex]model.Kitty{tx.base.kitties, tx.kitties} {
		for id := range set {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		kitty, _ := tx.Kitty(id)
		owner, _, _ := tx.Owner(id)
		if err := fn(id, *kitty, owner); err != nil {
			return err
		}
	}
	return nil
}
