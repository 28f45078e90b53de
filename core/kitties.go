package core

import (
	"kitties-ledger/core/model"
	"kitties-ledger/core/store"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// ReserveValue is held from an owner's balance for every kitty it
	// creates or receives by transfer.
	ReserveValue *uint256.Int
}

// Kitties runs kitty operations against a store. Every operation checks all
// of its preconditions before anything is written and either applies all of
// its effects or none of them. Calls must not overlap; the host serializes them.
type Kitties struct {
	store      store.Store
	currency   Currency
	randomness Randomness
	events     EventSink
	reserve    *uint256.Int
}

func New(cfg Config, s store.Store, currency Currency, randomness Randomness, events EventSink) *Kitties {
	reserve := uint256.NewInt(0)
	if cfg.ReserveValue != nil {
		reserve = cfg.ReserveValue.Clone()
	}
	return &Kitties{
		store:      s,
		currency:   currency,
		randomness: randomness,
		events:     events,
		reserve:    reserve,
	}
}

func (k *Kitties) ReserveValue() *uint256.Int {
	return k.reserve.Clone()
}

// journal holds the inverse of currency effects made inside a store
// transaction, replayed if the transaction does not commit.
type journal []func()

func (j *journal) add(fn func()) {
	*j = append(*j, fn)
}

func (j journal) revert() {
	for i := len(j) - 1; i >= 0; i-- {
		j[i]()
	}
}

func (k *Kitties) update(op string, call model.Call, fn func(tx store.Tx, undo *journal) error) error {
	var undo journal
	err := k.store.Update(func(tx store.Tx) error {
		return fn(tx, &undo)
	})
	if err != nil {
		undo.revert()
		logrus.Warnf("%s by %s rejected: %v", op, call.Account.Hex(), err)
		return err
	}
	return nil
}

func (k *Kitties) emit(event model.Event) {
	logrus.Infof("emit %s", event)
	if k.events != nil {
		k.events.Emit(event)
	}
}

func (k *Kitties) reserveFor(account common.Address, undo *journal) error {
	if err := k.currency.Reserve(account, k.reserve); err != nil {
		return model.ErrInsufficientFunds
	}
	undo.add(func() { k.currency.Unreserve(account, k.reserve) })
	return nil
}

func (k *Kitties) unreserveFor(account common.Address, undo *journal) {
	k.currency.Unreserve(account, k.reserve)
	undo.add(func() {
		if err := k.currency.Reserve(account, k.reserve); err != nil {
			logrus.Errorf("restore reservation of %s err: %v", account.Hex(), err)
		}
	})
}

// Create mints a kitty with random DNA owned by the caller, who must be able
// to reserve the reserve value. The reservation is taken first and released
// again if allocation fails.
func (k *Kitties) Create(call model.Call) (model.KittyIndex, error) {
	var id model.KittyIndex

	err := k.update("create", call, func(tx store.Tx, undo *journal) error {
		if err := k.reserveFor(call.Account, undo); err != nil {
			return err
		}

		alloc := IndexAllocator{tx: tx}
		next, err := alloc.Next()
		if err != nil {
			return err
		}

		dna := DeriveSeed(k.randomness.RandomSeed(), call.Account, call.Index)

		if err := tx.Insert(next, model.Kitty{DNA: dna}, call.Account); err != nil {
			return err
		}
		if err := alloc.Advance(next); err != nil {
			return err
		}

		id = next
		return nil
	})
	if err != nil {
		return 0, err
	}

	k.emit(model.Created(call.Account, id))
	return id, nil
}

// Transfer hands kitty id from the caller to newOwner. The new owner's
// reservation is taken before the caller's is released.
func (k *Kitties) Transfer(call model.Call, newOwner common.Address, id model.KittyIndex) error {
	err := k.update("transfer", call, func(tx store.Tx, undo *journal) error {
		owner, ok, err := tx.Owner(id)
		if err != nil {
			return err
		}
		if !ok || owner != call.Account {
			return model.ErrNotOwner
		}

		if err := tx.SetOwner(id, newOwner); err != nil {
			return err
		}
		if err := k.reserveFor(newOwner, undo); err != nil {
			return err
		}
		k.unreserveFor(call.Account, undo)

		return nil
	})
	if err != nil {
		return err
	}

	k.emit(model.Transferred(call.Account, newOwner, id))
	return nil
}

// Breed creates a kitty owned by the caller whose DNA mixes the two parents.
// Unlike Create it reserves nothing.
func (k *Kitties) Breed(call model.Call, parent1, parent2 model.KittyIndex) (model.KittyIndex, error) {
	var id model.KittyIndex

	err := k.update("breed", call, func(tx store.Tx, undo *journal) error {
		if parent1 == parent2 {
			return model.ErrSameParent
		}

		kitty1, err := tx.Kitty(parent1)
		if err != nil {
			return err
		}
		if kitty1 == nil {
			return model.ErrInvalidIndex
		}
		kitty2, err := tx.Kitty(parent2)
		if err != nil {
			return err
		}
		if kitty2 == nil {
			return model.ErrInvalidIndex
		}

		alloc := IndexAllocator{tx: tx}
		next, err := alloc.Next()
		if err != nil {
			return err
		}

		mask := DeriveSeed(k.randomness.RandomSeed(), call.Account, call.Index)
		dna := Combine(kitty1.DNA, kitty2.DNA, mask)

		if err := tx.Insert(next, model.Kitty{DNA: dna}, call.Account); err != nil {
			return err
		}
		if err := alloc.Advance(next); err != nil {
			return err
		}

		id = next
		return nil
	})
	if err != nil {
		return 0, err
	}

	k.emit(model.Bred(call.Account, id))
	return id, nil
}

// Count returns the number of kitties ever created.
func (k *Kitties) Count() (model.KittyIndex, error) {
	var count model.KittyIndex
	err := k.store.View(func(tx store.Tx) error {
		n, _, err := tx.Count()
		count = n
		return err
	})
	return count, err
}

// Kitty returns nil when id was never created.
func (k *Kitties) Kitty(id model.KittyIndex) (*model.Kitty, error) {
	var kitty *model.Kitty
	err := k.store.View(func(tx store.Tx) error {
		var err error
		kitty, err = tx.Kitty(id)
		return err
	})
	return kitty, err
}

func (k *Kitties) Owner(id model.KittyIndex) (common.Address, bool, error) {
	var (
		owner common.Address
		ok    bool
	)
	err := k.store.View(func(tx store.Tx) error {
		var err error
		owner, ok, err = tx.Owner(id)
		return err
	})
	return owner, ok, err
}

// Record is a kitty together with its owner and listing price.
type Record struct {
	Id    model.KittyIndex `json:"id"`
	DNA   string           `json:"dna"`
	Owner common.Address   `json:"owner"`
	Price string           `json:"price"`
}

// All returns every kitty in index order.
func (k *Kitties) All() ([]Record, error) {
	var records []Record
	err := k.store.View(func(tx store.Tx) error {
		return tx.ForEach(func(id model.KittyIndex, kitty model.Kitty, owner common.Address) error {
			price, err := tx.Price(id)
			if err != nil {
				return err
			}
			records = append(records, Record{
				Id:    id,
				DNA:   kitty.DNA.String(),
				Owner: owner,
				Price: price.ToBig().String(),
			})
			return nil
		})
	})
	return records, err
}
