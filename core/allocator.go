package core

import (
	"kitties-ledger/core/model"
	"kitties-ledger/core/store"
)

// IndexAllocator hands out kitty indexes from the counter kept in the store.
type IndexAllocator struct {
	tx store.Tx
}

// Next returns the index the next kitty gets without reserving it.
func (a IndexAllocator) Next() (model.KittyIndex, error) {
	count, ok, err := a.tx.Count()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if count == model.MaxKittyIndex {
		return 0, model.ErrIdentifierOverflow
	}
	return count, nil
}

// Advance moves the counter past id once the kitty is written.
func (a IndexAllocator) Advance(id model.KittyIndex) error {
	return a.tx.SetCount(id + 1)
}
